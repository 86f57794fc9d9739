package catalog

import (
	"github.com/containers/kubernetes-mcp-server/pkg/api"
	"k8s.io/utils/ptr"
)

// ToServerTool converts an Operation to an api.ServerTool
func (o Operation) ToServerTool(handler func(api.ToolHandlerParams) (*api.ToolCallResult, error)) api.ServerTool {
	return api.ServerTool{
		Tool: api.Tool{
			Name:        o.Name,
			Description: o.Description,
			InputSchema: o.JSONSchema(),
			Annotations: api.ToolAnnotations{
				Title:           o.Title,
				ReadOnlyHint:    ptr.To(o.ReadOnly),
				DestructiveHint: ptr.To(o.Destructive),
				IdempotentHint:  ptr.To(o.Idempotent),
				OpenWorldHint:   ptr.To(o.OpenWorld),
			},
		},
		Handler: handler,
	}
}
