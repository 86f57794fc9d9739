package catalog

import "github.com/mark3labs/mcp-go/mcp"

// ToMCPTool converts an Operation to an mcp.Tool
func (o Operation) ToMCPTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(o.Description),
		mcp.WithTitleAnnotation(o.Title),
		mcp.WithReadOnlyHintAnnotation(o.ReadOnly),
		mcp.WithDestructiveHintAnnotation(o.Destructive),
	}

	for _, param := range o.Params {
		switch param.Type {
		case ParamTypeString, ParamTypeEnum:
			stringOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
			if param.Required {
				stringOpts = append(stringOpts, mcp.Required())
			}
			if param.Pattern != "" {
				stringOpts = append(stringOpts, mcp.Pattern(param.Pattern))
			}
			if len(param.Enum) > 0 {
				stringOpts = append(stringOpts, mcp.Enum(param.Enum...))
			}
			opts = append(opts, mcp.WithString(param.Name, stringOpts...))

		case ParamTypeFlag:
			boolOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
			if param.Required {
				boolOpts = append(boolOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithBoolean(param.Name, boolOpts...))

		case ParamTypeInteger:
			numberOpts := []mcp.PropertyOption{mcp.Description(param.Description), mcp.Min(0)}
			if param.Required {
				numberOpts = append(numberOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithNumber(param.Name, numberOpts...))
		}
	}

	tool := mcp.NewTool(o.Name, opts...)

	// Workaround for tools with no parameters
	// See https://github.com/containers/kubernetes-mcp-server/pull/341/files
	if len(o.Params) == 0 {
		tool.InputSchema = mcp.ToolInputSchema{}
		tool.RawInputSchema = []byte(`{"type":"object","properties":{}}`)
	}

	return tool
}
