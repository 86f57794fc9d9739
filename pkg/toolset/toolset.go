package toolset

import (
	"slices"

	"github.com/containers/kubernetes-mcp-server/pkg/api"
	"github.com/containers/kubernetes-mcp-server/pkg/toolsets"

	toolsetconfig "github.com/rhobs/kubeqa/pkg/toolset/config"
	"github.com/rhobs/kubeqa/pkg/toolset/tools"
)

// Toolset answers natural-language questions about the cluster.
type Toolset struct{}

var _ api.Toolset = (*Toolset)(nil)

// GetName returns the name of the toolset.
func (t *Toolset) GetName() string {
	return toolsetconfig.ToolsetName
}

// GetDescription returns a human-readable description of the toolset.
func (t *Toolset) GetDescription() string {
	return `Answers natural-language questions about the cluster's pods, nodes, namespaces and services.

## HOW TO USE

- Pass the user's question to ask_cluster as-is. It picks the read-only queries to run and
  returns a rendered answer with the structured results.
- Keep namespace names exactly as the user wrote them.
- If ask_cluster answers with example questions, the question named no cluster resource.
- Lines starting with ⚠ mean part of the data could not be read with your credentials.
- list_operations shows the queries ask_cluster can run.`
}

// GetTools returns all tools provided by this toolset.
func (t *Toolset) GetTools(_ api.Openshift) []api.ServerTool {
	return slices.Concat(
		tools.InitAskCluster(),
		tools.InitListOperations(),
	)
}

// GetPrompts returns prompts provided by this toolset.
func (t *Toolset) GetPrompts() []api.ServerPrompt {
	// Currently, prompts are not supported through this toolset
	return nil
}

func init() {
	toolsets.Register(&Toolset{})
}
