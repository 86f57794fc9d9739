package tools

import (
	"github.com/containers/kubernetes-mcp-server/pkg/api"

	"github.com/rhobs/kubeqa/pkg/catalog"
)

// InitAskCluster creates the ask_cluster tool.
func InitAskCluster() []api.ServerTool {
	return []api.ServerTool{
		catalog.AskCluster.ToServerTool(AskClusterHandler),
	}
}

// InitListOperations creates the list_operations tool.
func InitListOperations() []api.ServerTool {
	return []api.ServerTool{
		catalog.ListOperations.ToServerTool(ListOperationsHandler),
	}
}
