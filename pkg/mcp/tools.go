package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/catalog"
)

// OperationsOutput defines the output schema for the list_operations tool.
type OperationsOutput struct {
	Operations []catalog.OperationInfo `json:"operations" jsonschema:"description=The read-only cluster queries questions are routed to"`
	Strategy   string                  `json:"strategy" jsonschema:"description=Routing strategy in use (llm or keyword)"`
	Mode       string                  `json:"mode" jsonschema:"description=Language model backend name, or mock when none is configured"`
}

// HistoryOutput defines the output schema for the query_history tool.
type HistoryOutput struct {
	Entries []agent.HistoryItem `json:"entries" jsonschema:"description=Answered questions, most recent last"`
}

// CreateAskClusterTool has no output schema: its structured content carries
// heterogeneous records.
func CreateAskClusterTool() mcp.Tool {
	return catalog.AskCluster.ToMCPTool()
}

func CreateListOperationsTool() mcp.Tool {
	tool := catalog.ListOperations.ToMCPTool()
	mcp.WithOutputSchema[OperationsOutput]()(&tool)
	return tool
}

func CreateQueryHistoryTool() mcp.Tool {
	tool := catalog.QueryHistory.ToMCPTool()
	mcp.WithOutputSchema[HistoryOutput]()(&tool)
	return tool
}

// AllTools returns every tool the server registers, in registration order.
func AllTools() []mcp.Tool {
	return []mcp.Tool{
		CreateAskClusterTool(),
		CreateListOperationsTool(),
		CreateQueryHistoryTool(),
	}
}
