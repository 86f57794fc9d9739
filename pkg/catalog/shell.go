package catalog

// Tool names exposed by the MCP and toolset shells.
const (
	ToolAskCluster     = "ask_cluster"
	ToolListOperations = "list_operations"
	ToolQueryHistory   = "query_history"
)

// DefaultHistoryLimit is the number of history entries shown by default.
const DefaultHistoryLimit = 10

// Shell tool definitions. They are not cluster operations and never appear
// in the routing catalog.
var (
	AskCluster = Operation{
		Name:        ToolAskCluster,
		Description: AskClusterPrompt,
		Title:       "Ask the Cluster",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
		Params: []ParamDef{
			{
				Name:        "query",
				Type:        ParamTypeString,
				Description: "The question about the cluster, in plain language.",
				Required:    true,
			},
		},
	}

	ListOperations = Operation{
		Name:        ToolListOperations,
		Description: ListOperationsPrompt,
		Title:       "List Cluster Queries",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
	}

	QueryHistory = Operation{
		Name:        ToolQueryHistory,
		Description: QueryHistoryPrompt,
		Title:       "Query History",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  false,
		OpenWorld:   false,
		Params: []ParamDef{
			{
				Name:        "limit",
				Type:        ParamTypeInteger,
				Description: "Maximum number of entries to return.",
				Default:     DefaultHistoryLimit,
			},
		},
	}
)

// ShellTools returns the tools the shells expose, in display order.
func ShellTools() *Catalog {
	c, err := New(AskCluster, ListOperations, QueryHistory)
	if err != nil {
		panic(err)
	}
	return c
}
