package catalog

// Operation names.
const (
	OpListNamespaces = "list_namespaces"
	OpListPods       = "list_pods"
	OpListNodes      = "list_nodes"
	OpListServices   = "list_services"
	OpGetClusterInfo = "get_cluster_info"
)

// Accepted filter values.
var (
	PodPhases    = []string{"Running", "Pending", "Succeeded", "Failed", "Unknown"}
	NodeStatuses = []string{"Ready", "NotReady"}
	ServiceTypes = []string{"ClusterIP", "NodePort", "LoadBalancer", "ExternalName"}
)

var namespaceParam = ParamDef{
	Name:        "namespace",
	Type:        ParamTypeString,
	Description: "Namespace to restrict the listing to. Omit to list across all namespaces.",
	Format:      FormatDNSLabel,
}

// All operation definitions as a single source of truth, in catalog order.
var (
	ListNamespaces = Operation{
		Name:        OpListNamespaces,
		Description: ListNamespacesPrompt,
		Title:       "List Namespaces",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
	}

	ListPods = Operation{
		Name:        OpListPods,
		Description: ListPodsPrompt,
		Title:       "List Pods",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
		Params: []ParamDef{
			namespaceParam,
			{
				Name:        "status",
				Type:        ParamTypeEnum,
				Description: "Only return pods in this phase.",
				Enum:        PodPhases,
			},
			{
				Name:        "problems_only",
				Type:        ParamTypeFlag,
				Description: "Only return pods that are not ready, not running, or have restarted.",
				Default:     false,
			},
		},
	}

	ListNodes = Operation{
		Name:        OpListNodes,
		Description: ListNodesPrompt,
		Title:       "List Nodes",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
		Params: []ParamDef{
			{
				Name:        "status",
				Type:        ParamTypeEnum,
				Description: "Only return nodes with this readiness.",
				Enum:        NodeStatuses,
			},
		},
	}

	ListServices = Operation{
		Name:        OpListServices,
		Description: ListServicesPrompt,
		Title:       "List Services",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
		Params: []ParamDef{
			namespaceParam,
			{
				Name:        "type",
				Type:        ParamTypeEnum,
				Description: "Only return services of this type.",
				Enum:        ServiceTypes,
			},
		},
	}

	GetClusterInfo = Operation{
		Name:        OpGetClusterInfo,
		Description: GetClusterInfoPrompt,
		Title:       "Get Cluster Overview",
		ReadOnly:    true,
		Destructive: false,
		Idempotent:  true,
		OpenWorld:   false,
	}
)

// Operations returns the built-in operations in catalog order.
func Operations() []Operation {
	return []Operation{ListNamespaces, ListPods, ListNodes, ListServices, GetClusterInfo}
}
