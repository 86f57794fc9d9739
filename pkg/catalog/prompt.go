package catalog

const (
	ListNamespacesPrompt = `List all namespaces in the Kubernetes cluster.

WHEN TO USE:
- Questions about namespaces: "What namespaces exist?"
- Understanding how the cluster is organized

Returns namespace names, status, creation time and labels.`

	ListPodsPrompt = `List pods in the Kubernetes cluster, optionally filtered by namespace.

WHEN TO USE:
- Questions about pods, running containers or deployed applications
- Pod health: "Are there any failed pods?", "Which pods keep restarting?"
- Counting: "How many pods are running?" (do not set 'status' for counting
  questions, the answer always includes total and running counts)

Returns pod names, namespaces, phase, readiness and restart counts.`

	ListNodesPrompt = `List all nodes in the Kubernetes cluster.

WHEN TO USE:
- Questions about nodes, cluster capacity or infrastructure
- Node health: "Are all nodes ready?"

Returns node names, readiness, roles, kubelet versions and allocatable resources.`

	ListServicesPrompt = `List services in the Kubernetes cluster, optionally filtered by namespace.

WHEN TO USE:
- Questions about services, network endpoints or load balancers
- How applications are exposed: "What services are exposed?"

Returns service names, types, cluster IPs, external IPs and ports.`

	GetClusterInfoPrompt = `Get general information and statistics about the Kubernetes cluster.

WHEN TO USE:
- Cluster overview, summary or general health: "What's the status of my cluster?"
- Vague questions that do not name a specific resource

Returns counts of namespaces, pods, nodes and services, and the kubelet versions in use.`
)

const (
	AskClusterPrompt = `Answer a natural-language question about the Kubernetes cluster's current state.

The question is routed to read-only queries over pods, nodes, namespaces and
services, and the answer is rendered as text. Structured results are included.

EXAMPLES:
- "How many pods are running?"
- "Show me services in namespace billing"
- "Are all nodes ready?"
- "Give me an overview of the cluster"

Questions that do not mention any of these resources return a list of example
questions instead of an answer.`

	ListOperationsPrompt = `List the read-only cluster queries that questions are routed to, with their parameters.`

	QueryHistoryPrompt = `Return the questions answered in this session, most recent last.`
)
