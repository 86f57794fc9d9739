package k8s

import "time"

// NamespaceRecord is one namespace as returned by ListNamespaces.
type NamespaceRecord struct {
	Name    string            `json:"name"`
	Status  string            `json:"status"`
	Created time.Time         `json:"created,omitzero"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// PodRecord is one pod as returned by ListPods.
type PodRecord struct {
	Name       string    `json:"name"`
	Namespace  string    `json:"namespace"`
	Phase      string    `json:"status"`
	Ready      bool      `json:"ready"`
	Restarts   int32     `json:"restarts"`
	Node       string    `json:"node,omitempty"`
	Containers []string  `json:"containers,omitempty"`
	Created    time.Time `json:"created,omitzero"`
}

// HasProblem reports whether the pod is worth a second look: not ready while
// it should be, in a phase other than Running or Succeeded, or restarted.
func (p PodRecord) HasProblem() bool {
	switch {
	case p.Restarts > 0:
		return true
	case p.Phase == "Succeeded":
		return false
	case p.Phase != "Running":
		return true
	default:
		return !p.Ready
	}
}

// NodeRecord is one node as returned by ListNodes.
type NodeRecord struct {
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	Roles             []string  `json:"roles"`
	Version           string    `json:"version"`
	OS                string    `json:"os"`
	Architecture      string    `json:"architecture"`
	AllocatableCPU    string    `json:"allocatable_cpu,omitempty"`
	AllocatableMemory string    `json:"allocatable_memory,omitempty"`
	Created           time.Time `json:"created,omitzero"`
}

// Ready reports whether the node's Ready condition is True.
func (n NodeRecord) Ready() bool {
	return n.Status == NodeReady
}

// ServicePort is one exposed port of a service.
type ServicePort struct {
	Port       int32  `json:"port"`
	TargetPort string `json:"target_port,omitempty"`
	Protocol   string `json:"protocol"`
}

// ServiceRecord is one service as returned by ListServices.
type ServiceRecord struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace"`
	Type        string            `json:"type"`
	ClusterIP   string            `json:"cluster_ip"`
	ExternalIPs []string          `json:"external_ips,omitempty"`
	Ports       []ServicePort     `json:"ports,omitempty"`
	Selector    map[string]string `json:"selector,omitempty"`
	Created     time.Time         `json:"created,omitzero"`
}

// ClusterSummary aggregates counts across the core resource lists.
type ClusterSummary struct {
	TotalNamespaces int      `json:"total_namespaces"`
	TotalPods       int      `json:"total_pods"`
	RunningPods     int      `json:"running_pods"`
	TotalNodes      int      `json:"total_nodes"`
	ReadyNodes      int      `json:"ready_nodes"`
	TotalServices   int      `json:"total_services"`
	NodeVersions    []string `json:"node_versions"`
	Namespaces      []string `json:"namespaces"`
	// Unavailable lists the resources whose counts could not be retrieved.
	Unavailable []string `json:"unavailable,omitempty"`
	// Partial lists the resources counted from only the readable namespaces.
	Partial []string `json:"partial,omitempty"`
}

// Node readiness values.
const (
	NodeReady    = "Ready"
	NodeNotReady = "NotReady"
)

// PodFilter narrows ListPods. Zero value lists every pod.
type PodFilter struct {
	Namespace    string
	Phase        string
	ProblemsOnly bool
}

// NodeFilter narrows ListNodes.
type NodeFilter struct {
	Status string
}

// ServiceFilter narrows ListServices.
type ServiceFilter struct {
	Namespace string
	Type      string
}
