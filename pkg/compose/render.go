package compose

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/k8s"
	"github.com/rhobs/kubeqa/pkg/model"
)

const maxListedNamespaces = 10

var (
	phaseOrder       = []string{"Running", "Pending", "Succeeded", "Failed", "Unknown"}
	serviceTypeOrder = []string{"ClusterIP", "NodePort", "LoadBalancer", "ExternalName"}
)

// Render produces the deterministic text for a set of results. The same
// results always render to the same text.
func Render(results []model.OperationResult) string {
	sections := make([]string, 0, len(results))
	for _, res := range results {
		sections = append(sections, renderResult(res))
	}
	return strings.Join(sections, "\n\n")
}

func renderResult(res model.OperationResult) string {
	if res.Status == model.StatusFailed {
		return fmt.Sprintf("⚠ could not %s: %s", describe(res.Operation, res.Arguments), res.Error)
	}

	var body string
	switch res.Operation {
	case catalog.OpListNamespaces:
		body = renderNamespaces(collect[k8s.NamespaceRecord](res.Records))
	case catalog.OpListPods:
		body = renderPods(collect[k8s.PodRecord](res.Records), res.Arguments)
	case catalog.OpListNodes:
		body = renderNodes(collect[k8s.NodeRecord](res.Records), res.Arguments)
	case catalog.OpListServices:
		body = renderServices(collect[k8s.ServiceRecord](res.Records), res.Arguments)
	case catalog.OpGetClusterInfo:
		summaries := collect[k8s.ClusterSummary](res.Records)
		if len(summaries) > 0 {
			body = renderSummary(summaries[0])
		} else {
			body = "No cluster information available."
		}
	default:
		body = fmt.Sprintf("%s returned %d records.", res.Operation, len(res.Records))
	}

	if res.Status == model.StatusPartial {
		body += "\n\n⚠ partial result: " + res.Error
	}
	return body
}

// describe names what an operation reads, for failure notes.
func describe(operation string, args catalog.Arguments) string {
	switch operation {
	case catalog.OpListNamespaces:
		return "list namespaces"
	case catalog.OpListPods:
		return "list pods" + inNamespace(args)
	case catalog.OpListNodes:
		return "list nodes"
	case catalog.OpListServices:
		return "list services" + inNamespace(args)
	case catalog.OpGetClusterInfo:
		return "get cluster info"
	}
	return "run " + operation
}

func inNamespace(args catalog.Arguments) string {
	if ns := args.String("namespace"); ns != "" {
		return fmt.Sprintf(" in namespace '%s'", ns)
	}
	return ""
}

func collect[T any](records []any) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		switch v := r.(type) {
		case T:
			out = append(out, v)
		case *T:
			if v != nil {
				out = append(out, *v)
			}
		}
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// ordered returns the keys of groups: first those in preferred, in that
// order, then the rest sorted.
func ordered[V any](groups map[string]V, preferred []string) []string {
	var keys, rest []string
	for _, k := range preferred {
		if _, ok := groups[k]; ok {
			keys = append(keys, k)
		}
	}
	for k := range groups {
		if !slices.Contains(preferred, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func sortByNamespaceName[T any](items []T, key func(T) (string, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ni, ai := key(items[i])
		nj, aj := key(items[j])
		if ni != nj {
			return ni < nj
		}
		return ai < aj
	})
}

func renderNamespaces(namespaces []k8s.NamespaceRecord) string {
	if len(namespaces) == 0 {
		return "No namespaces found in the cluster."
	}
	sort.SliceStable(namespaces, func(i, j int) bool { return namespaces[i].Name < namespaces[j].Name })

	var b strings.Builder
	fmt.Fprintf(&b, "Found %s:\n", plural(len(namespaces), "namespace"))
	for _, ns := range namespaces {
		fmt.Fprintf(&b, "\n• **%s** (Status: %s)", ns.Name, ns.Status)
		if !ns.Created.IsZero() {
			fmt.Fprintf(&b, "\n  Created: %s", formatTime(ns.Created))
		}
	}
	return b.String()
}

func podFilterText(args catalog.Arguments) string {
	var parts []string
	if status := args.String("status"); status != "" {
		parts = append(parts, "with status "+status)
	}
	if args.Flag("problems_only") {
		parts = append(parts, "with problems")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " and ")
}

func renderPods(pods []k8s.PodRecord, args catalog.Arguments) string {
	scope := inNamespace(args) + podFilterText(args)
	if len(pods) == 0 {
		return fmt.Sprintf("No pods found%s.", scope)
	}
	sortByNamespaceName(pods, func(p k8s.PodRecord) (string, string) { return p.Namespace, p.Name })

	groups := make(map[string][]k8s.PodRecord)
	running := 0
	for _, p := range pods {
		groups[p.Phase] = append(groups[p.Phase], p)
		if p.Phase == "Running" {
			running++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %s%s (%d running):", plural(len(pods), "pod"), scope, running)
	for _, phase := range ordered(groups, phaseOrder) {
		list := groups[phase]
		fmt.Fprintf(&b, "\n\n**%s (%s):**", phase, plural(len(list), "pod"))
		for _, p := range list {
			fmt.Fprintf(&b, "\n• %s (%s) %s", p.Name, p.Namespace, check(p.Ready))
			if p.Restarts > 0 {
				fmt.Fprintf(&b, " [Restarts: %d]", p.Restarts)
			}
		}
	}
	return b.String()
}

func renderNodes(nodes []k8s.NodeRecord, args catalog.Arguments) string {
	status := args.String("status")
	if len(nodes) == 0 {
		if status != "" {
			return fmt.Sprintf("No nodes found with status %s.", status)
		}
		return "No nodes found in the cluster."
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	ready := 0
	for _, n := range nodes {
		if n.Ready() {
			ready++
		}
	}

	var b strings.Builder
	if status != "" {
		fmt.Fprintf(&b, "Found %s with status %s (%d ready):", plural(len(nodes), "node"), status, ready)
	} else {
		fmt.Fprintf(&b, "Found %s (%d ready):", plural(len(nodes), "node"), ready)
	}
	for _, n := range nodes {
		roles := "worker"
		if len(n.Roles) > 0 {
			roles = strings.Join(n.Roles, ", ")
		}
		fmt.Fprintf(&b, "\n\n• **%s** %s", n.Name, check(n.Ready()))
		fmt.Fprintf(&b, "\n  Roles: %s", roles)
		fmt.Fprintf(&b, "\n  Version: %s", n.Version)
		fmt.Fprintf(&b, "\n  OS: %s (%s)", n.OS, n.Architecture)
		if n.AllocatableCPU != "" || n.AllocatableMemory != "" {
			fmt.Fprintf(&b, "\n  Resources: %s CPU, %s memory", n.AllocatableCPU, n.AllocatableMemory)
		}
	}
	return b.String()
}

func renderServices(services []k8s.ServiceRecord, args catalog.Arguments) string {
	scope := inNamespace(args)
	if t := args.String("type"); t != "" {
		scope += " of type " + t
	}
	if len(services) == 0 {
		return fmt.Sprintf("No services found%s.", scope)
	}
	sortByNamespaceName(services, func(s k8s.ServiceRecord) (string, string) { return s.Namespace, s.Name })

	groups := make(map[string][]k8s.ServiceRecord)
	for _, s := range services {
		groups[s.Type] = append(groups[s.Type], s)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %s%s:", plural(len(services), "service"), scope)
	for _, typ := range ordered(groups, serviceTypeOrder) {
		list := groups[typ]
		fmt.Fprintf(&b, "\n\n**%s (%s):**", typ, plural(len(list), "service"))
		for _, s := range list {
			fmt.Fprintf(&b, "\n• **%s** (%s)", s.Name, s.Namespace)
			fmt.Fprintf(&b, "\n  Cluster IP: %s", s.ClusterIP)
			if len(s.Ports) > 0 {
				ports := make([]string, 0, len(s.Ports))
				for _, p := range s.Ports {
					ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
				}
				fmt.Fprintf(&b, "\n  Ports: %s", strings.Join(ports, ", "))
			}
			if len(s.ExternalIPs) > 0 {
				fmt.Fprintf(&b, "\n  External IPs: %s", strings.Join(s.ExternalIPs, ", "))
			}
		}
	}
	return b.String()
}

func renderSummary(s k8s.ClusterSummary) string {
	unavailable := func(scope string) bool { return slices.Contains(s.Unavailable, scope) }
	count := func(scope string, text string) string {
		if unavailable(scope) {
			return "unavailable"
		}
		if slices.Contains(s.Partial, scope) {
			return text + " (partial)"
		}
		return text
	}

	var b strings.Builder
	b.WriteString("**Cluster Overview:**\n")
	fmt.Fprintf(&b, "\n• **Namespaces:** %s", count("namespaces", fmt.Sprint(s.TotalNamespaces)))
	fmt.Fprintf(&b, "\n• **Pods:** %s", count("pods", fmt.Sprintf("%d total, %d running", s.TotalPods, s.RunningPods)))
	fmt.Fprintf(&b, "\n• **Nodes:** %s", count("nodes", fmt.Sprintf("%d total, %d ready", s.TotalNodes, s.ReadyNodes)))
	fmt.Fprintf(&b, "\n• **Services:** %s", count("services", fmt.Sprint(s.TotalServices)))

	if len(s.NodeVersions) > 0 {
		fmt.Fprintf(&b, "\n\n**Kubernetes Versions:** %s", strings.Join(s.NodeVersions, ", "))
	}
	if len(s.Namespaces) > 0 {
		shown := s.Namespaces
		if len(shown) > maxListedNamespaces {
			shown = shown[:maxListedNamespaces]
		}
		list := strings.Join(shown, ", ")
		if extra := len(s.Namespaces) - len(shown); extra > 0 {
			list += fmt.Sprintf(" (and %d more)", extra)
		}
		fmt.Fprintf(&b, "\n\n**Namespaces:** %s", list)
	}
	return b.String()
}
