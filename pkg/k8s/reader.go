package k8s

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/blang/semver/v4"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const nodeRolePrefix = "node-role.kubernetes.io/"

// ClusterReader is the read-only data access layer. Implementations return
// records together with a *PartialError when only part of the data could be
// read, and an *AccessError when nothing could.
type ClusterReader interface {
	ListNamespaces(ctx context.Context) ([]NamespaceRecord, error)
	ListPods(ctx context.Context, filter PodFilter) ([]PodRecord, error)
	ListNodes(ctx context.Context, filter NodeFilter) ([]NodeRecord, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]ServiceRecord, error)
	ClusterSummary(ctx context.Context) (ClusterSummary, error)
}

// Reader implements ClusterReader on top of a clientset. It only issues list
// calls.
type Reader struct {
	client kubernetes.Interface
	logger *slog.Logger
}

var _ ClusterReader = (*Reader)(nil)

// NewReader wraps client. A nil logger uses slog.Default().
func NewReader(client kubernetes.Interface, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{client: client, logger: logger}
}

// ListNamespaces lists all namespaces.
func (r *Reader) ListNamespaces(ctx context.Context) ([]NamespaceRecord, error) {
	list, err := r.client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		r.logger.Error("failed to list namespaces", "error", err)
		return nil, Classify("list namespaces", err)
	}

	out := make([]NamespaceRecord, 0, len(list.Items))
	for i := range list.Items {
		ns := &list.Items[i]
		out = append(out, NamespaceRecord{
			Name:    ns.Name,
			Status:  string(ns.Status.Phase),
			Created: ns.CreationTimestamp.Time,
			Labels:  ns.Labels,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	r.logger.Debug("listed namespaces", "count", len(out))
	return out, nil
}

// Ping checks that the API server is reachable and the credentials can list
// namespaces.
func (r *Reader) Ping(ctx context.Context) error {
	if _, err := r.client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
		return Classify("list namespaces", err)
	}
	return nil
}

// ListPods lists pods, cluster-wide unless filter.Namespace is set.
func (r *Reader) ListPods(ctx context.Context, filter PodFilter) ([]PodRecord, error) {
	pods, err := listScoped(ctx, r, "list pods", filter.Namespace, func(ctx context.Context, ns string) ([]PodRecord, error) {
		list, err := r.client.CoreV1().Pods(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		out := make([]PodRecord, 0, len(list.Items))
		for i := range list.Items {
			out = append(out, podRecord(&list.Items[i]))
		}
		return out, nil
	})
	if pods == nil {
		return nil, err
	}

	filtered := pods[:0]
	for _, p := range pods {
		if filter.Phase != "" && !strings.EqualFold(p.Phase, filter.Phase) {
			continue
		}
		if filter.ProblemsOnly && !p.HasProblem() {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Namespace != filtered[j].Namespace {
			return filtered[i].Namespace < filtered[j].Namespace
		}
		return filtered[i].Name < filtered[j].Name
	})

	r.logger.Debug("listed pods", "namespace", filter.Namespace, "count", len(filtered))
	return filtered, err
}

// ListNodes lists all nodes.
func (r *Reader) ListNodes(ctx context.Context, filter NodeFilter) ([]NodeRecord, error) {
	list, err := r.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		r.logger.Error("failed to list nodes", "error", err)
		return nil, Classify("list nodes", err)
	}

	out := make([]NodeRecord, 0, len(list.Items))
	for i := range list.Items {
		rec := nodeRecord(&list.Items[i])
		if filter.Status != "" && !strings.EqualFold(rec.Status, filter.Status) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	r.logger.Debug("listed nodes", "count", len(out))
	return out, nil
}

// ListServices lists services, cluster-wide unless filter.Namespace is set.
func (r *Reader) ListServices(ctx context.Context, filter ServiceFilter) ([]ServiceRecord, error) {
	svcs, err := listScoped(ctx, r, "list services", filter.Namespace, func(ctx context.Context, ns string) ([]ServiceRecord, error) {
		list, err := r.client.CoreV1().Services(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		out := make([]ServiceRecord, 0, len(list.Items))
		for i := range list.Items {
			out = append(out, serviceRecord(&list.Items[i]))
		}
		return out, nil
	})
	if svcs == nil {
		return nil, err
	}

	filtered := svcs[:0]
	for _, s := range svcs {
		if filter.Type != "" && !strings.EqualFold(s.Type, filter.Type) {
			continue
		}
		filtered = append(filtered, s)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Namespace != filtered[j].Namespace {
			return filtered[i].Namespace < filtered[j].Namespace
		}
		return filtered[i].Name < filtered[j].Name
	})

	r.logger.Debug("listed services", "namespace", filter.Namespace, "count", len(filtered))
	return filtered, err
}

// ClusterSummary aggregates the four core listings. Lists that fail are named
// in Unavailable and reported through a *PartialError; if every list fails
// the first error is returned.
func (r *Reader) ClusterSummary(ctx context.Context) (ClusterSummary, error) {
	var summary ClusterSummary
	failures := make(map[string]error)
	unavailable := make(map[string]bool)
	missing := 0

	namespaces, err := r.ListNamespaces(ctx)
	if err != nil {
		failures["namespaces"] = err
		unavailable["namespaces"] = true
		missing++
	} else {
		summary.TotalNamespaces = len(namespaces)
		for _, ns := range namespaces {
			summary.Namespaces = append(summary.Namespaces, ns.Name)
		}
	}

	pods, err := r.ListPods(ctx, PodFilter{})
	if pods == nil && err != nil {
		failures["pods"] = err
		unavailable["pods"] = true
		missing++
	} else {
		if err != nil {
			failures["pods"] = err
			summary.Partial = append(summary.Partial, "pods")
		}
		summary.TotalPods = len(pods)
		for _, p := range pods {
			if p.Phase == string(corev1.PodRunning) {
				summary.RunningPods++
			}
		}
	}

	nodes, err := r.ListNodes(ctx, NodeFilter{})
	if err != nil {
		failures["nodes"] = err
		unavailable["nodes"] = true
		missing++
	} else {
		summary.TotalNodes = len(nodes)
		versions := make([]string, 0, len(nodes))
		for _, n := range nodes {
			if n.Ready() {
				summary.ReadyNodes++
			}
			versions = append(versions, n.Version)
		}
		summary.NodeVersions = SortVersions(versions)
	}

	services, err := r.ListServices(ctx, ServiceFilter{})
	if services == nil && err != nil {
		failures["services"] = err
		unavailable["services"] = true
		missing++
	} else {
		if err != nil {
			failures["services"] = err
			summary.Partial = append(summary.Partial, "services")
		}
		summary.TotalServices = len(services)
	}

	if len(failures) == 0 {
		return summary, nil
	}
	for scope := range unavailable {
		summary.Unavailable = append(summary.Unavailable, scope)
	}
	sort.Strings(summary.Unavailable)

	if missing == 4 {
		return ClusterSummary{}, Classify("get cluster info", failures["namespaces"])
	}
	return summary, &PartialError{Op: "get cluster info", Failures: failures}
}

// listScoped runs list for one namespace, or cluster-wide when ns is empty.
// A forbidden cluster-wide list falls back to listing namespace by namespace;
// namespaces that stay inaccessible are reported through a *PartialError.
func listScoped[T any](ctx context.Context, r *Reader, op, ns string, list func(context.Context, string) ([]T, error)) ([]T, error) {
	items, err := list(ctx, ns)
	if err == nil {
		return items, nil
	}
	if ns != "" || !apierrors.IsForbidden(err) {
		r.logger.Error("list failed", "op", op, "namespace", ns, "error", err)
		return nil, Classify(op, err)
	}

	r.logger.Warn("cluster-wide list forbidden, falling back to per-namespace listing", "op", op)
	namespaces, nsErr := r.ListNamespaces(ctx)
	if nsErr != nil {
		return nil, Classify(op, err)
	}

	out := []T{}
	failures := make(map[string]error)
	for _, n := range namespaces {
		got, err := list(ctx, n.Name)
		if err != nil {
			failures[n.Name] = Classify(op, err)
			continue
		}
		out = append(out, got...)
	}

	switch {
	case len(failures) == 0:
		return out, nil
	case len(failures) == len(namespaces):
		return nil, Classify(op, err)
	}
	return out, &PartialError{Op: op, Failures: failures}
}

func podRecord(pod *corev1.Pod) PodRecord {
	rec := PodRecord{
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Phase:     string(pod.Status.Phase),
		Node:      pod.Spec.NodeName,
		Created:   pod.CreationTimestamp.Time,
	}
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			rec.Ready = cond.Status == corev1.ConditionTrue
		}
	}
	for _, cs := range pod.Status.ContainerStatuses {
		rec.Restarts += cs.RestartCount
	}
	for _, c := range pod.Spec.Containers {
		rec.Containers = append(rec.Containers, c.Name)
	}
	return rec
}

func nodeRecord(node *corev1.Node) NodeRecord {
	rec := NodeRecord{
		Name:         node.Name,
		Status:       NodeNotReady,
		Version:      node.Status.NodeInfo.KubeletVersion,
		OS:           node.Status.NodeInfo.OperatingSystem,
		Architecture: node.Status.NodeInfo.Architecture,
		Created:      node.CreationTimestamp.Time,
	}
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
			rec.Status = NodeReady
		}
	}
	for label := range node.Labels {
		if role, ok := strings.CutPrefix(label, nodeRolePrefix); ok && role != "" {
			rec.Roles = append(rec.Roles, role)
		}
	}
	sort.Strings(rec.Roles)
	if len(rec.Roles) == 0 {
		rec.Roles = []string{"worker"}
	}
	if q, ok := node.Status.Allocatable[corev1.ResourceCPU]; ok {
		rec.AllocatableCPU = q.String()
	}
	if q, ok := node.Status.Allocatable[corev1.ResourceMemory]; ok {
		rec.AllocatableMemory = q.String()
	}
	return rec
}

func serviceRecord(svc *corev1.Service) ServiceRecord {
	rec := ServiceRecord{
		Name:        svc.Name,
		Namespace:   svc.Namespace,
		Type:        string(svc.Spec.Type),
		ClusterIP:   svc.Spec.ClusterIP,
		ExternalIPs: slices.Clone(svc.Spec.ExternalIPs),
		Selector:    svc.Spec.Selector,
		Created:     svc.CreationTimestamp.Time,
	}
	if rec.Type == "" {
		rec.Type = string(corev1.ServiceTypeClusterIP)
	}
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		switch {
		case ing.IP != "":
			rec.ExternalIPs = append(rec.ExternalIPs, ing.IP)
		case ing.Hostname != "":
			rec.ExternalIPs = append(rec.ExternalIPs, ing.Hostname)
		}
	}
	for _, p := range svc.Spec.Ports {
		port := ServicePort{Port: p.Port, Protocol: string(p.Protocol)}
		if p.TargetPort.String() != "0" {
			port.TargetPort = p.TargetPort.String()
		}
		rec.Ports = append(rec.Ports, port)
	}
	return rec
}

// SortVersions returns the distinct versions in ascending semantic order.
// Versions that do not parse sort after the ones that do, lexically.
func SortVersions(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, errI := semver.ParseTolerant(out[i])
		vj, errJ := semver.ParseTolerant(out[j])
		switch {
		case errI == nil && errJ == nil:
			if c := vi.Compare(vj); c != 0 {
				return c < 0
			}
			return out[i] < out[j]
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return out[i] < out[j]
	})
	return out
}
