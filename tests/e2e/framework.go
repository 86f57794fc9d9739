//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"

	"github.com/rhobs/kubeqa/pkg/k8s"
)

const (
	kubeqaPort     = 9100
	kubeqaSelector = "app.kubernetes.io/name=kubeqa"
	askTool        = "ask_cluster"
	pollInterval   = time.Second
)

// deployment describes where the kubeqa under test runs. Every field can be
// overridden from the environment.
type deployment struct {
	namespace string
	service   string
	timeout   time.Duration
	url       string // KUBEQA_URL; skips discovery when set
}

func deploymentFromEnv() (deployment, error) {
	d := deployment{
		namespace: envOr("KUBEQA_NAMESPACE", "kubeqa"),
		service:   envOr("KUBEQA_SERVICE", "kubeqa"),
		timeout:   30 * time.Second,
		url:       os.Getenv("KUBEQA_URL"),
	}
	if v := os.Getenv("KUBEQA_E2E_TIMEOUT"); v != "" {
		t, err := time.ParseDuration(v)
		if err != nil {
			return d, fmt.Errorf("KUBEQA_E2E_TIMEOUT: %w", err)
		}
		d.timeout = t
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// harness is a reachable kubeqa plus whatever keeps it reachable.
type harness struct {
	deployment
	baseURL string
	client  *MCPClient
	stop    func()
}

// connect resolves the kubeqa endpoint, forwarding a local port to a ready
// pod when the tests run outside the cluster, and waits until the MCP
// endpoint serves ask_cluster.
func connect(ctx context.Context, d deployment) (*harness, error) {
	h := &harness{deployment: d, stop: func() {}}

	switch {
	case d.url != "":
		h.baseURL = d.url
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		h.baseURL = fmt.Sprintf("http://%s.%s.svc.cluster.local:%d", d.service, d.namespace, kubeqaPort)
	default:
		local, stop, err := forward(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("port-forward to kubeqa in %q: %w", d.namespace, err)
		}
		h.baseURL = fmt.Sprintf("http://127.0.0.1:%d", local)
		h.stop = stop
	}
	fmt.Printf("kubeqa e2e: target %s\n", h.baseURL)

	client, err := awaitKubeqa(ctx, h.baseURL, d.timeout)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.client = client
	return h, nil
}

// Close releases the port-forward, if any. It may be called more than once.
func (h *harness) Close() {
	h.stop()
	h.stop = func() {}
}

// forward opens a port-forward from an ephemeral local port to a ready kubeqa
// pod and returns the local port.
func forward(ctx context.Context, d deployment) (uint16, func(), error) {
	cfg, err := k8s.GetClientConfig("")
	if err != nil {
		return 0, nil, err
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return 0, nil, err
	}
	pods, err := clientset.CoreV1().Pods(d.namespace).List(ctx, metav1.ListOptions{LabelSelector: kubeqaSelector})
	if err != nil {
		return 0, nil, err
	}
	i := slices.IndexFunc(pods.Items, podReady)
	if i < 0 {
		return 0, nil, fmt.Errorf("none of %d pods matching %q is ready", len(pods.Items), kubeqaSelector)
	}
	pod := pods.Items[i].Name

	target, err := url.Parse(cfg.Host)
	if err != nil {
		return 0, nil, err
	}
	target.Path = fmt.Sprintf("/api/v1/namespaces/%s/pods/%s/portforward", d.namespace, pod)
	transport, upgrader, err := spdy.RoundTripperFor(cfg)
	if err != nil {
		return 0, nil, err
	}
	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, target)

	stop, ready := make(chan struct{}), make(chan struct{})
	pf, err := portforward.NewOnAddresses(dialer, []string{"127.0.0.1"},
		[]string{fmt.Sprintf("0:%d", kubeqaPort)}, stop, ready, io.Discard, os.Stderr)
	if err != nil {
		return 0, nil, err
	}
	failed := make(chan error, 1)
	go func() { failed <- pf.ForwardPorts() }()

	select {
	case <-ready:
	case err := <-failed:
		return 0, nil, err
	case <-time.After(d.timeout):
		close(stop)
		return 0, nil, fmt.Errorf("pod %s did not accept the forward within %v", pod, d.timeout)
	case <-ctx.Done():
		close(stop)
		return 0, nil, ctx.Err()
	}
	ports, err := pf.GetPorts()
	if err != nil || len(ports) == 0 {
		close(stop)
		return 0, nil, fmt.Errorf("no local port bound for pod %s: %v", pod, err)
	}
	fmt.Printf("kubeqa e2e: forwarding 127.0.0.1:%d to %s/%s:%d\n", ports[0].Local, d.namespace, pod, kubeqaPort)
	return ports[0].Local, func() { close(stop) }, nil
}

func podReady(p corev1.Pod) bool {
	if p.DeletionTimestamp != nil || p.Status.Phase != corev1.PodRunning {
		return false
	}
	return slices.ContainsFunc(p.Status.Conditions, func(c corev1.PodCondition) bool {
		return c.Type == corev1.PodReady && c.Status == corev1.ConditionTrue
	})
}

// awaitKubeqa polls until /health answers and an MCP session lists the
// ask_cluster tool. The returned client keeps that session.
func awaitKubeqa(ctx context.Context, baseURL string, timeout time.Duration) (*MCPClient, error) {
	var (
		client  *MCPClient
		lastErr error
	)
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(context.Context) (bool, error) {
		if lastErr = checkHealth(baseURL); lastErr != nil {
			return false, nil
		}
		c := NewMCPClient(baseURL)
		if lastErr = c.Initialize(); lastErr != nil {
			return false, nil
		}
		if lastErr = expectTool(c, askTool); lastErr != nil {
			return false, nil
		}
		client = c
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("kubeqa at %s not ready after %v: %w", baseURL, timeout, errors.Join(err, lastErr))
	}
	return client, nil
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("/health returned %s", resp.Status)
	}
	return nil
}

func expectTool(c *MCPClient, name string) error {
	resp, err := c.send(MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("tools/list: %s", resp.Error.Message)
	}
	var listed struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &listed); err != nil {
		return fmt.Errorf("tools/list: %w", err)
	}
	for _, tool := range listed.Tools {
		if tool.Name == name {
			return nil
		}
	}
	return fmt.Errorf("tool %q not registered yet", name)
}
