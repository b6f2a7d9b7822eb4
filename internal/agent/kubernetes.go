package agent

import (
	"context"
	"fmt"
	"strings"
)

// k8sCluster is one managed cluster's snapshot.
type k8sCluster struct {
	Name      string
	Nodes     int
	PodsReady int
	PodsTotal int
	Version   string
}

// KubernetesAgent manages clusters and workloads.
type KubernetesAgent struct {
	*BaseAgent
	clusterName string
	clusters    []k8sCluster
}

// NewKubernetesAgent creates the kubernetes worker. clusterName selects
// the default cluster for single-cluster actions.
func NewKubernetesAgent(clusterName string) *KubernetesAgent {
	if clusterName == "" {
		clusterName = "aks-prod-westeu"
	}
	k := &KubernetesAgent{
		clusterName: clusterName,
		clusters: []k8sCluster{
			{"aks-prod-westeu", 6, 118, 120, "1.29.4"},
			{"aks-staging-westeu", 3, 44, 44, "1.29.4"},
		},
	}
	k.BaseAgent = NewBaseAgent(
		"KubernetesAgent",
		"Manages Kubernetes clusters and workloads",
		[]string{
			"cluster_monitoring",
			"pod_management",
			"resource_scaling",
			"log_analysis",
			"resource_usage_analysis",
		},
		k.dispatch,
	)
	return k
}

func (k *KubernetesAgent) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "get_cluster_status":
		return k.clusterStatus(stringParam(params, "cluster", k.clusterName)), nil
	case "list_clusters":
		return k.listClusters(), nil
	case "get_pod_logs":
		return k.podLogs(stringParam(params, "pod", "api-7d4b9c")), nil
	case "scale_deployment":
		return k.scale(
			stringParam(params, "deployment", "api"),
			stringParam(params, "replicas", "3"),
		), nil
	case "get_resource_usage":
		return k.resourceUsage(), nil
	default:
		return "", errUnknownAction(k.Name(), action)
	}
}

func (k *KubernetesAgent) find(name string) *k8sCluster {
	for i := range k.clusters {
		if k.clusters[i].Name == name {
			return &k.clusters[i]
		}
	}
	return nil
}

func (k *KubernetesAgent) clusterStatus(name string) string {
	c := k.find(name)
	if c == nil {
		return fmt.Sprintf("Cluster %s not found", name)
	}
	state := "Healthy"
	if c.PodsReady < c.PodsTotal {
		state = "Degraded"
	}
	return fmt.Sprintf(
		"Cluster %s: %s\n  Nodes: %d ready\n  Pods: %d/%d ready\n  Version: %s",
		c.Name, state, c.Nodes, c.PodsReady, c.PodsTotal, c.Version)
}

func (k *KubernetesAgent) listClusters() string {
	var b strings.Builder
	b.WriteString("Managed Clusters:\n")
	for _, c := range k.clusters {
		fmt.Fprintf(&b, "  %s (nodes=%d, pods=%d/%d, v%s)\n", c.Name, c.Nodes, c.PodsReady, c.PodsTotal, c.Version)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (k *KubernetesAgent) podLogs(pod string) string {
	return fmt.Sprintf(
		"Logs for pod %s (last 5 lines):\n"+
			"  level=info msg=\"request served\" path=/api/v1/costs status=200\n"+
			"  level=info msg=\"request served\" path=/api/v1/health status=200\n"+
			"  level=warn msg=\"slow query\" duration=1.8s\n"+
			"  level=info msg=\"cache refreshed\" entries=482\n"+
			"  level=info msg=\"request served\" path=/api/v1/costs status=200",
		pod)
}

func (k *KubernetesAgent) scale(deployment, replicas string) string {
	return fmt.Sprintf("Scaled deployment %s in %s to %s replicas", deployment, k.clusterName, replicas)
}

func (k *KubernetesAgent) resourceUsage() string {
	return strings.Join([]string{
		"Cluster Resource Usage (" + k.clusterName + "):",
		"  CPU:    62% of 24 cores requested",
		"  Memory: 71% of 96 GiB requested",
		"  Top namespace: production (48% CPU, 55% memory)",
	}, "\n")
}
