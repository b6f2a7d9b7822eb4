package agent

import (
	"context"
	"fmt"
	"strings"
)

// resourceHealth is one monitored resource's health snapshot.
type resourceHealth struct {
	Name          string
	ResourceGroup string
	State         string // Available, Degraded, Unavailable
	CPUPercent    float64
	MemoryPercent float64
}

// InfrastructureMonitor watches resource health, metrics and alerts.
type InfrastructureMonitor struct {
	*BaseAgent
	subscriptionID string
	resources      []resourceHealth
}

// NewInfrastructureMonitor creates the infrastructure worker.
func NewInfrastructureMonitor(subscriptionID string) *InfrastructureMonitor {
	m := &InfrastructureMonitor{
		subscriptionID: subscriptionID,
		resources: []resourceHealth{
			{"vm-web-01", "rg-production", "Available", 42.5, 61.0},
			{"vm-web-02", "rg-production", "Available", 38.1, 58.3},
			{"vm-db-01", "rg-production", "Degraded", 91.7, 88.4},
			{"appsvc-api", "rg-production", "Available", 23.9, 47.2},
			{"vm-batch-01", "rg-staging", "Unavailable", 0, 0},
		},
	}
	m.BaseAgent = NewBaseAgent(
		"InfrastructureMonitor",
		"Monitors infrastructure health and metrics",
		[]string{
			"resource_health_monitoring",
			"metrics_collection",
			"alert_management",
			"performance_tracking",
		},
		m.dispatch,
	)
	return m
}

func (m *InfrastructureMonitor) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "check_health":
		return m.checkHealth(stringParam(params, "resource_group", "")), nil
	case "get_metrics":
		return m.getMetrics(stringParam(params, "resource", "")), nil
	case "check_alerts":
		return m.checkAlerts(), nil
	default:
		return "", errUnknownAction(m.Name(), action)
	}
}

func (m *InfrastructureMonitor) checkHealth(resourceGroup string) string {
	var b strings.Builder
	healthy, total := 0, 0

	fmt.Fprintf(&b, "Infrastructure Health (subscription %s):\n", m.subscriptionID)
	for _, r := range m.resources {
		if resourceGroup != "" && r.ResourceGroup != resourceGroup {
			continue
		}
		total++
		marker := "❌"
		if r.State == "Available" {
			marker = "✅"
			healthy++
		}
		fmt.Fprintf(&b, "  %s %s (%s): %s\n", marker, r.Name, r.ResourceGroup, r.State)
	}
	fmt.Fprintf(&b, "Summary: %d/%d resources healthy", healthy, total)
	return b.String()
}

func (m *InfrastructureMonitor) getMetrics(resource string) string {
	var b strings.Builder
	b.WriteString("Resource Metrics:\n")
	for _, r := range m.resources {
		if resource != "" && r.Name != resource {
			continue
		}
		if r.State == "Unavailable" {
			fmt.Fprintf(&b, "  %s: no data (unavailable)\n", r.Name)
			continue
		}
		fmt.Fprintf(&b, "  %s: CPU %.1f%%, Memory %.1f%%\n", r.Name, r.CPUPercent, r.MemoryPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *InfrastructureMonitor) checkAlerts() string {
	var alerts []string
	for _, r := range m.resources {
		switch {
		case r.State == "Unavailable":
			alerts = append(alerts, fmt.Sprintf("CRITICAL: %s is unavailable", r.Name))
		case r.CPUPercent > 85:
			alerts = append(alerts, fmt.Sprintf("WARNING: %s CPU at %.1f%%", r.Name, r.CPUPercent))
		}
	}
	if len(alerts) == 0 {
		return "Active Alerts: none"
	}
	return "Active Alerts:\n  " + strings.Join(alerts, "\n  ")
}
