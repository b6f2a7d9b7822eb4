package agent

import (
	"context"
	"fmt"
	"strings"
)

// RCAAnalyzer performs root cause analysis for incidents and alerts.
type RCAAnalyzer struct {
	*BaseAgent
}

// NewRCAAnalyzer creates the root-cause-analysis worker.
func NewRCAAnalyzer() *RCAAnalyzer {
	r := &RCAAnalyzer{}
	r.BaseAgent = NewBaseAgent(
		"RCAAnalyzer",
		"Performs root cause analysis for incidents",
		[]string{
			"incident_analysis",
			"log_pattern_analysis",
			"metric_anomaly_detection",
			"remediation_planning",
			"alert_analysis",
		},
		r.dispatch,
	)
	return r
}

func (r *RCAAnalyzer) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "analyze_incident":
		incident, _ := params["incident_data"].(map[string]any)
		return r.analyzeIncident(incident), nil
	case "analyze_alert":
		return r.analyzeAlert(stringParam(params, "alert", "unspecified alert")), nil
	default:
		return "", errUnknownAction(r.Name(), action)
	}
}

func (r *RCAAnalyzer) analyzeIncident(incident map[string]any) string {
	title := "Unreported incident"
	description := ""
	if incident != nil {
		if v, ok := incident["title"].(string); ok && v != "" {
			title = v
		}
		if v, ok := incident["description"].(string); ok {
			description = v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Root Cause Analysis: %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "  Reported: %s\n", description)
	}
	b.WriteString(strings.Join([]string{
		"  Findings:",
		"    - Error rate spike correlates with deploy-0043 rollout window",
		"    - vm-db-01 memory pressure preceded connection pool exhaustion",
		"  Probable cause: connection pool sized for 2 replicas, rollout scaled to 5",
		"  Remediation: raise pool max_connections, add pre-rollout capacity check",
	}, "\n"))
	return b.String()
}

func (r *RCAAnalyzer) analyzeAlert(alert string) string {
	return fmt.Sprintf(
		"Alert Analysis: %s\n  Classification: capacity\n  Correlated signals: 2 (CPU saturation, queue depth)\n  Suggested owner: platform team",
		alert)
}
