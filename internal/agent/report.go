package agent

import (
	"context"
	"fmt"
	"strings"
)

// ReportGenerator renders summary reports across the other domains.
type ReportGenerator struct {
	*BaseAgent
}

// NewReportGenerator creates the reporting worker.
func NewReportGenerator() *ReportGenerator {
	g := &ReportGenerator{}
	g.BaseAgent = NewBaseAgent(
		"ReportGenerator",
		"Generates DevOps reports and analytics",
		[]string{
			"infrastructure_reporting",
			"cost_reporting",
			"incident_reporting",
			"deployment_reporting",
			"executive_summaries",
		},
		g.dispatch,
	)
	return g
}

func (g *ReportGenerator) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "generate_report":
		reportType := stringParam(params, "report_type", "executive")
		timePeriod := stringParam(params, "time_period", "30d")
		return g.generate(reportType, timePeriod)
	default:
		return "", errUnknownAction(g.Name(), action)
	}
}

func (g *ReportGenerator) generate(reportType, timePeriod string) (string, error) {
	var body string
	switch reportType {
	case "executive":
		body = strings.Join([]string{
			"  Availability: 99.92% across production",
			"  Spend: $8,271.90, trending -3.1% vs previous period",
			"  Incidents: 2 (1 resolved, 1 in RCA)",
			"  Deployments: 12 (11 succeeded, 1 rolled back)",
		}, "\n")
	case "infrastructure":
		body = strings.Join([]string{
			"  Resources monitored: 5",
			"  Healthy: 3, degraded: 1, unavailable: 1",
			"  Peak CPU: vm-db-01 at 91.7%",
		}, "\n")
	case "cost":
		body = strings.Join([]string{
			"  Total spend: $8,271.90",
			"  Largest service: Virtual Machines ($4,210.55)",
			"  Identified waste: $312.80/mo in unused resources",
		}, "\n")
	case "incident":
		body = strings.Join([]string{
			"  Incidents opened: 2, resolved: 1",
			"  Mean time to resolve: 3h 40m",
			"  Top cause class: capacity (connection pool exhaustion)",
		}, "\n")
	case "deployment":
		body = strings.Join([]string{
			"  Deployments: 12, success rate 91.7%",
			"  Rollbacks: 1 (deploy-0043)",
			"  Mean rollout duration: 14m",
		}, "\n")
	default:
		return "", fmt.Errorf("%s: unknown report type %q", g.Name(), reportType)
	}

	return fmt.Sprintf("%s report (%s):\n%s", strings.ToUpper(reportType[:1])+reportType[1:], timePeriod, body), nil
}
