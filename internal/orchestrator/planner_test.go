package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCostAndKubernetes(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("What are the current costs for this month and check Kubernetes cluster status", nil)

	require.Len(t, plan, 2)
	require.Contains(t, plan, "cost")
	require.Contains(t, plan, "kubernetes")
	assert.Equal(t, "analyze_costs", plan["cost"].Action)
	assert.Equal(t, "get_cluster_status", plan["kubernetes"].Action)
}

func TestPlanDefaultForUnmatchedRequest(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("hello there", nil)

	require.Len(t, plan, 2)
	require.Contains(t, plan, "infrastructure")
	require.Contains(t, plan, "cost")
	assert.Equal(t, "check_health", plan["infrastructure"].Action)
	assert.Equal(t, "analyze_costs", plan["cost"].Action)
	assert.Equal(t, "7d", plan["cost"].Parameters["time_period"])
}

func TestPlanRollbackAction(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("rollback the payment-service deployment", nil)

	require.Contains(t, plan, "deployment")
	assert.Equal(t, "rollback", plan["deployment"].Action)
}

func TestPlanInfrastructureHealth(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("check the health of my infrastructure", nil)

	require.Contains(t, plan, "infrastructure")
	assert.Equal(t, "check_health", plan["infrastructure"].Action)
	assert.NotContains(t, plan, "kubernetes")
}

func TestPlanStatusConsumedByKubernetes(t *testing.T) {
	p := NewPlanner()

	// "status" is claimed by the kubernetes topic, so it must not also
	// trigger infrastructure.
	plan := p.Plan("show kubernetes status", nil)

	require.Contains(t, plan, "kubernetes")
	assert.NotContains(t, plan, "infrastructure")
}

func TestPlanRCADefaultIncident(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("investigate the database outage", nil)

	require.Contains(t, plan, "rca")
	assert.Equal(t, "analyze_incident", plan["rca"].Action)

	incident, ok := plan["rca"].Parameters["incident_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "investigate the database outage", incident["description"])
	assert.Equal(t, "unknown", incident["type"])
}

func TestPlanRCAContextIncident(t *testing.T) {
	p := NewPlanner()
	incident := map[string]any{"title": "API latency spike", "type": "performance"}

	plan := p.Plan("analyze this incident", map[string]any{"incident": incident})

	require.Contains(t, plan, "rca")
	assert.Equal(t, incident, plan["rca"].Parameters["incident_data"])
}

func TestPlanReportTypeAndPeriod(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("generate a cost report", map[string]any{"time_period": "90d"})

	require.Contains(t, plan, "report")
	assert.Equal(t, "generate_report", plan["report"].Action)
	assert.Equal(t, "cost", plan["report"].Parameters["report_type"])
	assert.Equal(t, "90d", plan["report"].Parameters["time_period"])
}

func TestPlanReportDefaultsExecutive(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("give me a summary", nil)

	require.Contains(t, plan, "report")
	assert.Equal(t, "executive", plan["report"].Parameters["report_type"])
	assert.Equal(t, "30d", plan["report"].Parameters["time_period"])
}

func TestPlanContextOverridesPassThrough(t *testing.T) {
	p := NewPlanner()
	costCtx := map[string]any{"time_period": "14d"}

	plan := p.Plan("how much are we spending on compute", map[string]any{"cost": costCtx})

	require.Contains(t, plan, "cost")
	assert.Equal(t, costCtx, plan["cost"].Parameters)
}

func TestPlanCostActionKeywords(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("find unused resources wasting money", nil)

	require.Contains(t, plan, "cost")
	assert.Equal(t, "identify_unused", plan["cost"].Action)
}
