package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/a2a"
)

func initAgent(t *testing.T, ag a2a.Agent) {
	t.Helper()
	require.NoError(t, ag.Initialize(context.Background()))
	t.Cleanup(ag.Shutdown)
}

func TestBaseAgent_InactiveRefusesWork(t *testing.T) {
	c := NewCostOptimizer("sub-1")

	_, err := c.Process(context.Background(), "analyze_costs", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")

	initAgent(t, c)
	out, err := c.Process(context.Background(), "analyze_costs", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Cost Analysis")
}

func TestCostOptimizer_Actions(t *testing.T) {
	c := NewCostOptimizer("sub-1")
	initAgent(t, c)

	out, err := c.Process(context.Background(), "analyze_costs", map[string]any{"time_period": "7d"})
	require.NoError(t, err)
	assert.Contains(t, out, "7d")
	assert.Contains(t, out, "Total:")

	out, err = c.Process(context.Background(), "identify_unused", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Unused Resources")

	_, err = c.Process(context.Background(), "mine_bitcoin", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestKubernetesAgent_ClusterStatus(t *testing.T) {
	k := NewKubernetesAgent("")
	initAgent(t, k)

	out, err := k.Process(context.Background(), "get_cluster_status", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "aks-prod-westeu")
	assert.Contains(t, out, "Pods: 118/120")

	out, err = k.Process(context.Background(), "scale_deployment",
		map[string]any{"deployment": "api", "replicas": "5"})
	require.NoError(t, err)
	assert.Contains(t, out, "5 replicas")
}

func TestInfrastructureMonitor_Health(t *testing.T) {
	m := NewInfrastructureMonitor("sub-1")
	initAgent(t, m)

	out, err := m.Process(context.Background(), "check_health", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "3/5 resources healthy")

	out, err = m.Process(context.Background(), "check_alerts", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "CRITICAL")
}

func TestDeploymentManager_CreateAndRollback(t *testing.T) {
	d := NewDeploymentManager()
	initAgent(t, d)

	out, err := d.Process(context.Background(), "create_deployment",
		map[string]any{"target": "rg-staging", "version": "v3.0.0"})
	require.NoError(t, err)
	assert.Contains(t, out, "v3.0.0 → rg-staging")

	out, err = d.Process(context.Background(), "rollback", map[string]any{"name": "deploy-0042"})
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back deployment deploy-0042")
}

func TestRCAAnalyzer_IncidentDefaults(t *testing.T) {
	r := NewRCAAnalyzer()
	initAgent(t, r)

	out, err := r.Process(context.Background(), "analyze_incident", map[string]any{
		"incident_data": map[string]any{"title": "API outage", "description": "5xx spike"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "API outage")
	assert.Contains(t, out, "Probable cause")

	out, err = r.Process(context.Background(), "analyze_incident", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Unreported incident")
}

func TestReportGenerator_Types(t *testing.T) {
	g := NewReportGenerator()
	initAgent(t, g)

	for _, typ := range []string{"executive", "infrastructure", "cost", "incident", "deployment"} {
		out, err := g.Process(context.Background(), "generate_report", map[string]any{"report_type": typ})
		require.NoError(t, err, typ)
		assert.Contains(t, out, "report (30d)")
	}

	_, err := g.Process(context.Background(), "generate_report", map[string]any{"report_type": "astrology"})
	assert.Error(t, err)
}

func TestBaseAgent_AnswersRequestEnvelopes(t *testing.T) {
	reg := a2a.NewRegistry()
	p := a2a.NewProtocol("orchestrator", reg)

	c := NewCostOptimizer("sub-1")
	initAgent(t, c)
	c.AttachProtocol(p)
	reg.Register(NameCost, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	resp, err := p.SendRequest(ctx, NameCost,
		map[string]any{"action": "analyze_costs", "parameters": map[string]any{"time_period": "7d"}},
		time.Second, a2a.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "success", resp["status"])
	assert.Contains(t, resp["result"], "Cost Analysis")

	// Unknown actions come back as error payloads, not transport errors.
	resp, err = p.SendRequest(ctx, NameCost,
		map[string]any{"action": "nope"}, time.Second, a2a.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, "error", resp["status"])
}

func TestFromSpecs(t *testing.T) {
	off := false
	specs := []Spec{
		{ID: NameCost, Settings: map[string]string{"subscription_id": "sub-override"}},
		{ID: NameKubernetes, Enabled: &off},
		{ID: "marketing"},
	}

	agents := FromSpecs(specs, "sub-default", "aks-x")
	assert.Len(t, agents, 1)
	assert.Contains(t, agents, NameCost)
	assert.NotContains(t, agents, NameKubernetes)

	all := FromSpecs(nil, "sub-default", "")
	assert.Len(t, all, 6)
}
