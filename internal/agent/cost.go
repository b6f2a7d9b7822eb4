package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CostOptimizer analyzes spend and finds savings opportunities.
type CostOptimizer struct {
	*BaseAgent
	subscriptionID string
	costsByService map[string]float64
	costsByTag     map[string]float64
	unused         []string
}

// NewCostOptimizer creates the cost worker.
func NewCostOptimizer(subscriptionID string) *CostOptimizer {
	c := &CostOptimizer{
		subscriptionID: subscriptionID,
		costsByService: map[string]float64{
			"Virtual Machines":   4210.55,
			"Kubernetes Service": 1880.20,
			"Storage":            640.75,
			"SQL Database":       1325.00,
			"Bandwidth":          215.40,
		},
		costsByTag: map[string]float64{
			"env:production": 6120.30,
			"env:staging":    1431.20,
			"team:platform":  720.40,
		},
		unused: []string{
			"disk-orphaned-03 (managed disk, unattached)",
			"ip-static-07 (public IP, unassociated)",
			"vm-batch-01 (stopped 21 days)",
		},
	}
	c.BaseAgent = NewBaseAgent(
		"CostOptimizer",
		"Optimizes costs and identifies savings opportunities",
		[]string{
			"cost_analysis",
			"rightsizing_recommendations",
			"unused_resource_identification",
			"cost_by_tag_analysis",
		},
		c.dispatch,
	)
	return c
}

func (c *CostOptimizer) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "analyze_costs":
		return c.analyzeCosts(stringParam(params, "time_period", "30d")), nil
	case "rightsizing_recommendations":
		return c.rightsizing(), nil
	case "identify_unused":
		return c.identifyUnused(), nil
	case "cost_by_tag":
		return c.costByTag(), nil
	default:
		return "", errUnknownAction(c.Name(), action)
	}
}

func (c *CostOptimizer) analyzeCosts(timePeriod string) string {
	services := make([]string, 0, len(c.costsByService))
	total := 0.0
	for s, v := range c.costsByService {
		services = append(services, s)
		total += v
	}
	sort.Strings(services)

	var b strings.Builder
	fmt.Fprintf(&b, "Cost Analysis (%s, subscription %s):\n", timePeriod, c.subscriptionID)
	for _, s := range services {
		fmt.Fprintf(&b, "  %-20s $%9.2f\n", s, c.costsByService[s])
	}
	fmt.Fprintf(&b, "Total: $%.2f", total)
	return b.String()
}

func (c *CostOptimizer) rightsizing() string {
	return strings.Join([]string{
		"Rightsizing Recommendations:",
		"  vm-web-02: downsize D4s_v3 → D2s_v3 (avg CPU 12%), saves ~$87/mo",
		"  vm-db-01: upsize D4s_v3 → E4s_v3 (memory pressure 88%)",
		"  appsvc-api: switch to autoscale P1v3 (2-5 instances), saves ~$140/mo",
	}, "\n")
}

func (c *CostOptimizer) identifyUnused() string {
	var b strings.Builder
	b.WriteString("Unused Resources:\n")
	for _, u := range c.unused {
		fmt.Fprintf(&b, "  - %s\n", u)
	}
	fmt.Fprintf(&b, "Estimated monthly waste: $%.2f", 312.80)
	return b.String()
}

func (c *CostOptimizer) costByTag() string {
	tags := make([]string, 0, len(c.costsByTag))
	for tag := range c.costsByTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("Cost by Tag:\n")
	for _, tag := range tags {
		fmt.Fprintf(&b, "  %-16s $%9.2f\n", tag, c.costsByTag[tag])
	}
	return strings.TrimRight(b.String(), "\n")
}
