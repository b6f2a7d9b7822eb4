// Package orchestrator coordinates the specialist workers: it turns a
// free-text request into an execution plan, fans the plan out across the
// agent registry under one deadline, and compiles the partial results
// into a single report.
package orchestrator

import (
	"strings"
)

// PlanEntry is one agent's assignment within a plan.
type PlanEntry struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Plan maps agent names to their assignments. Built fresh per request
// and never mutated afterwards.
type Plan map[string]PlanEntry

// actionRule picks an action when its keyword appears in the request.
type actionRule struct {
	keyword string
	action  string
}

// topicRule matches one topic's keyword set and resolves its action.
// Rules are evaluated in a fixed order; a matched topic consumes its
// matched keywords from the working text so generic words (like
// "status") cannot trigger a second topic further down the table.
type topicRule struct {
	topic         string
	keywords      []string
	actions       []actionRule // first matching rule wins
	defaultAction string
}

var topicRules = []topicRule{
	{
		topic:    "kubernetes",
		keywords: []string{"kubernetes", "k8s", "pod", "cluster", "scale"},
		actions: []actionRule{
			{"scale", "scale_deployment"},
			{"logs", "get_pod_logs"},
			{"usage", "get_resource_usage"},
			{"status", "get_cluster_status"},
		},
		defaultAction: "get_cluster_status",
	},
	{
		topic:    "deployment",
		keywords: []string{"deploy", "deployment", "release", "rollback"},
		actions: []actionRule{
			{"rollback", "rollback"},
			{"list", "list_deployments"},
			{"status", "list_deployments"},
		},
		defaultAction: "create_deployment",
	},
	{
		topic:         "rca",
		keywords:      []string{"incident", "problem", "issue", "outage", "rca", "root cause"},
		defaultAction: "analyze_incident",
	},
	{
		topic:    "cost",
		keywords: []string{"cost", "spend", "money", "budget", "savings", "optimize"},
		actions: []actionRule{
			{"rightsizing", "rightsizing_recommendations"},
			{"unused", "identify_unused"},
			{"idle", "identify_unused"},
			{"tag", "cost_by_tag"},
		},
		defaultAction: "analyze_costs",
	},
	{
		topic:         "report",
		keywords:      []string{"report", "summary", "analytics", "dashboard"},
		defaultAction: "generate_report",
	},
	{
		topic:    "infrastructure",
		keywords: []string{"health", "monitor", "status", "uptime", "performance"},
		actions: []actionRule{
			{"alert", "check_alerts"},
			{"metric", "get_metrics"},
		},
		defaultAction: "check_health",
	},
}

// reportTypes resolve the report topic's type against the full request
// text, first match wins.
var reportTypes = []string{"infrastructure", "cost", "incident", "deployment"}

// Planner is the deterministic, keyword-driven request classifier.
type Planner struct{}

// NewPlanner creates a planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan maps a free-text request plus per-topic context overrides to an
// execution plan. A request matching no topic yields the fixed default
// plan (infrastructure health + 7-day cost summary) so every request
// produces at least one result.
func (p *Planner) Plan(request string, reqCtx map[string]any) Plan {
	full := strings.ToLower(request)
	working := full
	plan := make(Plan)

	for _, rule := range topicRules {
		matched := matchedKeywords(working, rule.keywords)
		if len(matched) == 0 {
			continue
		}

		action := rule.defaultAction
		for _, ar := range rule.actions {
			if strings.Contains(working, ar.keyword) {
				action = ar.action
				matched = append(matched, ar.keyword)
				break
			}
		}

		working = consume(working, matched)
		plan[rule.topic] = PlanEntry{
			Action:     action,
			Parameters: p.topicParameters(rule.topic, full, request, reqCtx),
		}
	}

	if len(plan) == 0 {
		plan["infrastructure"] = PlanEntry{Action: "check_health", Parameters: map[string]any{}}
		plan["cost"] = PlanEntry{Action: "analyze_costs", Parameters: map[string]any{"time_period": "7d"}}
	}
	return plan
}

// topicParameters builds a plan entry's parameters from the request
// context. rca and report have composite parameter shapes; every other
// topic takes its context map as-is.
func (p *Planner) topicParameters(topic, lowered, request string, reqCtx map[string]any) map[string]any {
	switch topic {
	case "rca":
		incident := contextMap(reqCtx, "incident")
		if incident == nil {
			incident = map[string]any{
				"title":              "User reported incident",
				"description":        request,
				"type":               "unknown",
				"symptoms":           []any{request},
				"affected_resources": []any{},
			}
		}
		return map[string]any{"incident_data": incident}

	case "report":
		reportType := "executive"
		for _, rt := range reportTypes {
			if strings.Contains(lowered, rt) {
				reportType = rt
				break
			}
		}
		data := contextMap(reqCtx, "report_data")
		if data == nil {
			data = map[string]any{}
		}
		timePeriod, _ := reqCtx["time_period"].(string)
		if timePeriod == "" {
			timePeriod = "30d"
		}
		return map[string]any{
			"report_type": reportType,
			"data":        data,
			"time_period": timePeriod,
		}

	default:
		if m := contextMap(reqCtx, topic); m != nil {
			return m
		}
		return map[string]any{}
	}
}

func matchedKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func consume(text string, keywords []string) string {
	for _, kw := range keywords {
		text = strings.ReplaceAll(text, kw, " ")
	}
	return text
}

func contextMap(reqCtx map[string]any, key string) map[string]any {
	if reqCtx == nil {
		return nil
	}
	if m, ok := reqCtx[key].(map[string]any); ok {
		return m
	}
	return nil
}
