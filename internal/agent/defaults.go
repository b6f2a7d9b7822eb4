package agent

import (
	"log"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/a2a"
)

// Registry names for the default worker set. These are also the keys
// execution plans address.
const (
	NameInfrastructure = "infrastructure"
	NameCost           = "cost"
	NameKubernetes     = "kubernetes"
	NameDeployment     = "deployment"
	NameRCA            = "rca"
	NameReport         = "report"
)

// Defaults builds the full worker set keyed by registry name.
func Defaults(subscriptionID, clusterName string) map[string]a2a.Agent {
	return map[string]a2a.Agent{
		NameInfrastructure: NewInfrastructureMonitor(subscriptionID),
		NameCost:           NewCostOptimizer(subscriptionID),
		NameKubernetes:     NewKubernetesAgent(clusterName),
		NameDeployment:     NewDeploymentManager(),
		NameRCA:            NewRCAAnalyzer(),
		NameReport:         NewReportGenerator(),
	}
}

// FromSpecs builds the worker set honoring agents.yaml: listed workers
// can be disabled or given per-worker settings; an empty spec list means
// everything runs with defaults.
func FromSpecs(specs []Spec, subscriptionID, clusterName string) map[string]a2a.Agent {
	if len(specs) == 0 {
		return Defaults(subscriptionID, clusterName)
	}

	agents := make(map[string]a2a.Agent, len(specs))
	for _, spec := range specs {
		if !spec.IsEnabled() {
			log.Printf("[Agent] Skipping disabled worker %s", spec.ID)
			continue
		}

		sub := spec.Settings["subscription_id"]
		if sub == "" {
			sub = subscriptionID
		}

		switch spec.ID {
		case NameInfrastructure:
			agents[spec.ID] = NewInfrastructureMonitor(sub)
		case NameCost:
			agents[spec.ID] = NewCostOptimizer(sub)
		case NameKubernetes:
			cluster := spec.Settings["cluster"]
			if cluster == "" {
				cluster = clusterName
			}
			agents[spec.ID] = NewKubernetesAgent(cluster)
		case NameDeployment:
			agents[spec.ID] = NewDeploymentManager()
		case NameRCA:
			agents[spec.ID] = NewRCAAnalyzer()
		case NameReport:
			agents[spec.ID] = NewReportGenerator()
		default:
			log.Printf("[Agent] ⚠️ Unknown worker id %q in agents.yaml, skipping", spec.ID)
		}
	}
	return agents
}
