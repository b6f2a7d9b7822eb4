package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// deploymentRecord tracks one deployment's state.
type deploymentRecord struct {
	Name    string
	Target  string
	Version string
	State   string // Succeeded, Running, Failed, RolledBack
}

// DeploymentManager creates, monitors and rolls back deployments.
type DeploymentManager struct {
	*BaseAgent
	mu          sync.Mutex
	deployments []deploymentRecord
	counter     int
}

// NewDeploymentManager creates the deployment worker.
func NewDeploymentManager() *DeploymentManager {
	d := &DeploymentManager{
		deployments: []deploymentRecord{
			{"deploy-0041", "rg-production", "v2.13.0", "Succeeded"},
			{"deploy-0042", "rg-production", "v2.14.0", "Succeeded"},
			{"deploy-0043", "rg-staging", "v2.15.0-rc1", "Running"},
		},
		counter: 43,
	}
	d.BaseAgent = NewBaseAgent(
		"DeploymentManager",
		"Manages resource deployments and rollbacks",
		[]string{
			"deployment_creation",
			"deployment_monitoring",
			"rollback_management",
			"template_validation",
		},
		d.dispatch,
	)
	return d
}

func (d *DeploymentManager) dispatch(ctx context.Context, action string, params map[string]any) (string, error) {
	switch action {
	case "create_deployment":
		return d.create(
			stringParam(params, "target", "rg-production"),
			stringParam(params, "version", "latest"),
		), nil
	case "get_status":
		return d.status(stringParam(params, "name", "")), nil
	case "list_deployments":
		return d.list(), nil
	case "rollback":
		return d.rollback(stringParam(params, "name", "")), nil
	case "validate_template":
		return d.validate(stringParam(params, "template", "main.bicep")), nil
	default:
		return "", errUnknownAction(d.Name(), action)
	}
}

func (d *DeploymentManager) create(target, version string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counter++
	name := fmt.Sprintf("deploy-%04d", d.counter)
	d.deployments = append(d.deployments, deploymentRecord{name, target, version, "Running"})
	return fmt.Sprintf("Deployment %s started: %s → %s", name, version, target)
}

func (d *DeploymentManager) status(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name == "" && len(d.deployments) > 0 {
		name = d.deployments[len(d.deployments)-1].Name
	}
	for _, dep := range d.deployments {
		if dep.Name == name {
			return fmt.Sprintf("Deployment %s: %s (%s → %s)", dep.Name, dep.State, dep.Version, dep.Target)
		}
	}
	return fmt.Sprintf("Deployment %s not found", name)
}

func (d *DeploymentManager) list() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	b.WriteString("Recent Deployments:\n")
	for _, dep := range d.deployments {
		fmt.Fprintf(&b, "  %s  %-12s %s → %s\n", dep.Name, dep.State, dep.Version, dep.Target)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *DeploymentManager) rollback(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name == "" && len(d.deployments) > 0 {
		name = d.deployments[len(d.deployments)-1].Name
	}
	for i := range d.deployments {
		if d.deployments[i].Name == name {
			d.deployments[i].State = "RolledBack"
			return fmt.Sprintf("Rolled back deployment %s (was %s)", name, d.deployments[i].Version)
		}
	}
	return fmt.Sprintf("Deployment %s not found, nothing to roll back", name)
}

func (d *DeploymentManager) validate(template string) string {
	return fmt.Sprintf("Template %s validated: 0 errors, 1 warning (unused parameter 'location')", template)
}
