package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/config"
	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/orchestrator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sentinel status",
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	configPath := config.GetConfigPath()
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, cache, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer cache.Close()
	defer orch.Shutdown()

	fmt.Println("🛡️ DevOps Sentinel Status")
	fmt.Println()
	fmt.Printf("Config: %s\n", configPath)
	fmt.Printf("Subscription: %s\n", cfg.Agents.SubscriptionID)
	fmt.Printf("Cluster: %s\n", cfg.Agents.ClusterName)
	if cfg.Redis.URL != "" {
		fmt.Printf("Redis: %s\n", cfg.Redis.URL)
	}
	fmt.Println()

	printStatus(orch)
	printAgents(orch)
	return nil
}

func printStatus(orch *orchestrator.Orchestrator) {
	st := orch.Status()
	running := "stopped"
	if st.Running {
		running = "running"
	}
	fmt.Printf("Orchestrator: %s\n", running)
	fmt.Printf("Agents: %d\n", st.TotalAgents)
	fmt.Printf("Active tasks: %d\n", st.ActiveTasks)
	fmt.Println()
}

func printAgents(orch *orchestrator.Orchestrator) {
	st := orch.Status()
	names := make([]string, 0, len(st.Agents))
	for name := range st.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Agents:")
	for _, name := range names {
		ag := st.Agents[name]
		mark := "✓"
		if !ag.Active {
			mark = "✗"
		}
		fmt.Printf("  %s %s: %s\n", mark, name, strings.Join(ag.Capabilities, ", "))
	}
	fmt.Println()
}
