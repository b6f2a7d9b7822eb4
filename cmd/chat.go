package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NoahInCloud/devops-sentinel-multi-agent/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the sentinel agents directly",
	RunE:  runChat,
}

var chatMessage string

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Single request to process (non-interactive)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	if chatMessage != "" {
		// Single message mode
		outcome := orch.Process(ctx, chatMessage, nil)
		if outcome.Status != "completed" {
			return fmt.Errorf("request failed: %s", outcome.Error)
		}
		fmt.Println(outcome.Response)
		return nil
	}

	// Interactive REPL mode
	fmt.Println("🛡️ DevOps Sentinel interactive mode (type '/quit' or Ctrl+C to exit)")
	fmt.Println("Commands: /status, /agents, /quit")
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	exitCommands := map[string]bool{
		"exit": true, "quit": true, "/exit": true, "/quit": true, ":q": true,
	}

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if exitCommands[strings.ToLower(input)] {
			fmt.Println("Goodbye!")
			break
		}

		switch strings.ToLower(input) {
		case "/status":
			printStatus(orch)
			continue
		case "/agents":
			printAgents(orch)
			continue
		}

		outcome := orch.Process(ctx, input, nil)
		fmt.Println()
		if outcome.Status != "completed" {
			fmt.Printf("❌ %s\n\n", outcome.Error)
			continue
		}
		fmt.Println(outcome.Response)
		fmt.Printf("(%d agents, %.2fs)\n\n", len(outcome.AgentsInvolved), outcome.ExecutionTime)
	}

	return nil
}
