package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "DevOps Sentinel — multi-agent DevOps automation assistant",
	Long:  "DevOps Sentinel coordinates specialist agents for infrastructure, cost, Kubernetes, deployment, incident analysis and reporting.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
}
