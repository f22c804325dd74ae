package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "accessgate",
	Short: "Subscription access evaluation service",
	Long: `AccessGate evaluates what a principal is entitled to: active
subscription, trial window, or no access.

It merges billing subscription records, store purchase receipts and
account trial metadata into a single access state, and serves it over
HTTP.

Quick start:
  accessgate serve                 # Start the HTTP server
  accessgate evaluate <principal>  # Print a principal's access state`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "accessgate.yaml", "config file path")
}
