package main

import (
	"context"
	"fmt"
	"time"

	"github.com/agendahof/accessgate/bootstrap"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <principal-id>",
	Short: "Evaluate and print a principal's access state",
	Long: `Evaluate the access state for a single principal and print it.

Uses the same configuration and database as the server. Useful for
support: check what a specific account is entitled to right now.

Examples:
  accessgate evaluate acc-123
  accessgate evaluate acc-123 --config /etc/accessgate/config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap.New(cfgFile)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}
	defer a.DB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	state, err := a.Access.Evaluate(ctx, args[0])
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", args[0], err)
	}

	fmt.Printf("Principal: %s\n", args[0])
	fmt.Printf("  has access:  %v\n", state.HasAccess())
	fmt.Printf("  subscribed:  %v\n", state.HasActiveSubscription)
	fmt.Printf("  in trial:    %v\n", state.IsInTrial)
	fmt.Printf("  courtesy:    %v\n", state.IsCourtesy)
	fmt.Printf("  tier:        %s\n", state.Tier)
	fmt.Printf("  source:      %s\n", state.Source)
	if state.ExpiresAt != nil {
		fmt.Printf("  expires at:  %s\n", state.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
