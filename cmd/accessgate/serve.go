package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agendahof/accessgate/bootstrap"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the access evaluation server",
	Long: `Start the AccessGate HTTP server.

The server will:
  - Load configuration from accessgate.yaml (or --config)
  - Or load configuration from ACCESSGATE_* environment variables
  - Open the database and run migrations
  - Serve access evaluations and billing webhooks

Environment variables (for Docker deployments):
  ACCESSGATE_DATABASE_DSN   - Database path (default: accessgate.db)
  ACCESSGATE_SERVER_PORT    - Server port (default: 8080)
  ACCESSGATE_LOG_LEVEL      - Log level: debug, info, warn, error

Examples:
  accessgate serve
  accessgate serve --config /etc/accessgate/config.yaml
  accessgate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var a *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		a, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		if !hasConfigFile {
			fmt.Println("No config file found, running with environment variables and defaults")
		}
		a, err = bootstrap.New(cfgFile)
	}
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run (blocks until shutdown)
	return a.Run(ctx)
}
