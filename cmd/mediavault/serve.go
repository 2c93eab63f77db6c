package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mediavault/bootstrap"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the MediaVault API server.

The server will:
  - Load configuration from mediavault.yaml (or --config)
  - Or load configuration from MEDIAVAULT_* environment variables
  - Open the SQLite database and apply migrations
  - Serve the asset, analytics and log-ingest API

Environment variables (for Docker deployments):
  MEDIAVAULT_DATABASE_DSN      - Database path (default: mediavault.db)
  MEDIAVAULT_SERVER_PORT       - Server port (default: 8080)
  MEDIAVAULT_AUTH_JWT_SECRET   - JWT signing secret
  MEDIAVAULT_CLEANUP_RETENTION - Soft-delete retention (default: 90h)
  MEDIAVAULT_LOG_LEVEL         - Log level: debug, info, warn, error

Examples:
  mediavault serve
  mediavault serve --config /etc/mediavault/config.yaml
  mediavault serve --hot-reload=false`,
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

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with a config file
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}
		app, err = bootstrap.New(cfgFile)
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
