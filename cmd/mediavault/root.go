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
	Use:   "mediavault",
	Short: "Media asset management backend with bandwidth cost analytics",
	Long: `MediaVault is a self-hosted media asset management backend.

It stores asset metadata, ingests CDN access logs, and turns them into
bandwidth and tiered-cost analytics per user and per asset.

Quick start:
  mediavault serve      # Start the API server
  mediavault validate   # Validate configuration

Maintenance:
  mediavault cleanup    # Run one soft-delete retention sweep`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "mediavault.yaml", "config file path")
}
