package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mediavault/bootstrap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run one soft-delete retention sweep",
	Long: `Permanently remove assets that have been in the trash longer than the
configured retention period. Deletes the stored object first, then the
metadata row; assets whose object delete fails are kept for the next sweep.

Examples:
  mediavault cleanup
  mediavault cleanup --config /etc/mediavault/config.yaml`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}
	defer app.DB.Close()

	report, err := app.RunCleanup(context.Background())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Printf("Cleanup complete\n")
	fmt.Printf("  checked:         %d\n", report.Checked)
	fmt.Printf("  deleted objects: %d\n", report.DeletedObjects)
	fmt.Printf("  deleted records: %d\n", report.DeletedRecords)
	fmt.Printf("  errors:          %d\n", report.Errors)
	return nil
}
