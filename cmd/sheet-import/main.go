package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recruit_portal_backend/platform/config"
	"recruit_portal_backend/platform/logger"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	month     string
	sheetName string
	asJSON    bool

	// load flags
	dryRun bool

	cfg *config.Config
	log *logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sheet-import",
	Short: "Load the monthly merge sheet into the reporting database",
	Long: `sheet-import reads the consultants' monthly merge sheet (CSV or XLSX),
keeps the rows of one month and replaces that month in staging.

The source file is archived to object storage when MinIO is configured, and a
funnel refresh is queued for the scheduler when Redis is configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		// stdout carries the report; logs go to stderr.
		log = logger.NewWithWriter(cfg.Env, cmd.ErrOrStderr())
		return nil
	},
}

// loadCmd replaces a month in staging
var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Replace a month in staging with the sheet's rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

// previewCmd computes the funnel without touching the database
var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Print the funnel a sheet would produce without importing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&month, "month", "m", "", "month to import (YYYY_MM or YYYY-MM)")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "worksheet name for XLSX files (default: first sheet)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = rootCmd.MarkPersistentFlagRequired("month")

	loadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and aggregate only; write nothing")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(previewCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
