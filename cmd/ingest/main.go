// Command ingest is the operator CLI for chunked LCA disclosure and
// prevailing wage imports.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lcaload/internal/app"
	"lcaload/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Chunked LCA disclosure and prevailing wage importer",
	Long:          "Uploads CSV, ZIP and XLSX sources to object storage and drives resumable, windowed imports into PostgreSQL.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadApp reads the dotenv file (if present) and configuration, then wires the app.
func loadApp() (*app.App, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.New(cfg)
}
