package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release <job-id>",
	Short: "Delete every stored object of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job ID %q: %w", args[0], err)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	n, err := a.Ingest.Release(cmd.Context(), jobID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted %d objects for job %s\n", n, jobID)
	return nil
}
