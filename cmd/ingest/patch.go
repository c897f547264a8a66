package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lcaload/internal/service"
)

var patchCmd = &cobra.Command{
	Use:   "patch-areas",
	Short: "Backfill wage area names from a remote archive's geography entry",
	RunE:  runPatch,
}

var (
	patchURL  string
	patchYear int
)

func init() {
	patchCmd.Flags().StringVarP(&patchURL, "url", "u", "", "Archive URL on an allow-listed host (required)")
	patchCmd.Flags().IntVarP(&patchYear, "year", "y", 0, "Wage year to patch (required)")

	_ = patchCmd.MarkFlagRequired("url")
	_ = patchCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(patchCmd)
}

func runPatch(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.Patch.PatchAreas(cmd.Context(), service.AreaPatchInput{ArchiveURL: patchURL, DatasetYear: patchYear})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Area codes seen: %d, rows updated: %d\n", res.AreaCodesSeen, res.UpdatedCount)
	return nil
}
