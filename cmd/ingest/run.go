package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lcaload/internal/domain"
	"lcaload/internal/ingest"
	"lcaload/internal/port"
	"lcaload/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload a source (or reuse a stored one) and import it to completion",
	Long: `Runs an import window by window. With --cursor-file the cursor and the
accumulated report are checkpointed after every window, and an existing file
resumes the job it describes.`,
	RunE: runRun,
}

var (
	runFile       string
	runSourceKey  string
	runDataset    string
	runYear       int
	runCursorFile string
	runMaxChunks  int
	runNotify     bool
	runKeep       bool
)

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Local source file to upload (csv, txt, zip or xlsx)")
	runCmd.Flags().StringVarP(&runSourceKey, "source-key", "k", "", "Key of an already uploaded source")
	runCmd.Flags().StringVarP(&runDataset, "dataset", "d", "", "Target dataset (disclosure or wage)")
	runCmd.Flags().IntVarP(&runYear, "year", "y", 0, "Dataset year")
	runCmd.Flags().StringVarP(&runCursorFile, "cursor-file", "c", "", "Checkpoint file for the cursor and report")
	runCmd.Flags().IntVar(&runMaxChunks, "max-chunks", 0, "Stop after this many windows (0 runs to completion)")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "Email the job summary to the operator when done")
	runCmd.Flags().BoolVar(&runKeep, "keep", false, "Keep the job's stored objects after completion")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	var cp *checkpoint
	if runCursorFile != "" {
		var err error
		if cp, err = loadCheckpoint(runCursorFile); err != nil {
			return err
		}
	}
	if cp == nil {
		if runFile == "" && runSourceKey == "" {
			return fmt.Errorf("either --file or --source-key must be provided")
		}
		if runFile != "" && runSourceKey != "" {
			return fmt.Errorf("--file and --source-key are mutually exclusive; provide only one")
		}
		if runDataset == "" || runYear <= 0 {
			return fmt.Errorf("--dataset and --year are required")
		}
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cp == nil {
		cp = &checkpoint{
			SourceKey:   runSourceKey,
			JobID:       jobIDOf(runSourceKey),
			Dataset:     domain.DatasetName(runDataset),
			DatasetYear: runYear,
		}
		if runFile != "" {
			src, err := uploadLocal(ctx, a.Ingest, cp.Dataset, runFile)
			if err != nil {
				return err
			}
			cp.SourceKey = src.Key
			cp.JobID = src.JobID.String()
			fmt.Fprintf(os.Stdout, "Uploaded %s as %s\n", runFile, src.Key)
		}
	} else {
		log.Printf("ingest.run: resuming %s from cursor file %s after %d chunks", cp.SourceKey, runCursorFile, cp.Report.Chunks)
	}

	j := &jobRunner{
		svc:        a.Ingest,
		notifier:   a.Notifier,
		sampleCap:  a.Config.Ingest.SampleCap,
		cursorFile: runCursorFile,
		maxChunks:  runMaxChunks,
		notify:     runNotify,
		release:    !runKeep,
	}
	if err := j.run(ctx, cp); err != nil {
		return err
	}

	r := cp.Report
	fmt.Fprintf(os.Stdout, "Chunks %d, parsed %d, inserted %d, updated %d, skipped %d, errored %d, done %v\n",
		r.Chunks, r.TotalParsed, r.Inserted, r.Updated, r.Skipped, r.Errored, r.Done)
	return nil
}

func uploadLocal(ctx context.Context, svc service.IngestService, ds domain.DatasetName, path string) (*domain.SourceFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading source size: %w", err)
	}
	return svc.Upload(ctx, service.UploadInput{
		Dataset:  ds,
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Body:     f,
	})
}

// jobRunner is the caller loop: it feeds each next cursor back into the
// service until the job reports done.
type jobRunner struct {
	svc        service.IngestService
	notifier   port.Notifier
	sampleCap  int
	cursorFile string
	maxChunks  int
	notify     bool
	release    bool
}

func (j *jobRunner) run(ctx context.Context, cp *checkpoint) error {
	if cp.Report.Done {
		log.Printf("ingest.run: job %s already complete", cp.SourceKey)
		return nil
	}

	rep := ingest.ResumeReporter(cp.Report, j.sampleCap)
	for n := 0; !cp.Report.Done; n++ {
		if j.maxChunks > 0 && n >= j.maxChunks {
			log.Printf("ingest.run: stopping after %d chunks, cursor at offset %d", n, cursorOffset(cp.Cursor))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := j.svc.RunChunk(ctx, service.ChunkInput{
			SourceKey:   cp.SourceKey,
			Dataset:     cp.Dataset,
			DatasetYear: cp.DatasetYear,
			Cursor:      cp.Cursor,
		})
		if err != nil {
			return fmt.Errorf("chunk %d of %s: %w", cp.Report.Chunks+1, cp.SourceKey, err)
		}

		rep.Add(res)
		cp.Cursor = res.NextCursor
		cp.Report = rep.Report()
		if j.cursorFile != "" {
			if err := saveCheckpoint(j.cursorFile, cp); err != nil {
				return err
			}
		}
	}

	if j.notify {
		err := j.notifier.SendJobSummary(ctx, port.JobSummary{
			JobID:       cp.JobID,
			Dataset:     cp.Dataset,
			DatasetYear: cp.DatasetYear,
			SourceKey:   cp.SourceKey,
			Report:      cp.Report,
		})
		if err != nil {
			log.Printf("ingest.run: failed to send job summary: %v", err)
		}
	}

	if j.release && cp.JobID != "" {
		id, err := uuid.Parse(cp.JobID)
		if err != nil {
			log.Printf("ingest.run: not releasing job with malformed ID %q", cp.JobID)
			return nil
		}
		if _, err := j.svc.Release(ctx, id); err != nil {
			return fmt.Errorf("job finished but release failed: %w", err)
		}
	}
	return nil
}

func cursorOffset(c *domain.IngestCursor) int64 {
	if c == nil {
		return 0
	}
	return c.Offset
}
