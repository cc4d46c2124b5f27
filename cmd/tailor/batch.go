package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/resilience"
)

var batchCmd = &cobra.Command{
	Use:   "batch RESUME...",
	Short: "Score many resumes against one job and write an Excel report",
	Long: `Score every resume file against the same job description concurrently and
write a workbook ranking them by total score. Unreadable or invalid resumes are
listed at the end of the report with their error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var (
	batchReport string
	batchTitle  string
	batchJob    jobSource
)

func init() {
	batchCmd.Flags().StringVar(&batchReport, "report", "ats_report.xlsx", "Path of the Excel report")
	batchCmd.Flags().StringVar(&batchTitle, "title", "", "Job title shown in the report")
	batchJob.register(batchCmd.Flags())
	rootCmd.AddCommand(batchCmd)
}

// batchLine is the JSON form of one batch result.
type batchLine struct {
	Name    string  `json:"name"`
	Outcome string  `json:"outcome"`
	Total   float64 `json:"total_score,omitempty"`
	Missing int     `json:"missing_keywords,omitempty"`
	Error   string  `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	job, err := batchJob.load(ctx, cmd, svc)
	if err != nil {
		return err
	}

	items := make([]pipeline.BatchItem, 0, len(args))
	var unreadable []pipeline.BatchResult
	for _, path := range args {
		text, err := readText(cmd, path)
		if err != nil {
			unreadable = append(unreadable, pipeline.BatchResult{
				Name:    filepath.Base(path),
				Err:     err,
				Outcome: resilience.OutcomeInvalid,
			})
			continue
		}
		items = append(items, pipeline.BatchItem{Name: filepath.Base(path), ResumeText: text})
	}

	results, err := svc.ScoreBatch(ctx, job, items)
	if err != nil {
		return err
	}
	results = append(results, unreadable...)

	report := &export.Report{JobTitle: batchTitle, Generated: time.Now(), Results: results}
	path, err := report.Save(batchReport)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)

	lines := make([]batchLine, 0, len(results))
	for _, r := range results {
		line := batchLine{Name: r.Name, Outcome: r.Outcome}
		if r.Err != nil {
			line.Error = r.Err.Error()
		} else if r.Result != nil {
			line.Total = r.Result.Score.Total
			line.Missing = len(r.Result.MissingKeywords)
		}
		lines = append(lines, line)
	}
	if jsonOutput {
		return printJSON(cmd, lines)
	}
	out := cmd.OutOrStdout()
	for _, l := range lines {
		if l.Error != "" {
			fmt.Fprintf(out, "%-30s  FAILED  %s\n", l.Name, l.Error)
			continue
		}
		fmt.Fprintf(out, "%-30s  %5.1f  (%d missing)\n", l.Name, l.Total, l.Missing)
	}
	return nil
}
