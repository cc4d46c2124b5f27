package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Merge missing job keywords into a resume and rescore it",
	Long: `Score the resume, add the job keywords it is missing (plus any --extra
keywords) to its skills section in the list style it already uses, and score
the result against the original. With --out the optimized text is written to
a file named after the company and role.`,
	RunE: runOptimize,
}

var (
	optimizeResume  string
	optimizeExtra   []string
	optimizeCompany string
	optimizeRole    string
	optimizeOut     string
	optimizeJob     jobSource
)

func init() {
	f := optimizeCmd.Flags()
	f.StringVarP(&optimizeResume, "resume", "r", "", "Path to the resume (.txt or .md; - for stdin)")
	f.StringSliceVar(&optimizeExtra, "extra", nil, "Additional keywords to add (comma separated)")
	f.StringVar(&optimizeCompany, "company", "", "Company name, used for the output filename")
	f.StringVar(&optimizeRole, "role", "", "Role title, used for the output filename")
	f.StringVarP(&optimizeOut, "out", "o", "", "Directory to write the optimized resume to")
	optimizeJob.register(f)
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	if err := requireFlag("resume", optimizeResume); err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	job, err := optimizeJob.load(ctx, cmd, svc)
	if err != nil {
		return err
	}
	resume, err := readText(cmd, optimizeResume)
	if err != nil {
		return err
	}

	var progress pipeline.ProgressCallback
	if !jsonOutput {
		progress = func(ev pipeline.ProgressEvent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "-> %s\n", ev.Message)
		}
	}
	res, err := svc.Optimize(ctx, types.OptimizeRequest{
		ResumeText:     resume,
		JobDescription: job,
		ExtraKeywords:  optimizeExtra,
		Company:        optimizeCompany,
		Role:           optimizeRole,
	}, progress)
	if err != nil {
		return err
	}

	if optimizeOut != "" {
		if err := os.MkdirAll(optimizeOut, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(optimizeOut, res.Filename)
		if err := os.WriteFile(path, []byte(res.OptimizedText), 0o644); err != nil {
			return fmt.Errorf("failed to write optimized resume: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Optimized resume written to %s\n", path)
	}

	if jsonOutput {
		return printJSON(cmd, res)
	}
	printer(cmd).PrintOptimize(res)
	return nil
}
