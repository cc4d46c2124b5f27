package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "List the job keywords a resume is missing",
	RunE:  runSuggest,
}

var (
	suggestResume string
	suggestJob    jobSource
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestResume, "resume", "r", "", "Path to the resume (.txt or .md; - for stdin)")
	suggestJob.register(suggestCmd.Flags())
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	if err := requireFlag("resume", suggestResume); err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	job, err := suggestJob.load(ctx, cmd, svc)
	if err != nil {
		return err
	}
	resume, err := readText(cmd, suggestResume)
	if err != nil {
		return err
	}

	res, err := svc.Suggest(ctx, types.SuggestRequest{ResumeText: resume, JobDescription: job})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, res)
	}
	printer(cmd).PrintSuggest(res)
	return nil
}
