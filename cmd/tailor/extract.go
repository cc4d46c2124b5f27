package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the technical keywords of a job description",
	Long:  "Extract catalog keywords from a job description in order of appearance, grouped by category, and classify its industry.",
	RunE:  runExtract,
}

var extractJob jobSource

func init() {
	extractJob.register(extractCmd.Flags())
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	job, err := extractJob.load(ctx, cmd, svc)
	if err != nil {
		return err
	}

	res, err := svc.Extract(ctx, types.ExtractRequest{JobDescription: job})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, res)
	}
	printer(cmd).PrintExtract(res)
	return nil
}
