package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Long: `Compute the ATS score of a resume: keyword match, formatting, content,
structure and length subscores combined with the configured weights.`,
	RunE: runScore,
}

var (
	scoreResume string
	scorePrior  float64
	scoreJob    jobSource
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreResume, "resume", "r", "", "Path to the resume (.txt or .md; - for stdin)")
	scoreCmd.Flags().Float64Var(&scorePrior, "prior", 0, "Earlier total score to report the improvement against")
	scoreJob.register(scoreCmd.Flags())
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := requireFlag("resume", scoreResume); err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	job, err := scoreJob.load(ctx, cmd, svc)
	if err != nil {
		return err
	}
	resume, err := readText(cmd, scoreResume)
	if err != nil {
		return err
	}

	req := types.ScoreRequest{ResumeText: resume, JobDescription: job}
	if cmd.Flags().Changed("prior") {
		req.PriorScore = &scorePrior
	}
	score, err := svc.Score(ctx, req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, score)
	}
	printer(cmd).PrintScore(score)
	return nil
}
