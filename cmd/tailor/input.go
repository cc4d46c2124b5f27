package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// jobSource is the set of mutually exclusive flags naming a job posting.
type jobSource struct {
	file string
	url  string
	text string
}

func (j *jobSource) register(fs *pflag.FlagSet) {
	fs.StringVarP(&j.file, "job", "j", "", "Path to the job description (.txt, .md or .html; - for stdin)")
	fs.StringVar(&j.url, "job-url", "", "URL of the job posting")
	fs.StringVar(&j.text, "job-text", "", "Job description text")
}

// load returns the job text from whichever source was given.
func (j *jobSource) load(ctx context.Context, cmd *cobra.Command, svc *pipeline.Service) (string, error) {
	set := 0
	for _, v := range []string{j.file, j.url, j.text} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return "", fmt.Errorf("one of --job, --job-url or --job-text must be provided")
	case set > 1:
		return "", fmt.Errorf("--job, --job-url and --job-text are mutually exclusive; provide only one")
	case j.url != "":
		text, _, err := svc.FetchJob(ctx, j.url)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		return text, nil
	case j.text != "":
		text, _, err := ingestion.FromText(j.text)
		return text, err
	default:
		return readText(cmd, j.file)
	}
}

// readText loads and cleans a document file; "-" reads stdin.
func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text, _, err := ingestion.FromText(string(raw))
		return text, err
	}
	text, _, err := ingestion.FromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text, nil
}

func newService() (*pipeline.Service, error) {
	svc, err := pipeline.New(cfg, pipeline.WithLogger(zlog))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return svc, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printer(cmd *cobra.Command) *observability.Printer {
	return observability.NewPrinter(cmd.OutOrStdout())
}

// requireFlag reports a missing required string flag.
func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
