package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show breaker states, cache sizes and load",
	Long: `Show the status of a running server (--server), or of a freshly configured
local pipeline, which is useful to check the effective configuration.`,
	RunE: runStatus,
}

var statusServer string

func init() {
	statusCmd.Flags().StringVar(&statusServer, "server", "", "Base URL of a running tailor server, e.g. http://localhost:8080")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	var st pipeline.Status
	if statusServer != "" {
		var err error
		if st, err = fetchStatus(cmd, statusServer); err != nil {
			return err
		}
	} else {
		svc, err := newService()
		if err != nil {
			return err
		}
		st = svc.Status()
	}

	if jsonOutput {
		return printJSON(cmd, st)
	}
	printer(cmd).PrintStatus(st)
	return nil
}

func fetchStatus(cmd *cobra.Command, base string) (pipeline.Status, error) {
	var st pipeline.Status
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimSuffix(base, "/")+"/status", nil)
	if err != nil {
		return st, fmt.Errorf("invalid server URL: %w", err)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return st, fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("server returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("failed to decode status: %w", err)
	}
	return st, nil
}
