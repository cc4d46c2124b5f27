package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/metrics"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing /extract, /score, /suggest-keywords,
/optimize and /optimize/stream, plus /health, /status, /schemas and /metrics.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "Address to listen on")
	f.Int("rate-limit", 60, "Requests per client per rate window (0 disables)")
	f.Int("max-in-flight", 10, "Concurrent operations before requests are rejected")

	mustBind("server.addr", f.Lookup("addr"))
	mustBind("server.rate-limit", f.Lookup("rate-limit"))
	mustBind("concurrency.max-in-flight", f.Lookup("max-in-flight"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	recorder := metrics.NewRecorder()
	svc, err := pipeline.New(cfg, pipeline.WithLogger(zlog), pipeline.WithObserver(recorder))
	if err != nil {
		return err
	}
	recorder.WatchStatus(svc.Status)

	srv := server.New(svc,
		server.WithLogger(zlog),
		server.WithMetrics(recorder.Handler()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("serving",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("max_in_flight", cfg.Concurrency.MaxInFlight),
		zap.Int("rate_limit", cfg.Server.RateLimit))
	return srv.Start(ctx)
}
