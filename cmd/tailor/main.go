// Package main provides the tailor command: ATS resume scoring and keyword
// optimization from the shell, over HTTP or as an MCP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tailor",
	Short: "ATS resume scoring and keyword optimization",
	Long: `tailor scores resumes against job descriptions the way applicant tracking
systems do and merges missing keywords into the resume's skills section.

Configuration comes from defaults, an optional resume-tailor.yaml (or --config),
ATS_-prefixed environment variables and flags, in increasing priority.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	jsonOutput bool
)

var (
	loader = config.NewLoader()
	cfg    *config.Config
	zlog   *zap.Logger
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	pf.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	pf.Bool("log-json", false, "Write logs as JSON")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("browser", false, "Render thin job posting pages in headless Chrome (requires Chrome)")

	mustBind("log.json", pf.Lookup("log-json"))
	mustBind("log.debug", pf.Lookup("debug"))
	mustBind("fetch.browser", pf.Lookup("browser"))
}

// mustBind lets a flag override a config key. Binding only fails for an
// undefined flag, which is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := loader.BindFlag(key, flag); err != nil {
		panic(err)
	}
}

// setup loads the configuration and builds the logger before any command
// runs.
func setup(_ *cobra.Command, _ []string) error {
	c, err := loader.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logger.New(c.Log.JSON, c.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, zlog = c, l
	if used := loader.ConfigFileUsed(); used != "" {
		zlog.Debug("config file loaded", zap.String("path", used))
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	err := rootCmd.ExecuteContext(context.Background())
	if zlog != nil {
		_ = zlog.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
