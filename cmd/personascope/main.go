// Package main provides the personascope binary entry point.
// Personascope classifies per-user-month feedback text into personas
// and computes month-over-month retention statistics per persona.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/personascope/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "personascope"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Persona retention analytics for feedback CSV exports",
		Long: `Personascope ingests CSV exports of per-user-month feedback text,
classifies each user-month into a persona by keyword matching, derives
month-over-month retention per persona and renders or exports the
aggregates. Everything runs locally in a single pass; nothing is
persisted between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (overrides the layered lookup)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	app := &appContext{
		configPath: &configPath,
		logLevel:   &logLevel,
	}

	cmd.AddCommand(
		analyzeCmd(app),
		exportCmd(app),
		watchCmd(app),
		keywordsCmd(app),
		versionCmd(),
	)
	return cmd
}

// appContext carries the pieces every subcommand needs.
type appContext struct {
	configPath *string
	logLevel   *string
}

// logger builds the process logger from the --log-level flag.
func (a *appContext) logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(*a.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves configuration: an explicit --config file wins,
// otherwise the layered defaults/user/project lookup applies.
func (a *appContext) loadConfig(logger *slog.Logger) (*config.Config, error) {
	if *a.configPath != "" {
		cfg, err := config.LoadFromFile(*a.configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", appName, Version, BuildTime)
		},
	}
}
