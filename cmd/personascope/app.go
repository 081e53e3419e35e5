package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/c360studio/personascope/analysis"
	"github.com/c360studio/personascope/config"
	"github.com/c360studio/personascope/export"
	"github.com/c360studio/personascope/pipeline"
	"github.com/c360studio/personascope/vocabulary/persona"
)

func analyzeCmd(app *appContext) *cobra.Command {
	var (
		mode         string
		keywordFlags []string
		month        string
		minText      int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file|glob>...",
		Short: "Run the pipeline and print a retention summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.logger()
			cfg, err := app.loadConfig(logger)
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, mode, keywordFlags, minText); err != nil {
				return err
			}

			result, err := pipeline.New(cfg, logger).RunFiles(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderSummary(out, result, cfg)
			if month != "" {
				renderSpotlight(out, result, month, cfg.Spotlight.MinTextLength)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "classification mode (dominant or multi)")
	cmd.Flags().StringArrayVar(&keywordFlags, "keywords", nil, "keyword override, persona=comma,separated,phrases (repeatable)")
	cmd.Flags().StringVar(&month, "month", "", "spotlight a month: list its per-user feedback entries")
	cmd.Flags().IntVar(&minText, "min-text", 0, "minimum text length for spotlight entries")
	return cmd
}

func exportCmd(app *appContext) *cobra.Command {
	var (
		mode         string
		keywordFlags []string
		format       string
		series       string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "export <file|glob>...",
		Short: "Run the pipeline and export aggregates or a dense series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.logger()
			cfg, err := app.loadConfig(logger)
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, mode, keywordFlags, 0); err != nil {
				return err
			}
			if format == "" {
				format = cfg.Export.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			result, err := pipeline.New(cfg, logger).RunFiles(args)
			if err != nil {
				return err
			}

			var rendered string
			if series != "" {
				kind := export.SeriesKind(strings.ToLower(series))
				rendered, err = export.Series(result.Aggregates, kind, f)
			} else {
				rendered, err = export.Aggregates(result.Aggregates, f)
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "classification mode (dominant or multi)")
	cmd.Flags().StringArrayVar(&keywordFlags, "keywords", nil, "keyword override, persona=comma,separated,phrases (repeatable)")
	cmd.Flags().StringVar(&format, "format", "", "export format (csv or json; default from config)")
	cmd.Flags().StringVar(&series, "series", "", "export a dense series instead of flat rows (retention or users)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func watchCmd(app *appContext) *cobra.Command {
	var (
		mode         string
		keywordFlags []string
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run the pipeline whenever the input file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.logger()
			cfg, err := app.loadConfig(logger)
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, mode, keywordFlags, 0); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = pipeline.New(cfg, logger).Watch(ctx, args[0], func(result *pipeline.Result) {
				renderSummary(out, result, cfg)
				fmt.Fprintln(out)
			})
			if ctx.Err() != nil {
				return nil // interrupted, not a failure
			}
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "classification mode (dominant or multi)")
	cmd.Flags().StringArrayVar(&keywordFlags, "keywords", nil, "keyword override, persona=comma,separated,phrases (repeatable)")
	return cmd
}

func keywordsCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print the effective persona keyword catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := app.logger()
			cfg, err := app.loadConfig(logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			keywords := cfg.EffectiveKeywords()
			for _, p := range persona.Catalog() {
				fmt.Fprintf(out, "%d. %s (%s)\n", p.Priority, p.Label, p.Key)
				fmt.Fprintf(out, "   %s\n", strings.Join(keywords[p.Key], ", "))
			}
			return nil
		},
	}
}

// applyOverrides folds CLI flags into the loaded config and re-validates.
func applyOverrides(cfg *config.Config, mode string, keywordFlags []string, minText int) error {
	if mode != "" {
		cfg.Classification.Mode = mode
	}
	if minText > 0 {
		cfg.Spotlight.MinTextLength = minText
	}
	for _, flag := range keywordFlags {
		key, list, ok := strings.Cut(flag, "=")
		if !ok {
			return fmt.Errorf("bad --keywords value %q (expected persona=a,b,c)", flag)
		}
		key = strings.TrimSpace(key)
		if cfg.Classification.Keywords == nil {
			cfg.Classification.Keywords = make(map[string][]string)
		}
		cfg.Classification.Keywords[key] = persona.ParseList(list)
	}
	return cfg.Validate()
}

var (
	headline = color.New(color.Bold)
	positive = color.New(color.FgGreen)
	negative = color.New(color.FgRed)
	muted    = color.New(color.Faint)
)

// renderSummary prints the aggregate table for one pipeline result.
func renderSummary(w io.Writer, result *pipeline.Result, cfg *config.Config) {
	months := result.Aggregates.Months()
	headline.Fprintf(w, "parsed %d data rows, %d user-month records across %d months (%s mode)\n",
		result.RowCount, len(result.Records), len(months), cfg.Classification.Mode)

	if result.Empty() {
		muted.Fprintln(w, "parsed 0 usable rows; nothing to aggregate")
		return
	}

	fmt.Fprintf(w, "%-8s  %-26s  %6s  %9s  %8s  %10s  %8s  %8s\n",
		"month", "persona", "users", "retained", "churned", "retention", "ret Δ", "users Δ")
	for _, row := range result.Aggregates.Rows() {
		fmt.Fprintf(w, "%-8s  %-26s  %6d  %9d  %8d  %9.1f%%  %8s  %8s\n",
			row.Month, row.Label, row.Users, row.Retained, row.Churned,
			row.Retention*100,
			formatDelta(row.RetentionMoM, true),
			formatIntDelta(row.UsersMoM))
	}
	if len(months) > 0 {
		muted.Fprintf(w, "note: %s retention is structurally incomplete (no successor month observed)\n",
			months[len(months)-1])
	}
}

// renderSpotlight lists the per-user feedback entries for one month.
func renderSpotlight(w io.Writer, result *pipeline.Result, month string, minText int) {
	entries := analysis.MonthEntries(result.Records, month, minText)
	headline.Fprintf(w, "\nfeedback for %s (%d entries)\n", month, len(entries))
	for _, e := range entries {
		label := e.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%s  [%s]\n", e.UserID, label)
		for _, line := range strings.Split(e.Text, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func formatDelta(d *float64, percent bool) string {
	if d == nil {
		return "-"
	}
	v := *d
	if percent {
		v *= 100
	}
	s := fmt.Sprintf("%+.1f", v)
	if percent {
		s += "pp"
	}
	switch {
	case *d > 0:
		return positive.Sprint(s)
	case *d < 0:
		return negative.Sprint(s)
	default:
		return s
	}
}

func formatIntDelta(d *int) string {
	if d == nil {
		return "-"
	}
	s := fmt.Sprintf("%+d", *d)
	switch {
	case *d > 0:
		return positive.Sprint(s)
	case *d < 0:
		return negative.Sprint(s)
	default:
		return s
	}
}
