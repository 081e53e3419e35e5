// Package pipeline wires the full recomputation pass: parse CSV text,
// normalize rows into user-month records, classify them against the
// configured keyword lists, resolve retention and aggregate. A pass is
// synchronous, pure and runs to completion; changing any input (CSV
// text, keywords, mode) means running a fresh pass.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/c360studio/personascope/analysis"
	"github.com/c360studio/personascope/config"
	"github.com/c360studio/personascope/source/csvtab"
	"github.com/c360studio/personascope/source/feedback"
)

// Pipeline runs recomputation passes for one configuration.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Pipeline. A nil logger falls back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Result is the output of one pass.
type Result struct {
	// RunID uniquely identifies the pass, for log correlation.
	RunID string

	// RowCount is the number of parsed data rows, before dropping.
	RowCount int

	// Records holds the classified user-month records.
	Records []analysis.ClassifiedRecord

	// Aggregates holds the month×persona aggregation.
	Aggregates *analysis.AggregateSet
}

// Empty reports the zero-row condition: a header parsed but no usable
// data rows survived. Distinct from a read failure; the dataset is
// simply empty.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Run executes one pass over CSV text. It never fails: unusable input
// degrades to an empty result.
func (p *Pipeline) Run(text string) *Result {
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))

	table := csvtab.Parse(text)
	logger.Debug("parsed csv",
		slog.Int("columns", len(table.Header)),
		slog.Int("rows", len(table.Rows)))

	records := feedback.NewNormalizer(logger).Normalize(table)
	mode, err := analysis.ParseMode(p.cfg.Classification.Mode)
	if err != nil {
		// Validate() rejects unknown modes before a pipeline exists;
		// fall back rather than fail a pass.
		logger.Warn("invalid classification mode, using dominant", slog.String("error", err.Error()))
		mode = analysis.ModeDominant
	}

	classified := analysis.ClassifyRecords(records, p.cfg.EffectiveKeywords())
	set := analysis.Aggregate(classified, mode)

	logger.Info("pipeline pass complete",
		slog.Int("rows", len(table.Rows)),
		slog.Int("records", len(records)),
		slog.Int("aggregates", len(set.Rows())),
		slog.String("mode", string(mode)))

	return &Result{
		RunID:      runID,
		RowCount:   len(table.Rows),
		Records:    classified,
		Aggregates: set,
	}
}

// RunFiles expands the given path patterns, reads every matching file
// and runs one pass over the merged dataset. Records for the same user
// and month across files merge the same way multiple rows do within
// one file.
func (p *Pipeline) RunFiles(patterns []string) (*Result, error) {
	paths, err := ExpandInputs(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files match %s", strings.Join(patterns, ", "))
	}

	if len(paths) == 1 {
		text, err := ReadInput(paths[0])
		if err != nil {
			return nil, err
		}
		return p.Run(text), nil
	}

	// Multi-file inputs may carry different schemas, so each file is
	// parsed and normalized on its own before the merged classification
	// pass.
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))

	var (
		merged   []feedback.Record
		rowCount int
	)
	normalizer := feedback.NewNormalizer(logger)
	for _, path := range paths {
		text, err := ReadInput(path)
		if err != nil {
			return nil, err
		}
		table := csvtab.Parse(text)
		rowCount += len(table.Rows)
		merged = append(merged, normalizer.Normalize(table)...)
		logger.Debug("ingested file", slog.String("path", path), slog.Int("rows", len(table.Rows)))
	}
	records := mergeRecords(merged)

	mode, err := analysis.ParseMode(p.cfg.Classification.Mode)
	if err != nil {
		logger.Warn("invalid classification mode, using dominant", slog.String("error", err.Error()))
		mode = analysis.ModeDominant
	}
	classified := analysis.ClassifyRecords(records, p.cfg.EffectiveKeywords())
	set := analysis.Aggregate(classified, mode)

	logger.Info("pipeline pass complete",
		slog.Int("files", len(paths)),
		slog.Int("rows", rowCount),
		slog.Int("records", len(records)),
		slog.Int("aggregates", len(set.Rows())))

	return &Result{
		RunID:      runID,
		RowCount:   rowCount,
		Records:    classified,
		Aggregates: set,
	}, nil
}

// mergeRecords re-groups records that share a (user, month) key across
// input files, concatenating texts in encounter order and keeping the
// last non-empty activity marker.
func mergeRecords(records []feedback.Record) []feedback.Record {
	grouped := make(map[string]*feedback.Record, len(records))
	var order []string
	for _, rec := range records {
		key := rec.Key()
		existing, ok := grouped[key]
		if !ok {
			r := rec
			grouped[key] = &r
			order = append(order, key)
			continue
		}
		if rec.Text != "" {
			if existing.Text == "" {
				existing.Text = rec.Text
			} else {
				existing.Text += "\n" + rec.Text
			}
		}
		if rec.ActiveNextMonth != "" {
			existing.ActiveNextMonth = rec.ActiveNextMonth
		}
	}

	out := make([]feedback.Record, 0, len(order))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// ReadInput reads one CSV file at the I/O boundary. The pipeline itself
// never touches the filesystem.
func ReadInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read file %s: %w", path, err)
	}
	return string(data), nil
}

// ExpandInputs resolves literal paths and doublestar glob patterns to a
// sorted, de-duplicated file list.
func ExpandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
