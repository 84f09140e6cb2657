package speclimits

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/limits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SourceReport describes how one source table was interpreted.
type SourceReport struct {
	Process models.Process `json:"process"`
	Path    string         `json:"path"`
	Table   string         `json:"table"`
	Columns []string       `json:"columns"`
	Rows    int            `json:"rows"`
	Schema  models.Schema  `json:"schema"`
	Records int            `json:"records"`
}

// Dataset is the result of Load: long-format measurements of every source
// and the limit rules they are checked against.
type Dataset struct {
	Sources      []SourceReport       `json:"sources"`
	Measurements []models.Measurement `json:"-"`
	Limits       []models.LimitRule   `json:"limits"`
	LimitLayout  models.LimitLayout   `json:"limit_layout,omitempty"`
	LimitSheets  []string             `json:"limit_sheets,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`

	index *match.Index
}

// Load reads every source and the limits workbook, detects column roles,
// melts the sources into long format and indexes the limits. Sources are
// read concurrently. A source without a machine column, an unreadable file
// or no variables in any source stops the load; limit layouts that cannot
// be recognized only produce warnings.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	log := opts.logger()
	if err := opts.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection rules: %w", err)
	}
	if len(opts.Sources) == 0 {
		return nil, errors.New("no sources configured")
	}

	reports := make([]SourceReport, len(opts.Sources))
	melted := make([][]models.Measurement, len(opts.Sources))
	var limitRes *limits.Result

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range opts.Sources {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, ms, err := loadSource(src, opts.Rules, log)
			if err != nil {
				return err
			}
			reports[i], melted[i] = report, ms
			return nil
		})
	}
	if opts.LimitsPath != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := limits.ParseFile(opts.LimitsPath, limits.Options{
				Layout: opts.LimitsLayout,
				Sheet:  opts.LimitsSheet,
			}, opts.LimitsRange)
			if err != nil && !errors.Is(err, limits.ErrNoLimitRules) {
				return NewSourceError(opts.LimitsPath, StageLimits, err)
			}
			limitRes = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{Sources: reports}
	withVariables := 0
	for i, r := range reports {
		switch {
		case len(r.Schema.Variables) == 0:
			ds.warnf("%s (%s): no variable columns detected", r.Path, r.Process)
		case r.Schema.VariableFallback:
			ds.warnf("%s (%s): no numeric columns, variables chosen by name pattern", r.Path, r.Process)
		}
		if len(r.Schema.Variables) > 0 {
			withVariables++
		}
		if !r.Schema.HasTimestamp() {
			ds.warnf("%s (%s): no date/time columns, timestamps left empty", r.Path, r.Process)
		}
		ds.Measurements = append(ds.Measurements, melted[i]...)
	}
	if withVariables == 0 {
		return nil, ErrNoVariables
	}

	if limitRes != nil {
		ds.Limits = limitRes.Rules
		ds.LimitLayout = limitRes.Layout
		ds.LimitSheets = limitRes.Sheets
		for _, w := range limitRes.Warnings {
			ds.warnf("%s: %s", opts.LimitsPath, w)
		}
		if len(ds.Limits) == 0 {
			ds.warnf("%s: no limit rules could be parsed, check the workbook layout", opts.LimitsPath)
		}
	}
	ds.index = match.NewIndex(ds.Limits, opts.Duplicates)
	for _, d := range ds.index.Duplicates() {
		ds.warnf("duplicate limit: %s", d)
	}

	for _, w := range ds.Warnings {
		log.Warn("load warning", zap.String("detail", w))
	}
	log.Info("dataset loaded",
		zap.Int("sources", len(ds.Sources)),
		zap.Int("measurements", len(ds.Measurements)),
		zap.Int("limits", len(ds.Limits)),
		zap.String("limit_layout", string(ds.LimitLayout)))
	return ds, nil
}

func loadSource(src Source, rules normalize.Rules, log *zap.Logger) (SourceReport, []models.Measurement, error) {
	t, err := parser.ReadTable(src.Path, parser.TableOptions{Sheet: src.Sheet})
	if err != nil {
		return SourceReport{}, nil, NewSourceError(src.Path, StageRead, err)
	}
	log.Debug("source read",
		zap.String("source", src.Path),
		zap.String("process", string(src.Process)),
		zap.Int("columns", len(t.Headers)),
		zap.Int("rows", len(t.Rows)))

	schema, err := normalize.DetectSchema(t, rules)
	if err != nil {
		return SourceReport{}, nil, NewSourceError(src.Path, StageSchema,
			fmt.Errorf("%w (looked for %v)", err, rules.MachineColumns))
	}

	ms := normalize.Melt(t, schema, src.Process, rules)
	log.Debug("source melted",
		zap.String("source", src.Path),
		zap.String("machine_column", schema.MachineColumn),
		zap.Strings("variables", schema.Variables),
		zap.Int("records", len(ms)))

	return SourceReport{
		Process: src.Process,
		Path:    src.Path,
		Table:   t.Name,
		Columns: t.Headers,
		Rows:    len(t.Rows),
		Schema:  schema,
		Records: len(ms),
	}, ms, nil
}

func (d *Dataset) warnf(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}
