// Package speclimits loads CD/CW test exports, reshapes them into
// long-format measurements and checks them against specification limits.
package speclimits

import (
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"go.uber.org/zap"
)

// Source is one wide measurement table tagged with its process.
type Source struct {
	// Process is the partition the table belongs to.
	Process models.Process
	// Path is a .csv or .xlsx file.
	Path string
	// Sheet selects the worksheet of an Excel source. Empty means the first.
	Sheet string
}

// Options configures Load.
type Options struct {
	// Sources are the measurement tables to load.
	Sources []Source
	// LimitsPath is the limits workbook. Empty skips limit matching.
	LimitsPath string
	// LimitsSheet restricts limit parsing to one worksheet.
	LimitsSheet string
	// LimitsLayout forces a limits layout. Empty detects it.
	LimitsLayout models.LimitLayout
	// LimitsRange is a defined name or cell reference restricting limit parsing.
	LimitsRange string
	// Rules are the column detection heuristics.
	Rules normalize.Rules
	// Duplicates decides how rules sharing a key are applied.
	Duplicates match.DuplicatePolicy
	// Logger receives progress and warnings. Nil discards them.
	Logger *zap.Logger
}

// DefaultOptions returns options for the usual file names in the working
// directory.
func DefaultOptions() Options {
	return Options{
		Sources: []Source{
			{Process: models.ProcessCD, Path: "CD_unificado.csv"},
			{Process: models.ProcessCW, Path: "CW_unificado.csv"},
		},
		LimitsPath:   "Limites en tablas (2).xlsx",
		LimitsLayout: models.LayoutAuto,
		Rules:        normalize.DefaultRules(),
		Duplicates:   match.DuplicatesFirst,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
