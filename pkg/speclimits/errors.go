package speclimits

import (
	"fmt"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/limits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
)

// Errors re-exported from the stage packages for errors.Is checks.
var (
	// ErrMachineColumnNotFound indicates a source without a machine column.
	ErrMachineColumnNotFound = normalize.ErrMachineColumnNotFound
	// ErrNoVariables indicates that no source had a variable column.
	ErrNoVariables = normalize.ErrNoVariables
	// ErrNoLimitRules indicates that the limits workbook yielded no rule.
	ErrNoLimitRules = limits.ErrNoLimitRules
	// ErrEmptyTable indicates a source without a header row.
	ErrEmptyTable = parser.ErrEmptyTable
	// ErrUnsupportedFormat indicates a file extension that cannot be read.
	ErrUnsupportedFormat = parser.ErrUnsupportedFormat
)

// Stage names the step of Load that failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageSchema Stage = "schema"
	StageLimits Stage = "limits"
)

// SourceError represents an error while loading one input file.
type SourceError struct {
	Source string
	Stage  Stage
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(source string, stage Stage, err error) *SourceError {
	return &SourceError{
		Source: source,
		Stage:  stage,
		Err:    err,
	}
}
