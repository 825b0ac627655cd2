// Package diagnostics implements the single CompileError kind plus a
// pretty-printer for it: a phase-tagged error with a location and a
// human-readable message. Stage is metadata attached to that one
// error kind, not a second error kind of its own.
package diagnostics

import (
	"fmt"

	"github.com/sourcelang/corec/internal/token"
)

// Stage names the pipeline stage that raised an error, purely for
// rendering: an "internal error" message benefits from knowing which
// stage boundary failed.
type Stage string

const (
	StageLoad         Stage = "load"
	StageResolve      Stage = "resolve"
	StageTypeCheck    Stage = "typecheck"
	StageMonomorphize Stage = "monomorphize"
	StageLower        Stage = "lower"
	StageOptimize     Stage = "optimize"
	StageAnalyze      Stage = "analyze"
	StageTypeUse      Stage = "type-use"
	StageDCEPrune     Stage = "dce-prune"
)

// CompileError is the one error kind the core ever raises.
type CompileError struct {
	Message string
	Location token.SourceLocation
	Stage Stage // optional, "" if not attributable to one stage
}

func New(stage Stage, loc token.SourceLocation, format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Location: loc, Stage: stage}
}

// Internal builds the "internal error" form for a failed invariant
// check, attributed to the zero location when none is available.
func Internal(stage Stage, message string) *CompileError {
	return &CompileError{Message: "internal error: " + message, Location: token.SourceLocation{}, Stage: stage}
}

func (e *CompileError) Error() string {
	loc := e.Location.String()
	if e.Stage != "" {
		return fmt.Sprintf("%s: [%s] %s", loc, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}
