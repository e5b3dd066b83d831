package terra

import "github.com/pkg/errors"

// ErrorKind classifies an engine-level error so the effect-stack ABI can
// post it through a single reporting channel without aborting the process.
type ErrorKind int

const (
	// ErrUnknownEffect indicates push_effect was called with an id
	// outside the effect catalogue.
	ErrUnknownEffect ErrorKind = iota
	// ErrParamCount indicates the wrong byte count was supplied for an
	// effect's packed parameters.
	ErrParamCount
	// ErrParamRange indicates a decoded parameter field failed its range
	// check.
	ErrParamRange
	// ErrStackFull indicates more than MaxStackSize effects were pushed.
	ErrStackFull
	// ErrNoSource indicates stack_end was called with no source loaded.
	ErrNoSource
	// ErrSourceRead indicates the source image could not be read.
	ErrSourceRead
	// ErrAllocation indicates an internal buffer could not be allocated.
	ErrAllocation
	// ErrDebugExport indicates a debug-export effect's write to disk
	// failed.
	ErrDebugExport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownEffect:
		return "unknown effect"
	case ErrParamCount:
		return "wrong parameter count"
	case ErrParamRange:
		return "parameter out of range"
	case ErrStackFull:
		return "effect stack full"
	case ErrNoSource:
		return "no source loaded"
	case ErrSourceRead:
		return "source read failure"
	case ErrAllocation:
		return "allocation failure"
	case ErrDebugExport:
		return "debug export failure"
	default:
		return "unknown error kind"
	}
}

// EngineError is the error type posted on the engine's single
// error-reporting channel. None of these abort the process; the caller
// observing them decides whether to retry or surface them to the user.
type EngineError struct {
	Kind ErrorKind
	Msg  string
}

func (e *EngineError) Error() string {
	return errors.Wrap(errors.New(e.Msg), e.Kind.String()).Error()
}

// newEngineError builds an EngineError of the given kind whose message is
// format applied to args.
func newEngineError(kind ErrorKind, format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: kind, Msg: errors.WithMessagef(errors.New(""), format, args...).Error()}
}

// ErrorReporter receives EngineErrors posted by the driver. A nil reporter
// silently drops errors, matching the "drop and continue" recovery policy
// assigned to most error kinds.
type ErrorReporter func(*EngineError)

// SolverDiagnostic reports a solver's best-effort termination state.
// Non-convergence is a warning, not an error: the solver always returns
// its best-effort result alongside this diagnostic.
type SolverDiagnostic struct {
	IterationsUsed int
	FinalResidual  float64
	Converged      bool
}
