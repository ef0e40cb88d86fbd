package pipeline

import (
	"errors"

	"github.com/chazu/weft/classfile"
	"github.com/chazu/weft/enhance"
)

// ---------------------------------------------------------------------------
// Outcomes
// ---------------------------------------------------------------------------

// State is the terminal state of one file under one context.
type State int

const (
	StateSkipped State = iota
	StateEnhanced
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateEnhanced:
		return "enhanced"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason refines a Skipped state. Not-an-entity, already-enhanced and
// up-to-date are three distinct conditions and are never conflated: a file
// the strategy failed on is Failed, never a skip.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotEntity
	ReasonAlreadyEnhanced
	ReasonUpToDate
)

// String returns the lower-case reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNotEntity:
		return "not an entity"
	case ReasonAlreadyEnhanced:
		return "already enhanced"
	case ReasonUpToDate:
		return "up to date"
	default:
		return "unknown"
	}
}

// Outcome records the terminal state of one file under one context. The
// pipeline emits one per (file, context) pair and never drops one.
type Outcome struct {
	Path    string
	Context string
	State   State
	Reason  Reason // set when State is StateSkipped
	Err     error  // set when State is StateFailed
}

// ---------------------------------------------------------------------------
// Failure classification
// ---------------------------------------------------------------------------

// FailureKind buckets a Failed outcome's error: the input was not a valid
// class container, the strategy could not safely instrument it, or the
// filesystem failed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureMalformed
	FailureEnhancement
	FailureIO
)

// String returns the lower-case kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return ""
	case FailureMalformed:
		return "malformed"
	case FailureEnhancement:
		return "enhancement"
	case FailureIO:
		return "io"
	default:
		return "unknown"
	}
}

// Classify maps an outcome error onto the failure taxonomy. The enhancement
// and malformed families are disjoint by construction, so the order of the
// checks does not matter; anything outside both families reached the
// filesystem.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, enhance.ErrCannotEnhance):
		return FailureEnhancement
	case errors.Is(err, classfile.ErrMalformed):
		return FailureMalformed
	default:
		return FailureIO
	}
}
