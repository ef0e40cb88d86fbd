package enhance

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Enhancement error taxonomy
// ---------------------------------------------------------------------------
//
// ErrCannotEnhance covers failures where the class parsed cleanly but the
// strategy could not safely instrument it. Structural corruption discovered
// mid-enhancement (a garbled method body, a dangling pool reference) is not
// wrapped here: it propagates with classfile.ErrMalformed so callers classify
// the file as malformed rather than unenhanceable.

// ErrCannotEnhance is the root of all enhancement failures.
var ErrCannotEnhance = errors.New("cannot enhance class")

var (
	ErrAccessorCollision = fmt.Errorf("%w: accessor name already in use", ErrCannotEnhance)
	ErrConstructorWrite  = fmt.Errorf("%w: persistent field written in constructor", ErrCannotEnhance)
)

// ErrUnknownStrategy reports a strategy name with no registered
// implementation. It is a configuration error, never a per-file outcome.
var ErrUnknownStrategy = errors.New("unknown enhancement strategy")
