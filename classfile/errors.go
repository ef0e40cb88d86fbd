package classfile

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Parse error taxonomy
// ---------------------------------------------------------------------------
//
// Every parse failure wraps ErrMalformed so callers can classify a failed
// file with a single errors.Is check while still seeing the specific cause.

// ErrMalformed is the root of all class-file parse errors.
var ErrMalformed = errors.New("malformed class file")

var (
	ErrBadMagic        = fmt.Errorf("%w: bad magic number", ErrMalformed)
	ErrTruncated       = fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	ErrBadVersion      = fmt.Errorf("%w: unsupported format version", ErrMalformed)
	ErrBadPoolTag      = fmt.Errorf("%w: unknown constant pool tag", ErrMalformed)
	ErrBadPoolIndex    = fmt.Errorf("%w: constant pool index out of range", ErrMalformed)
	ErrBadAttribute    = fmt.Errorf("%w: corrupt attribute", ErrMalformed)
	ErrTrailingBytes   = fmt.Errorf("%w: trailing bytes after class structure", ErrMalformed)
	ErrBadInstruction  = fmt.Errorf("%w: corrupt instruction stream", ErrMalformed)
	ErrBadDescriptor   = fmt.Errorf("%w: invalid type descriptor", ErrMalformed)
	ErrPoolOverflow    = errors.New("constant pool full")
	ErrMethodsOverflow = errors.New("method table full")
)
