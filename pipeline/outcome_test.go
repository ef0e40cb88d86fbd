package pipeline

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/chazu/weft/classfile"
	"github.com/chazu/weft/enhance"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"malformed root", classfile.ErrMalformed, FailureMalformed},
		{"malformed wrapped", fmt.Errorf("parse: %w", classfile.ErrBadMagic), FailureMalformed},
		{"enhancement root", enhance.ErrCannotEnhance, FailureEnhancement},
		{"enhancement wrapped", fmt.Errorf("apply: %w", enhance.ErrAccessorCollision), FailureEnhancement},
		{"io", fs.ErrNotExist, FailureIO},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOutcomeStrings(t *testing.T) {
	if got := StateEnhanced.String(); got != "enhanced" {
		t.Errorf("State = %q, want enhanced", got)
	}
	if got := ReasonAlreadyEnhanced.String(); got != "already enhanced" {
		t.Errorf("Reason = %q, want already enhanced", got)
	}
	if got := FailureMalformed.String(); got != "malformed" {
		t.Errorf("FailureKind = %q, want malformed", got)
	}
}
