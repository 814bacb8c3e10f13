package report

import (
	"errors"
	"fmt"
)

// ErrVariantBound is returned when a variant's subtree is bound twice.
var ErrVariantBound = errors.New("variant subtree already bound")

// MalformedLineError reports a prefixed line that does not have the shape the
// parser needs at that point.
type MalformedLineError struct {
	Line     int
	Text     string
	Expected string
	Err      error
}

func (e *MalformedLineError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("line %d: malformed type-size line", e.Line)
	if e.Expected != "" {
		msg += " (expected " + e.Expected + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + ": " + fmt.Sprintf("%q", e.Text)
}

func (e *MalformedLineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BrokenInvariantError reports an inner line that nests deeper although the
// sibling before it is not a variant (or the variant already has a subtree).
type BrokenInvariantError struct {
	Line int
	Text string
	Prev string
	Err  error
}

func (e *BrokenInvariantError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("line %d: deeper indentation must follow a variant, previous sibling is %s", e.Line, e.Prev)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + ": " + fmt.Sprintf("%q", e.Text)
}

func (e *BrokenInvariantError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
