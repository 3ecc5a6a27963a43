package streamjson

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTypeMismatch reports a Value accessor used against the wrong active
// kind. This is a programmer error and is never retried.
var ErrTypeMismatch = errors.New("value kind mismatch")

// ErrInvalidState reports a Parser method called outside its legal
// states, such as Release before Complete.
var ErrInvalidState = errors.New("invalid parser state")

// SyntaxError describes malformed JSON input.
type SyntaxError struct {
	// Offset is the absolute byte offset of the offending input, counted
	// across all chunks written so far.
	Offset int

	msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.msg)
}

func syntaxErrf(off int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Offset: off, msg: fmt.Sprintf(format, args...)}
}
