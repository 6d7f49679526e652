package grammar

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/electwix/sqlast/internal/ast"
)

// ErrIncomplete marks a syntax error raised because the input ended
// mid-statement. Streaming callers can wait for more bytes; batch callers
// treat it like any other syntax error.
var ErrIncomplete = errors.New("incomplete input")

// ErrInputTooLarge is returned when the input exceeds the configured limit.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// Position locates a failure inside the buffer handed to the grammar.
// Offset is zero-based in bytes; Line and Column are one-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// SyntaxError reports that no alternative of Rule matched at a position.
type SyntaxError struct {
	Rule string
	Position

	// rest aliases the input at the failure while rules run; once located it
	// holds a private copy of the excerpt only.
	rest []byte
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if len(e.rest) == 0 {
		return fmt.Sprintf("%d:%d: expected %s, found end of input", e.Line, e.Column, e.Rule)
	}
	return fmt.Sprintf("%d:%d: expected %s near %q", e.Line, e.Column, e.Rule, excerpt(e.rest))
}

// Near returns the start of the input at the failure, truncated.
func (e *SyntaxError) Near() string { return excerpt(e.rest) }

// Incomplete reports whether the failure happened at end of input.
func (e *SyntaxError) Incomplete() bool { return len(e.rest) == 0 }

// Is makes errors.Is(err, ErrIncomplete) hold for end-of-input failures.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrIncomplete && e.Incomplete()
}

// RangeError reports a numeric literal that does not fit its target. It is
// never backtracked over: once raised, the enclosing statement fails.
type RangeError struct {
	Rule   string
	Text   string
	Reason string
	Position

	rest []byte
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%d:%d: %s %q: %s", e.Line, e.Column, e.Rule, e.Text, e.Reason)
}

// UnsupportedStatementError reports a recognized statement kind that has no grammar.
type UnsupportedStatementError struct {
	Kind    ast.CommandKind
	Keyword string
	Position
}

// Error implements the error interface.
func (e *UnsupportedStatementError) Error() string {
	return fmt.Sprintf("%d:%d: unsupported statement %s", e.Line, e.Column, e.Keyword)
}

// syntaxErr keeps in by reference. It must not copy the remaining input.
func syntaxErr(rule string, in []byte) error {
	return &SyntaxError{Rule: rule, rest: in}
}

func rangeErr(rule string, text []byte, reason string, in []byte) error {
	return &RangeError{Rule: rule, Text: string(text), Reason: reason, rest: in}
}

// isBacktrack reports whether an alternative may be retried after err.
func isBacktrack(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// furthest picks the failure that consumed the most input.
func furthest(a, b error) error {
	if a == nil {
		return b
	}
	sa, okA := a.(*SyntaxError)
	sb, okB := b.(*SyntaxError)
	if okA && okB && len(sb.rest) < len(sa.rest) {
		return b
	}
	return a
}

// locate fills the position of err relative to src and detaches it from src.
func locate(err error, src []byte) error {
	var (
		se *SyntaxError
		re *RangeError
	)
	switch {
	case errors.As(err, &se):
		se.Position = positionOf(src, len(src)-len(se.rest))
		se.rest = bytes.Clone(se.rest[:min(len(se.rest), excerptLimit+1)])
	case errors.As(err, &re):
		re.Position = positionOf(src, len(src)-len(re.rest))
		re.rest = nil
	}
	return err
}

func positionOf(src []byte, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := offset + 1
	if i := bytes.LastIndexByte(before, '\n'); i >= 0 {
		col = offset - i
	}
	return Position{Offset: offset, Line: line, Column: col}
}

// lineTracker converts increasing offsets into positions, scanning each byte
// of the buffer once.
type lineTracker struct {
	offset    int
	newlines  int
	lineStart int
}

func (t *lineTracker) advance(src []byte, offset int) Position {
	seg := src[t.offset:offset]
	if n := bytes.Count(seg, []byte{'\n'}); n > 0 {
		t.newlines += n
		t.lineStart = t.offset + bytes.LastIndexByte(seg, '\n') + 1
	}
	t.offset = offset
	return Position{Offset: offset, Line: t.newlines + 1, Column: offset - t.lineStart + 1}
}

const excerptLimit = 24

func excerpt(b []byte) string {
	if len(b) <= excerptLimit {
		return string(b)
	}
	return string(b[:excerptLimit]) + "..."
}
