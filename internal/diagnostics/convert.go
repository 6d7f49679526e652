package diagnostics

import (
	"errors"
	"fmt"

	"github.com/electwix/sqlast/internal/grammar"
)

// DefaultContextLines is the number of source lines shown around a grammar error.
const DefaultContextLines = 1

// FromError converts an error returned by the grammar into a diagnostic for
// path. src is the buffer that was parsed; it supplies the source context.
// Errors that are not grammar errors become a plain E101 without a position.
func FromError(path string, src []byte, err error) Diagnostic {
	var (
		se *grammar.SyntaxError
		re *grammar.RangeError
		ue *grammar.UnsupportedStatementError
	)
	switch {
	case errors.As(err, &re):
		return withContext(Errorf("%s %q is out of range: %s", re.Rule, re.Text, re.Reason).
			WithCode(ErrRange).
			WithNote("lengths must be between 0 and 65535 and integers must fit in 64 bits"), path, src, re.Position)
	case errors.As(err, &ue):
		return withContext(Errorf("%s statements are not supported", ue.Keyword).
			WithCode(ErrUnsupported).
			WithNote("only CREATE TABLE and INSERT can be parsed"), path, src, ue.Position)
	case errors.As(err, &se) && se.Incomplete():
		return withContext(Errorf("statement ends early: expected %s", se.Rule).
			WithCode(ErrIncomplete).
			WithSuggestion("check for a missing ')' or closing quote", ""), path, src, se.Position)
	case errors.As(err, &se):
		return withContext(Errorf("syntax error: expected %s", se.Rule).
			WithCode(ErrSyntax), path, src, se.Position)
	case errors.Is(err, grammar.ErrInputTooLarge):
		return Error(err.Error()).WithCode(ErrInputTooLarge).WithSource("grammar").
			AtLocation(Location{Path: path}).Build()
	default:
		return Error(fmt.Sprint(err)).WithCode(ErrSyntax).WithSource("grammar").
			AtLocation(Location{Path: path}).Build()
	}
}

func withContext(b *Builder, path string, src []byte, pos grammar.Position) Diagnostic {
	b.WithSource("grammar").AtLocation(Location{
		Path:   path,
		Line:   pos.Line,
		Column: pos.Column,
		Offset: pos.Offset,
	})
	if ctx, err := ExtractContext(src, pos.Line, pos.Column, DefaultContextLines); err == nil {
		b.WithContext(ctx.Format())
	}
	return b.Build()
}
