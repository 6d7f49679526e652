package grammar

import "bytes"

// alternative is one branch of an ordered choice.
type alternative[T any] struct {
	name  string
	parse func(in []byte) (T, []byte, error)
}

// alt tries each alternative in order and returns the first success. Only
// syntax errors are backtracked; any other error aborts the choice.
func alt[T any](rule string, in []byte, alts []alternative[T]) (T, []byte, error) {
	var (
		zero    T
		failure error
	)
	for _, a := range alts {
		v, rest, err := a.parse(in)
		if err == nil {
			return v, rest, nil
		}
		if !isBacktrack(err) {
			return zero, nil, err
		}
		failure = furthest(failure, err)
	}
	if se, ok := failure.(*SyntaxError); ok && len(se.rest) < len(in) {
		return zero, nil, failure
	}
	return zero, nil, syntaxErr(rule, in)
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// ws0 skips zero or more whitespace bytes.
func ws0(in []byte) []byte {
	i := 0
	for i < len(in) && isSpace(in[i]) {
		i++
	}
	return in[i:]
}

// ws1 skips one or more whitespace bytes.
func ws1(in []byte) ([]byte, error) {
	rest := ws0(in)
	if len(rest) == len(in) {
		return nil, syntaxErr("whitespace", in)
	}
	return rest, nil
}

// takeWhile1 splits off the longest non-empty prefix whose bytes satisfy pred.
func takeWhile1(rule string, in []byte, pred func(byte) bool) ([]byte, []byte, error) {
	i := 0
	for i < len(in) && pred(in[i]) {
		i++
	}
	if i == 0 {
		return nil, nil, syntaxErr(rule, in)
	}
	return in[:i], in[i:], nil
}

// tag matches lit exactly.
func tag(lit string, in []byte) ([]byte, error) {
	if !bytes.HasPrefix(in, []byte(lit)) {
		return nil, syntaxErr("'"+lit+"'", in)
	}
	return in[len(lit):], nil
}

// tagNoCase matches lit ignoring ASCII case.
func tagNoCase(lit string, in []byte) ([]byte, error) {
	if len(in) < len(lit) || !bytes.EqualFold(in[:len(lit)], []byte(lit)) {
		return nil, syntaxErr(lit, in)
	}
	return in[len(lit):], nil
}

// keyword matches kw ignoring case and requires a keyword boundary after it,
// so that DATE does not match the front of DATETIME.
func keyword(kw string, in []byte) ([]byte, error) {
	rest, err := tagNoCase(kw, in)
	if err != nil {
		return nil, err
	}
	if !atBoundary(rest) {
		return nil, syntaxErr(kw, in)
	}
	return rest, nil
}

// keywords matches a whitespace-separated keyword phrase such as NOT NULL.
func keywords(in []byte, words ...string) ([]byte, error) {
	rest := in
	for i, w := range words {
		if i > 0 {
			next, err := ws1(rest)
			if err != nil {
				return nil, syntaxErr(w, rest)
			}
			rest = next
		}
		next, err := keyword(w, rest)
		if err != nil {
			return nil, err
		}
		rest = next
	}
	return rest, nil
}

// commaSeparator matches whitespace, a comma, then whitespace.
func commaSeparator(in []byte) ([]byte, error) {
	rest, err := tag(",", ws0(in))
	if err != nil {
		return nil, syntaxErr("','", in)
	}
	return ws0(rest), nil
}

// statementTerminator consumes a ';', a line break or end of input together
// with the whitespace on both sides. A ';' after the line break belongs to
// the same terminator.
func statementTerminator(in []byte) ([]byte, error) {
	rest := ws0(in)
	switch {
	case len(rest) > 0 && rest[0] == ';':
		return ws0(rest[1:]), nil
	case len(rest) == 0:
		return rest, nil
	case bytes.IndexByte(in[:len(in)-len(rest)], '\n') >= 0:
		return rest, nil
	default:
		return nil, syntaxErr("statement terminator", rest)
	}
}

// validIdentifier matches an unquoted identifier. A run that spells a
// reserved keyword followed by a keyword boundary is rejected.
func (g *Grammar) validIdentifier(in []byte) ([]byte, []byte, error) {
	ident, rest, err := takeWhile1("identifier", in, isIdentByte)
	if err != nil {
		return nil, nil, err
	}
	if g.keywords.Contains(ident) && atBoundary(rest) {
		return nil, nil, syntaxErr("identifier", in)
	}
	return ident, rest, nil
}

// sqlIdentifier matches an unquoted identifier or one wrapped in backticks or
// brackets. Quoted identifiers skip the keyword check.
func (g *Grammar) sqlIdentifier(in []byte) ([]byte, []byte, error) {
	return alt("identifier", in, []alternative[[]byte]{
		{"identifier", g.validIdentifier},
		{"quoted identifier", quoted('`', '`')},
		{"bracketed identifier", quoted('[', ']')},
	})
}

func quoted(open, closing byte) func([]byte) ([]byte, []byte, error) {
	return func(in []byte) ([]byte, []byte, error) {
		rest, err := tag(string(open), in)
		if err != nil {
			return nil, nil, err
		}
		ident, rest, err := takeWhile1("identifier", rest, isIdentByte)
		if err != nil {
			return nil, nil, err
		}
		rest, err = tag(string(closing), rest)
		if err != nil {
			return nil, nil, err
		}
		return ident, rest, nil
	}
}

// asAlias matches whitespace, an optional AS keyword, and the alias identifier.
func (g *Grammar) asAlias(in []byte) (string, []byte, error) {
	rest, err := ws1(in)
	if err != nil {
		return "", nil, err
	}
	if afterAS, err := keyword("AS", rest); err == nil {
		if afterWS, err := ws1(afterAS); err == nil {
			rest = afterWS
		}
	}
	alias, rest, err := g.sqlIdentifier(rest)
	if err != nil {
		return "", nil, err
	}
	return string(alias), rest, nil
}
