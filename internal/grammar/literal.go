package grammar

import (
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/electwix/sqlast/internal/ast"
)

// maxScale is the number of fractional digits that always fit in a uint64.
const maxScale = 19

// literalRules are tried in order. Fixed point must come before integer, or
// the integer branch would take the integral digits and strand ".fraction".
var literalRules = []alternative[ast.Literal]{
	{"fixed point", fixedPoint},
	{"integer", integer},
	{"string", stringLiteral},
	{"NULL", keywordLiteral("NULL", ast.LiteralNull)},
	{"CURRENT_TIMESTAMP", keywordLiteral("CURRENT_TIMESTAMP", ast.LiteralCurrentTimestamp)},
	{"CURRENT_DATE", keywordLiteral("CURRENT_DATE", ast.LiteralCurrentDate)},
	{"CURRENT_TIME", keywordLiteral("CURRENT_TIME", ast.LiteralCurrentTime)},
}

// literal parses one constant value.
func literal(in []byte) (ast.Literal, []byte, error) {
	return alt("literal", in, literalRules)
}

// literalList parses one or more literals joined by sep.
func literalList(in []byte, sep func([]byte) ([]byte, error)) ([]ast.Literal, []byte, error) {
	first, rest, err := literal(in)
	if err != nil {
		return nil, nil, err
	}
	values := []ast.Literal{first}
	for {
		afterSep, err := sep(rest)
		if err != nil {
			return values, rest, nil
		}
		v, next, err := literal(afterSep)
		if err != nil {
			if !isBacktrack(err) {
				return nil, nil, err
			}
			return values, rest, nil
		}
		values = append(values, v)
		rest = next
	}
}

// optComma is the separator inside VALUES tuples: a comma is optional but
// adjacent literals still need whitespace or a comma between them.
func optComma(in []byte) ([]byte, error) {
	if rest, err := commaSeparator(in); err == nil {
		return rest, nil
	}
	return ws1(in)
}

func optMinus(in []byte) (bool, []byte) {
	if len(in) > 0 && in[0] == '-' {
		return true, in[1:]
	}
	return false, in
}

func digit1(in []byte) ([]byte, []byte, error) {
	return takeWhile1("digits", in, isDigit)
}

// fixedPoint parses -?digits.digits. The sign covers the whole value.
func fixedPoint(in []byte) (ast.Literal, []byte, error) {
	negative, rest := optMinus(in)
	integral, rest, err := digit1(rest)
	if err != nil {
		return ast.Literal{}, nil, syntaxErr("fixed point", in)
	}
	if rest, err = tag(".", rest); err != nil {
		return ast.Literal{}, nil, syntaxErr("fixed point", in)
	}
	fractional, rest, err := digit1(rest)
	if err != nil {
		return ast.Literal{}, nil, syntaxErr("fixed point", in)
	}
	ip, err := strconv.ParseUint(string(integral), 10, 64)
	if err != nil {
		return ast.Literal{}, nil, rangeErr("fixed point", in[:len(in)-len(rest)], "integral part exceeds 64 bits", in)
	}
	if len(fractional) > maxScale {
		return ast.Literal{}, nil, rangeErr("fixed point", in[:len(in)-len(rest)], "more than 19 fractional digits", in)
	}
	fp, err := strconv.ParseUint(string(fractional), 10, 64)
	if err != nil {
		return ast.Literal{}, nil, rangeErr("fixed point", in[:len(in)-len(rest)], "fractional part exceeds 64 bits", in)
	}
	return ast.Fixed(negative, ip, fp, uint8(len(fractional))), rest, nil
}

// integer parses -?digits. Positive values above MaxInt64 become unsigned literals.
func integer(in []byte) (ast.Literal, []byte, error) {
	negative, rest := optMinus(in)
	digits, rest, err := digit1(rest)
	if err != nil {
		return ast.Literal{}, nil, syntaxErr("integer", in)
	}
	text := in[:len(in)-len(rest)]
	magnitude, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return ast.Literal{}, nil, rangeErr("integer", text, "exceeds 64 bits", in)
	}
	switch {
	case !negative && magnitude <= math.MaxInt64:
		return ast.Int64(int64(magnitude)), rest, nil
	case !negative:
		return ast.Uint64(magnitude), rest, nil
	case magnitude <= math.MaxInt64:
		return ast.Int64(-int64(magnitude)), rest, nil
	case magnitude == math.MaxInt64+1:
		return ast.Int64(math.MinInt64), rest, nil
	default:
		return ast.Literal{}, nil, rangeErr("integer", text, "below the smallest 64-bit integer", in)
	}
}

// stringLiteral parses '...' with no escape processing; the content runs to the
// next quote, so '' is the empty string. Content that is not valid UTF-8
// becomes a blob literal.
func stringLiteral(in []byte) (ast.Literal, []byte, error) {
	rest, err := tag("'", in)
	if err != nil {
		return ast.Literal{}, nil, syntaxErr("string", in)
	}
	i := 0
	for i < len(rest) && rest[i] != '\'' {
		i++
	}
	if i == len(rest) {
		return ast.Literal{}, nil, syntaxErr("closing quote", rest[i:])
	}
	content := rest[:i]
	rest = rest[i+1:]
	if !utf8.Valid(content) {
		return ast.Blob(content), rest, nil
	}
	return ast.Str(string(content)), rest, nil
}

func keywordLiteral(kw string, kind ast.LiteralKind) func([]byte) (ast.Literal, []byte, error) {
	return func(in []byte) (ast.Literal, []byte, error) {
		rest, err := keyword(kw, in)
		if err != nil {
			return ast.Literal{}, nil, err
		}
		return ast.Keyword(kind), rest, nil
	}
}
