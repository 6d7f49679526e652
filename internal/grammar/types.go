package grammar

import (
	"strconv"

	"github.com/electwix/sqlast/internal/ast"
)

const maxWidth = 65535

// typeRules are tried in order; the first match wins.
var typeRules = []alternative[ast.SQLType]{
	{"BOOL", simpleType(ast.TypeBool, "BOOLEAN", "BOOL")},
	{"CHAR", sizedType(ast.TypeChar, "CHAR")},
	{"VARCHAR", sizedType(ast.TypeVarChar, "VARCHAR")},
	{"INT", intType},
	{"DATETIME", simpleType(ast.TypeDateTime, "DATETIME")},
	{"DATE", simpleType(ast.TypeDate, "DATE")},
	{"TIMESTAMP", timestampType},
	{"TEXT", simpleType(ast.TypeText, "TEXT")},
	{"REAL", signIgnoringType(ast.TypeReal, "REAL")},
	{"FLOAT", signIgnoringType(ast.TypeFloat, "FLOAT")},
	{"BLOB", simpleType(ast.TypeBlob, "BLOB")},
	{"UUID", simpleType(ast.TypeUUID, "UUID")},
	{"ENUM", enumType},
}

// typeIdentifier parses a column type. An unknown type is a plain syntax
// error; the column grammar decides what to do with it.
func typeIdentifier(in []byte) (ast.SQLType, []byte, error) {
	return alt("column type", in, typeRules)
}

func simpleType(kind ast.TypeKind, spellings ...string) func([]byte) (ast.SQLType, []byte, error) {
	return func(in []byte) (ast.SQLType, []byte, error) {
		for _, kw := range spellings {
			if rest, err := keyword(kw, in); err == nil {
				return ast.TypeOf(kind), rest, nil
			}
		}
		return ast.SQLType{}, nil, syntaxErr(spellings[0], in)
	}
}

func sizedType(kind ast.TypeKind, kw string) func([]byte) (ast.SQLType, []byte, error) {
	return func(in []byte) (ast.SQLType, []byte, error) {
		rest, err := keyword(kw, in)
		if err != nil {
			return ast.SQLType{}, nil, err
		}
		width, rest, err := delimitedWidth(rest)
		if err != nil {
			return ast.SQLType{}, nil, err
		}
		return ast.SQLType{Kind: kind, Width: width}, ws0(rest), nil
	}
}

// intType parses INT or INTEGER with an optional width and sign keyword. The
// width defaults to ast.DefaultIntWidth whether or not a sign is given.
func intType(in []byte) (ast.SQLType, []byte, error) {
	rest, err := keyword("INTEGER", in)
	if err != nil {
		if rest, err = keyword("INT", in); err != nil {
			return ast.SQLType{}, nil, syntaxErr("INT", in)
		}
	}
	width := ast.DefaultIntWidth
	if w, after, err := delimitedWidth(rest); err == nil {
		width, rest = w, after
	} else if !isBacktrack(err) {
		return ast.SQLType{}, nil, err
	}
	rest = ws0(rest)
	unsigned, rest := optSigned(rest)
	if unsigned {
		return ast.UnsignedIntType(width), rest, nil
	}
	return ast.IntType(width), rest, nil
}

// timestampType accepts and discards an optional precision.
func timestampType(in []byte) (ast.SQLType, []byte, error) {
	rest, err := keyword("TIMESTAMP", in)
	if err != nil {
		return ast.SQLType{}, nil, err
	}
	if _, after, err := delimitedWidth(rest); err == nil {
		rest = after
	} else if !isBacktrack(err) {
		return ast.SQLType{}, nil, err
	}
	return ast.TypeOf(ast.TypeTimestamp), ws0(rest), nil
}

// signIgnoringType parses REAL and FLOAT, which tolerate a trailing sign keyword.
func signIgnoringType(kind ast.TypeKind, kw string) func([]byte) (ast.SQLType, []byte, error) {
	return func(in []byte) (ast.SQLType, []byte, error) {
		rest, err := keyword(kw, in)
		if err != nil {
			return ast.SQLType{}, nil, err
		}
		_, rest = optSigned(ws0(rest))
		return ast.TypeOf(kind), rest, nil
	}
}

// enumType parses ENUM('a', 'b', ...).
func enumType(in []byte) (ast.SQLType, []byte, error) {
	rest, err := keyword("ENUM", in)
	if err != nil {
		return ast.SQLType{}, nil, err
	}
	if rest, err = tag("(", ws0(rest)); err != nil {
		return ast.SQLType{}, nil, err
	}
	values, rest, err := literalList(ws0(rest), commaSeparator)
	if err != nil {
		return ast.SQLType{}, nil, err
	}
	if rest, err = tag(")", ws0(rest)); err != nil {
		return ast.SQLType{}, nil, err
	}
	return ast.EnumType(values...), ws0(rest), nil
}

// optSigned consumes SIGNED or UNSIGNED and reports whether it was UNSIGNED.
func optSigned(in []byte) (bool, []byte) {
	if rest, err := keyword("UNSIGNED", in); err == nil {
		return true, ws0(rest)
	}
	if rest, err := keyword("SIGNED", in); err == nil {
		return false, ws0(rest)
	}
	return false, in
}

// delimitedWidth parses a parenthesized length such as (255).
func delimitedWidth(in []byte) (uint16, []byte, error) {
	rest, err := tag("(", ws0(in))
	if err != nil {
		return 0, nil, syntaxErr("length", in)
	}
	rest = ws0(rest)
	start := rest
	i := 0
	for i < len(rest) && rest[i] != ')' && !isSpace(rest[i]) {
		i++
	}
	digits := rest[:i]
	rest, err = tag(")", ws0(rest[i:]))
	if err != nil {
		return 0, nil, err
	}
	width, err := lenAsUint16(digits, start)
	if err != nil {
		return 0, nil, err
	}
	return width, rest, nil
}

// lenAsUint16 converts a length literal to a bounded width.
func lenAsUint16(digits, at []byte) (uint16, error) {
	if len(digits) == 0 {
		return 0, rangeErr("length", digits, "missing digits", at)
	}
	for _, c := range digits {
		if !isDigit(c) {
			return 0, rangeErr("length", digits, "not a number", at)
		}
	}
	n, err := strconv.ParseUint(string(digits), 10, 16)
	if err != nil || n > maxWidth {
		return 0, rangeErr("length", digits, "exceeds 65535", at)
	}
	return uint16(n), nil
}
