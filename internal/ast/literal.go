package ast

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Literal is a constant value. Which payload field is meaningful depends on Kind.
type Literal struct {
	Kind     LiteralKind `json:"kind" yaml:"kind"`
	Integer  int64       `json:"integer,omitempty" yaml:"integer,omitempty"`
	Unsigned uint64      `json:"unsigned,omitempty" yaml:"unsigned,omitempty"`
	Fixed    *FixedPoint `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Bytes    []byte      `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// FixedPoint is a decimal literal written as integral.fractional. Negative
// applies to the whole magnitude, so -0.5 is {Negative: true, Integral: 0,
// Fractional: 5, Scale: 1}. Scale is the number of fractional digits as
// written, which keeps 9.5 and 9.05 apart.
type FixedPoint struct {
	Negative   bool   `json:"negative,omitempty" yaml:"negative,omitempty"`
	Integral   uint64 `json:"integral" yaml:"integral"`
	Fractional uint64 `json:"fractional" yaml:"fractional"`
	Scale      uint8  `json:"scale" yaml:"scale"`
}

// Decimal returns the exact signed value.
func (f FixedPoint) Decimal() decimal.Decimal {
	integral := decimal.NewFromBigInt(new(big.Int).SetUint64(f.Integral), 0)
	fractional := decimal.NewFromBigInt(new(big.Int).SetUint64(f.Fractional), -int32(f.Scale))
	d := integral.Add(fractional)
	if f.Negative {
		d = d.Neg()
	}
	return d
}

// String renders the literal digits as written, including leading fractional zeros.
func (f FixedPoint) String() string {
	var b strings.Builder
	if f.Negative {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(f.Integral, 10))
	b.WriteByte('.')
	fmt.Fprintf(&b, "%0*d", int(f.Scale), f.Fractional)
	return b.String()
}

// Null returns the NULL literal.
func Null() Literal { return Literal{Kind: LiteralNull} }

// Int64 returns a signed integer literal.
func Int64(v int64) Literal { return Literal{Kind: LiteralInteger, Integer: v} }

// Uint64 returns an unsigned integer literal.
func Uint64(v uint64) Literal { return Literal{Kind: LiteralUnsignedInteger, Unsigned: v} }

// Fixed returns a fixed-point literal.
func Fixed(negative bool, integral, fractional uint64, scale uint8) Literal {
	return Literal{Kind: LiteralFixedPoint, Fixed: &FixedPoint{
		Negative:   negative,
		Integral:   integral,
		Fractional: fractional,
		Scale:      scale,
	}}
}

// Str returns a string literal.
func Str(s string) Literal { return Literal{Kind: LiteralString, Text: s} }

// Blob returns a blob literal holding a copy of b.
func Blob(b []byte) Literal {
	return Literal{Kind: LiteralBlob, Bytes: append([]byte(nil), b...)}
}

// Keyword returns one of the payload-free literals (NULL, CURRENT_*).
func Keyword(kind LiteralKind) Literal { return Literal{Kind: kind} }

// IsNumeric reports whether the literal is an integer or fixed-point value.
func (l Literal) IsNumeric() bool {
	switch l.Kind {
	case LiteralInteger, LiteralUnsignedInteger, LiteralFixedPoint:
		return true
	}
	return false
}

// Decimal returns the numeric value of the literal; ok is false for non-numeric kinds.
func (l Literal) Decimal() (decimal.Decimal, bool) {
	switch l.Kind {
	case LiteralInteger:
		return decimal.NewFromInt(l.Integer), true
	case LiteralUnsignedInteger:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(l.Unsigned), 0), true
	case LiteralFixedPoint:
		if l.Fixed == nil {
			return decimal.Zero, false
		}
		return l.Fixed.Decimal(), true
	}
	return decimal.Zero, false
}

// String renders the literal as SQL.
func (l Literal) String() string {
	switch l.Kind {
	case LiteralNull:
		return "NULL"
	case LiteralInteger:
		return strconv.FormatInt(l.Integer, 10)
	case LiteralUnsignedInteger:
		return strconv.FormatUint(l.Unsigned, 10)
	case LiteralFixedPoint:
		if l.Fixed == nil {
			return "0.0"
		}
		return l.Fixed.String()
	case LiteralString:
		return "'" + l.Text + "'"
	case LiteralBlob:
		return fmt.Sprintf("X'%X'", l.Bytes)
	case LiteralCurrentTime:
		return "CURRENT_TIME"
	case LiteralCurrentDate:
		return "CURRENT_DATE"
	case LiteralCurrentTimestamp:
		return "CURRENT_TIMESTAMP"
	default:
		return l.Kind.String()
	}
}
