package ast

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func sampleCommands() []Command {
	return []Command{
		NewCreateTableCommand(CreateTable{
			Table: Table{Name: "clients", Schema: Ptr("test"), Alias: Ptr("c")},
			Fields: []ColumnSpecification{
				{Column: Column{Name: "id"}, Type: UnsignedIntType(32), Constraints: []ColumnConstraint{
					Constraint(ConstraintNotNull), Constraint(ConstraintAutoIncrement), Constraint(ConstraintPrimaryKey),
				}},
				{Column: Column{Name: "name"}, Type: VarCharType(255), Constraints: []ColumnConstraint{DefaultValue(Str(""))}},
				{Column: Column{Name: "state"}, Type: EnumType(Str("on"), Str("off"))},
				{Column: Column{Name: "balance"}, Type: TypeOf(TypeReal), Constraints: []ColumnConstraint{DefaultValue(Fixed(true, 0, 5, 1))}},
				{Column: Column{Name: "created"}, Type: TypeOf(TypeTimestamp), Constraints: []ColumnConstraint{DefaultValue(Keyword(LiteralCurrentTimestamp))}},
			},
		}),
		NewInsertCommand(InsertTable{
			Table:  Table{Name: "orders"},
			Fields: []Column{{Name: "id"}, {Name: "total"}},
			Values: [][]Literal{
				{Int64(1), Fixed(false, 9, 99, 2)},
				{Int64(math.MinInt64), Uint64(math.MaxUint64)},
				{Null(), Blob([]byte{0xff, 0x00, 0xfe})},
				{Str("null"), Keyword(LiteralCurrentDate)},
			},
		}),
		UnimplementedCommand(CommandSelect),
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, want := range sampleCommands() {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %v: %v", want.Kind, err)
		}
		var got Command
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("json round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	for _, want := range sampleCommands() {
		data, err := yaml.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %v: %v", want.Kind, err)
		}
		var got Command
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal:\n%s\nerror: %v", data, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("yaml round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestKindsMarshalAsNames(t *testing.T) {
	data, err := json.Marshal(NewInsertCommand(InsertTable{Table: Table{Name: "t"}, Values: [][]Literal{{Uint64(1)}}}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"kind":"insert"`, `"kind":"unsigned_integer"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("%s does not contain %s", data, want)
		}
	}

	var k TypeKind
	if err := k.UnmarshalText([]byte("varchar")); err != nil || k != TypeVarChar {
		t.Fatalf("UnmarshalText(varchar) = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("decimal")); err == nil {
		t.Fatalf("expected error for unknown type kind")
	}
	if _, err := json.Marshal(Command{}); err == nil {
		t.Fatalf("expected error marshaling the invalid command kind")
	}
	if got := LiteralKind(99).String(); got != "invalid(99)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestFixedPointDecimal(t *testing.T) {
	tests := []struct {
		lit  Literal
		want string
		text string
	}{
		{Fixed(true, 0, 5, 1), "-0.5", "-0.5"},
		{Fixed(false, 1, 5, 2), "1.05", "1.05"},
		{Fixed(false, 10, 0, 2), "10", "10.00"},
		{Fixed(true, 12, 34, 3), "-12.034", "-12.034"},
		{Fixed(false, math.MaxUint64, 1, 1), "18446744073709551615.1", "18446744073709551615.1"},
	}
	for _, tt := range tests {
		got, ok := tt.lit.Decimal()
		if !ok {
			t.Fatalf("Decimal() not ok for %v", tt.lit)
		}
		if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
			t.Errorf("Decimal() = %s, want %s", got, want)
		}
		if s := tt.lit.String(); s != tt.text {
			t.Errorf("String() = %q, want %q", s, tt.text)
		}
	}
	if _, ok := Str("1").Decimal(); ok {
		t.Fatalf("string literal reported numeric")
	}
	if d, ok := Uint64(math.MaxUint64).Decimal(); !ok || d.String() != "18446744073709551615" {
		t.Fatalf("Uint64 decimal = %s, %v", d, ok)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{IntType(32).String(), "INT(32)"},
		{UnsignedIntType(8).String(), "INT(8) UNSIGNED"},
		{VarCharType(255).String(), "VARCHAR(255)"},
		{CharType(1).String(), "CHAR(1)"},
		{TypeOf(TypeBool).String(), "BOOL"},
		{TypeOf(TypeDateTime).String(), "DATETIME"},
		{EnumType(Str("a"), Str("b")).String(), "ENUM('a', 'b')"},
		{Blob([]byte{0xde, 0xad}).String(), "X'DEAD'"},
		{Null().String(), "NULL"},
		{DefaultValue(Int64(-3)).String(), "DEFAULT -3"},
		{Constraint(ConstraintPrimaryKey).String(), "PRIMARY KEY"},
		{Table{Name: "t", Schema: Ptr("s")}.QualifiedName(), "s.t"},
		{Table{Name: "t"}.QualifiedName(), "t"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestColumnSpecificationHelpers(t *testing.T) {
	col := ColumnSpecification{
		Column: Column{Name: "a"},
		Type:   IntType(32),
		Constraints: []ColumnConstraint{
			DefaultValue(Int64(1)),
			Constraint(ConstraintNotNull),
			DefaultValue(Int64(2)),
		},
	}
	if diff := cmp.Diff([]Literal{Int64(1), Int64(2)}, col.Defaults()); diff != "" {
		t.Fatalf("Defaults() mismatch (-want +got):\n%s", diff)
	}
	if !col.Has(ConstraintNotNull) || col.Has(ConstraintUnique) {
		t.Fatalf("Has() reported wrong constraints")
	}
}

func TestCommandImplemented(t *testing.T) {
	for _, c := range sampleCommands() {
		want := c.Kind == CommandCreateTable || c.Kind == CommandInsert
		if c.Implemented() != want {
			t.Errorf("%v.Implemented() = %v", c.Kind, c.Implemented())
		}
	}
	if (Command{Kind: CommandInsert}).Implemented() {
		t.Fatalf("insert without payload reported implemented")
	}
}

func TestBlobCopiesInput(t *testing.T) {
	src := []byte{1, 2, 3}
	lit := Blob(src)
	src[0] = 9
	if lit.Bytes[0] != 1 {
		t.Fatalf("Blob aliases its input")
	}
}
