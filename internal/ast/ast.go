// Package ast defines the statement trees produced by the grammar.
//
// Every value is plain data: strings and byte slices are copied out of the
// parsed input, so an AST outlives the buffer it came from. All types
// round-trip through encoding/json and gopkg.in/yaml.v3 without loss.
package ast

import (
	"fmt"
	"strings"
)

// DefaultIntWidth is the display width given to INT columns declared without one.
const DefaultIntWidth uint16 = 32

// Table names a table, optionally qualified by a schema and carrying an alias.
type Table struct {
	Name   string  `json:"name" yaml:"name"`
	Schema *string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Alias  *string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// QualifiedName returns schema.name, or name when no schema is present.
func (t Table) QualifiedName() string {
	if t.Schema != nil {
		return *t.Schema + "." + t.Name
	}
	return t.Name
}

// Column names a single column.
type Column struct {
	Name string `json:"name" yaml:"name"`
}

// ColumnSpecification is one column definition inside CREATE TABLE.
type ColumnSpecification struct {
	Column      Column             `json:"column" yaml:"column"`
	Type        SQLType            `json:"type" yaml:"type"`
	Constraints []ColumnConstraint `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Defaults returns every DEFAULT literal declared on the column in source order.
func (c ColumnSpecification) Defaults() []Literal {
	var out []Literal
	for _, con := range c.Constraints {
		if con.Kind == ConstraintDefault && con.Default != nil {
			out = append(out, *con.Default)
		}
	}
	return out
}

// Has reports whether the column carries a constraint of the given kind.
func (c ColumnSpecification) Has(kind ConstraintKind) bool {
	for _, con := range c.Constraints {
		if con.Kind == kind {
			return true
		}
	}
	return false
}

// ColumnConstraint is an inline column constraint. Default is set only for
// ConstraintDefault.
type ColumnConstraint struct {
	Kind    ConstraintKind `json:"kind" yaml:"kind"`
	Default *Literal       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Constraint returns a payload-free constraint of the given kind.
func Constraint(kind ConstraintKind) ColumnConstraint {
	return ColumnConstraint{Kind: kind}
}

// DefaultValue returns a DEFAULT constraint holding lit.
func DefaultValue(lit Literal) ColumnConstraint {
	return ColumnConstraint{Kind: ConstraintDefault, Default: &lit}
}

// String renders the constraint as SQL.
func (c ColumnConstraint) String() string {
	switch c.Kind {
	case ConstraintNotNull:
		return "NOT NULL"
	case ConstraintCheck:
		return "CHECK"
	case ConstraintDefault:
		if c.Default == nil {
			return "DEFAULT NULL"
		}
		return "DEFAULT " + c.Default.String()
	case ConstraintAutoIncrement:
		return "AUTO_INCREMENT"
	case ConstraintPrimaryKey:
		return "PRIMARY KEY"
	case ConstraintUnique:
		return "UNIQUE"
	default:
		return c.Kind.String()
	}
}

// SQLType is a column type. Width is meaningful for Int, UnsignedInt, Char and
// VarChar; Values only for Enum.
type SQLType struct {
	Kind   TypeKind  `json:"kind" yaml:"kind"`
	Width  uint16    `json:"width,omitempty" yaml:"width,omitempty"`
	Values []Literal `json:"values,omitempty" yaml:"values,omitempty"`
}

// TypeOf returns a type of a kind without modifiers.
func TypeOf(kind TypeKind) SQLType { return SQLType{Kind: kind} }

// IntType returns INT(width).
func IntType(width uint16) SQLType { return SQLType{Kind: TypeInt, Width: width} }

// UnsignedIntType returns INT(width) UNSIGNED.
func UnsignedIntType(width uint16) SQLType { return SQLType{Kind: TypeUnsignedInt, Width: width} }

// CharType returns CHAR(n).
func CharType(n uint16) SQLType { return SQLType{Kind: TypeChar, Width: n} }

// VarCharType returns VARCHAR(n).
func VarCharType(n uint16) SQLType { return SQLType{Kind: TypeVarChar, Width: n} }

// EnumType returns ENUM(values...).
func EnumType(values ...Literal) SQLType { return SQLType{Kind: TypeEnum, Values: values} }

// String renders the type as SQL.
func (t SQLType) String() string {
	switch t.Kind {
	case TypeInt:
		return fmt.Sprintf("INT(%d)", t.Width)
	case TypeUnsignedInt:
		return fmt.Sprintf("INT(%d) UNSIGNED", t.Width)
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", t.Width)
	case TypeVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.Width)
	case TypeEnum:
		parts := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			parts = append(parts, v.String())
		}
		return "ENUM(" + strings.Join(parts, ", ") + ")"
	case TypeUUID:
		return "UUID"
	case TypeDateTime:
		return "DATETIME"
	default:
		return strings.ToUpper(t.Kind.String())
	}
}

// CreateTable is a parsed CREATE TABLE statement.
type CreateTable struct {
	Table  Table                 `json:"table" yaml:"table"`
	Fields []ColumnSpecification `json:"fields" yaml:"fields"`
}

// InsertTable is a parsed INSERT statement. Values holds one literal tuple per row.
type InsertTable struct {
	Table  Table       `json:"table" yaml:"table"`
	Fields []Column    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Values [][]Literal `json:"values" yaml:"values"`
}

// Command is the closed set of statement kinds. Only CreateTable and Insert
// can be produced from text; the remaining kinds are valid values built with
// UnimplementedCommand.
type Command struct {
	Kind        CommandKind  `json:"kind" yaml:"kind"`
	CreateTable *CreateTable `json:"create_table,omitempty" yaml:"create_table,omitempty"`
	Insert      *InsertTable `json:"insert,omitempty" yaml:"insert,omitempty"`
}

// NewCreateTableCommand wraps a CREATE TABLE statement.
func NewCreateTableCommand(stmt CreateTable) Command {
	return Command{Kind: CommandCreateTable, CreateTable: &stmt}
}

// NewInsertCommand wraps an INSERT statement.
func NewInsertCommand(stmt InsertTable) Command {
	return Command{Kind: CommandInsert, Insert: &stmt}
}

// UnimplementedCommand returns a payload-free command of a kind that has no grammar.
func UnimplementedCommand(kind CommandKind) Command {
	return Command{Kind: kind}
}

// Implemented reports whether the command carries a parsed statement.
func (c Command) Implemented() bool {
	switch c.Kind {
	case CommandCreateTable:
		return c.CreateTable != nil
	case CommandInsert:
		return c.Insert != nil
	default:
		return false
	}
}

// Ptr returns a pointer to a copy of s. Handy for Table.Schema and Table.Alias.
func Ptr(s string) *string { return &s }
