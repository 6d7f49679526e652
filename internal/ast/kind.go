package ast

import "fmt"

// TypeKind identifies the SQL column type variant.
type TypeKind int

const (
	// TypeInvalid is the zero value and never produced by the grammar.
	TypeInvalid TypeKind = iota
	TypeInt
	TypeUnsignedInt
	TypeFloat
	TypeReal
	TypeChar
	TypeVarChar
	TypeText
	TypeBool
	TypeBlob
	TypeUUID
	TypeDate
	TypeDateTime
	TypeTimestamp
	TypeEnum
)

var typeKindNames = map[TypeKind]string{
	TypeInt:         "int",
	TypeUnsignedInt: "unsigned_int",
	TypeFloat:       "float",
	TypeReal:        "real",
	TypeChar:        "char",
	TypeVarChar:     "varchar",
	TypeText:        "text",
	TypeBool:        "bool",
	TypeBlob:        "blob",
	TypeUUID:        "uuid",
	TypeDate:        "date",
	TypeDateTime:    "datetime",
	TypeTimestamp:   "timestamp",
	TypeEnum:        "enum",
}

// String returns the stable lower-case name of the kind.
func (k TypeKind) String() string { return kindString(typeKindNames, k) }

// MarshalText implements encoding.TextMarshaler.
func (k TypeKind) MarshalText() ([]byte, error) { return marshalKind(typeKindNames, k, "type") }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TypeKind) UnmarshalText(text []byte) error {
	return unmarshalKind(typeKindNames, text, k, "type")
}

// LiteralKind identifies the literal variant.
type LiteralKind int

const (
	// LiteralInvalid is the zero value and never produced by the grammar.
	LiteralInvalid LiteralKind = iota
	LiteralNull
	LiteralInteger
	LiteralUnsignedInteger
	LiteralFixedPoint
	LiteralString
	LiteralBlob
	LiteralCurrentTime
	LiteralCurrentDate
	LiteralCurrentTimestamp
)

var literalKindNames = map[LiteralKind]string{
	LiteralNull:             "null",
	LiteralInteger:          "integer",
	LiteralUnsignedInteger:  "unsigned_integer",
	LiteralFixedPoint:       "fixed_point",
	LiteralString:           "string",
	LiteralBlob:             "blob",
	LiteralCurrentTime:      "current_time",
	LiteralCurrentDate:      "current_date",
	LiteralCurrentTimestamp: "current_timestamp",
}

// String returns the stable lower-case name of the kind.
func (k LiteralKind) String() string { return kindString(literalKindNames, k) }

// MarshalText implements encoding.TextMarshaler.
func (k LiteralKind) MarshalText() ([]byte, error) {
	return marshalKind(literalKindNames, k, "literal")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LiteralKind) UnmarshalText(text []byte) error {
	return unmarshalKind(literalKindNames, text, k, "literal")
}

// ConstraintKind identifies an inline column constraint.
type ConstraintKind int

const (
	// ConstraintInvalid is the zero value and never produced by the grammar.
	ConstraintInvalid ConstraintKind = iota
	ConstraintNotNull
	// ConstraintCheck is reserved; no grammar rule produces it yet.
	ConstraintCheck
	ConstraintDefault
	ConstraintAutoIncrement
	ConstraintPrimaryKey
	ConstraintUnique
)

var constraintKindNames = map[ConstraintKind]string{
	ConstraintNotNull:       "not_null",
	ConstraintCheck:         "check",
	ConstraintDefault:       "default",
	ConstraintAutoIncrement: "auto_increment",
	ConstraintPrimaryKey:    "primary_key",
	ConstraintUnique:        "unique",
}

// String returns the stable lower-case name of the kind.
func (k ConstraintKind) String() string { return kindString(constraintKindNames, k) }

// MarshalText implements encoding.TextMarshaler.
func (k ConstraintKind) MarshalText() ([]byte, error) {
	return marshalKind(constraintKindNames, k, "constraint")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ConstraintKind) UnmarshalText(text []byte) error {
	return unmarshalKind(constraintKindNames, text, k, "constraint")
}

// CommandKind identifies the statement kind carried by a Command.
type CommandKind int

const (
	// CommandInvalid is the zero value.
	CommandInvalid CommandKind = iota
	CommandCreateTable
	CommandInsert
	CommandSelect
	CommandDelete
	CommandDropTable
	CommandUpdate
	CommandSet
)

var commandKindNames = map[CommandKind]string{
	CommandCreateTable: "create_table",
	CommandInsert:      "insert",
	CommandSelect:      "select",
	CommandDelete:      "delete",
	CommandDropTable:   "drop_table",
	CommandUpdate:      "update",
	CommandSet:         "set",
}

// String returns the stable lower-case name of the kind.
func (k CommandKind) String() string { return kindString(commandKindNames, k) }

// MarshalText implements encoding.TextMarshaler.
func (k CommandKind) MarshalText() ([]byte, error) {
	return marshalKind(commandKindNames, k, "command")
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CommandKind) UnmarshalText(text []byte) error {
	return unmarshalKind(commandKindNames, text, k, "command")
}

func kindString[K ~int](names map[K]string, k K) string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", int(k))
}

func marshalKind[K ~int](names map[K]string, k K, what string) ([]byte, error) {
	name, ok := names[k]
	if !ok {
		return nil, fmt.Errorf("ast: cannot marshal invalid %s kind %d", what, int(k))
	}
	return []byte(name), nil
}

func unmarshalKind[K ~int](names map[K]string, text []byte, dst *K, what string) error {
	for k, name := range names {
		if name == string(text) {
			*dst = k
			return nil
		}
	}
	return fmt.Errorf("ast: unknown %s kind %q", what, text)
}
