// Package diagnostics describes problems found while parsing and checking SQL
// statements: where they are, how serious they are, and what to do about them.
package diagnostics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity indicates the seriousness of a diagnostic.
type Severity int

const (
	// SeverityInfo indicates an informational message.
	SeverityInfo Severity = iota
	// SeverityWarning flags a statement that parsed but looks wrong.
	SeverityWarning
	// SeverityError marks a statement that could not be accepted.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Location represents a position in a source file.
type Location struct {
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Suggestion represents a suggested fix for a diagnostic.
type Suggestion struct {
	Message     string `json:"message"`
	Replacement string `json:"replacement,omitempty"`
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Code     string   `json:"code,omitempty"`

	Location Location `json:"location"`

	// Context is a rendered snippet of the offending source.
	Context string `json:"context,omitempty"`

	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Notes       []string     `json:"notes,omitempty"`

	// Source names the stage that reported it: "grammar", "check" or "config".
	Source string `json:"source,omitempty"`
}

// HasLocation returns true if the diagnostic has a valid location.
func (d Diagnostic) HasLocation() bool {
	return d.Location.Path != "" && d.Location.Line > 0
}

// IsError returns true if the diagnostic is an error.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// IsWarning returns true if the diagnostic is a warning.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s: %s",
			d.Location.Path, d.Location.Line, d.Location.Column,
			d.Code, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		d.Location.Path, d.Location.Line, d.Location.Column,
		d.Severity, d.Message)
}

// String returns a human-readable string representation of the diagnostic.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.HasLocation() {
		fmt.Fprintf(&b, "%s:%d:%d: ", d.Location.Path, d.Location.Line, d.Location.Column)
	}
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Message)
	if d.Code != "" {
		fmt.Fprintf(&b, " [%s]", d.Code)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", note)
	}
	return b.String()
}

// Builder provides a fluent API for constructing diagnostics.
type Builder struct {
	diag Diagnostic
}

// NewBuilder creates a new diagnostic builder with the given severity and message.
func NewBuilder(severity Severity, message string) *Builder {
	return &Builder{diag: Diagnostic{Severity: severity, Message: message}}
}

// Error creates a builder for an error-level diagnostic.
func Error(message string) *Builder {
	return NewBuilder(SeverityError, message)
}

// Warning creates a builder for a warning-level diagnostic.
func Warning(message string) *Builder {
	return NewBuilder(SeverityWarning, message)
}

// Errorf creates an error builder with a formatted message.
func Errorf(format string, args ...any) *Builder {
	return Error(fmt.Sprintf(format, args...))
}

// Warningf creates a warning builder with a formatted message.
func Warningf(format string, args ...any) *Builder {
	return Warning(fmt.Sprintf(format, args...))
}

// WithCode sets the error code.
func (b *Builder) WithCode(code string) *Builder {
	b.diag.Code = code
	return b
}

// At sets the location.
func (b *Builder) At(path string, line, column int) *Builder {
	b.diag.Location = Location{Path: path, Line: line, Column: column}
	return b
}

// AtLocation sets the location from a Location struct.
func (b *Builder) AtLocation(loc Location) *Builder {
	b.diag.Location = loc
	return b
}

// WithContext sets the code context.
func (b *Builder) WithContext(context string) *Builder {
	b.diag.Context = context
	return b
}

// WithSource sets the source component.
func (b *Builder) WithSource(source string) *Builder {
	b.diag.Source = source
	return b
}

// WithSuggestion adds a suggestion.
func (b *Builder) WithSuggestion(message, replacement string) *Builder {
	b.diag.Suggestions = append(b.diag.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

// WithNote adds a note.
func (b *Builder) WithNote(note string) *Builder {
	b.diag.Notes = append(b.diag.Notes, note)
	return b
}

// Build returns the constructed diagnostic.
func (b *Builder) Build() Diagnostic {
	return b.diag
}

// Collection holds a set of diagnostics. It is not safe for concurrent use.
type Collection struct {
	diagnostics []Diagnostic
}

// NewCollection creates a new empty diagnostic collection.
func NewCollection() *Collection {
	return &Collection{diagnostics: make([]Diagnostic, 0)}
}

// Add adds diagnostics to the collection.
func (c *Collection) Add(d ...Diagnostic) {
	c.diagnostics = append(c.diagnostics, d...)
}

// HasErrors returns true if the collection contains any errors.
func (c *Collection) HasErrors() bool {
	return slices.ContainsFunc(c.diagnostics, Diagnostic.IsError)
}

// Errors returns all error-level diagnostics.
func (c *Collection) Errors() []Diagnostic {
	return c.Filter(Diagnostic.IsError)
}

// Warnings returns all warning-level diagnostics.
func (c *Collection) Warnings() []Diagnostic {
	return c.Filter(Diagnostic.IsWarning)
}

// All returns all diagnostics.
func (c *Collection) All() []Diagnostic {
	return append([]Diagnostic(nil), c.diagnostics...)
}

// Len returns the number of diagnostics.
func (c *Collection) Len() int {
	return len(c.diagnostics)
}

// Filter returns diagnostics matching the given predicate.
func (c *Collection) Filter(predicate func(Diagnostic) bool) []Diagnostic {
	var result []Diagnostic
	for _, d := range c.diagnostics {
		if predicate(d) {
			result = append(result, d)
		}
	}
	return result
}

// SortByLocation orders diagnostics by path, line and column. Ties keep their insertion order.
func (c *Collection) SortByLocation() {
	slices.SortStableFunc(c.diagnostics, func(a, b Diagnostic) int {
		return compareLocation(a.Location, b.Location)
	})
}

func compareLocation(a, b Location) int {
	if n := cmp.Compare(a.Path, b.Path); n != 0 {
		return n
	}
	if n := cmp.Compare(a.Line, b.Line); n != 0 {
		return n
	}
	return cmp.Compare(a.Column, b.Column)
}

// Summary provides a quick overview of diagnostics.
type Summary struct {
	Total    int
	Errors   int
	Warnings int
	Infos    int
}

// Summary returns a summary of the diagnostics collection.
func (c *Collection) Summary() Summary {
	s := Summary{Total: len(c.diagnostics)}
	for _, d := range c.diagnostics {
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		}
	}
	return s
}

// Diagnostic codes.
const (
	// Grammar errors (E1xx)
	ErrSyntax          = "E101"
	ErrRange           = "E102"
	ErrUnsupported     = "E103"
	ErrIncomplete      = "E104"
	ErrArity           = "E105"
	ErrDuplicateColumn = "E106"
	ErrInputTooLarge   = "E107"

	// Input errors (E3xx)
	ErrReadInput = "E301"

	// Warnings (W1xx)
	WarnRepeatedDefault = "W101"
	WarnTypeMismatch    = "W102"
	WarnUnknownConfig   = "W301"
)

var codeDescriptions = map[string]string{
	ErrSyntax:           "Statement does not match the grammar",
	ErrRange:            "Numeric value out of range",
	ErrUnsupported:      "Statement kind is not supported",
	ErrIncomplete:       "Statement ends early",
	ErrArity:            "Row width differs from the column list",
	ErrDuplicateColumn:  "Duplicate column name",
	ErrInputTooLarge:    "Input exceeds the configured size limit",
	ErrReadInput:        "Input could not be read",
	WarnRepeatedDefault: "Column declares DEFAULT more than once",
	WarnTypeMismatch:    "Value does not fit the column type",
	WarnUnknownConfig:   "Unknown configuration key",
}

// CodeDescription returns a human-readable description for an error code.
func CodeDescription(code string) string {
	if desc, ok := codeDescriptions[code]; ok {
		return desc
	}
	return "Unknown error code"
}
