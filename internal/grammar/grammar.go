// Package grammar turns raw CREATE TABLE and INSERT statements into ast values.
//
// Every rule is a function from an input slice to a result plus the
// unconsumed remainder, or an error. Ordered choices backtrack only over
// *SyntaxError; a *RangeError ends the parse. A Grammar holds nothing but its
// reserved-word set and limits, so one value may be shared by any number of
// goroutines.
package grammar

import (
	"fmt"

	"github.com/electwix/sqlast/internal/ast"
)

// Option configures a Grammar using the functional options pattern.
type Option func(*Grammar)

// Grammar parses SQL statements into ast values.
type Grammar struct {
	keywords      KeywordSet
	maxInputBytes int
}

// WithKeywords reserves extra words on top of DefaultKeywords().
func WithKeywords(words ...string) Option {
	return func(g *Grammar) {
		merged := append(g.keywords.Words(), words...)
		g.keywords = NewKeywordSet(merged...)
	}
}

// WithMaxInputBytes rejects inputs longer than n bytes. Zero or less disables the limit.
func WithMaxInputBytes(n int) Option {
	return func(g *Grammar) {
		g.maxInputBytes = n
	}
}

// New creates a Grammar with the provided options.
func New(opts ...Option) *Grammar {
	g := &Grammar{keywords: NewKeywordSet(defaultKeywords...)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Keywords returns the reserved words in effect.
func (g *Grammar) Keywords() []string {
	return g.keywords.Words()
}

var defaultGrammar = New()

// Parse parses a single statement with the default grammar.
func Parse(in []byte) (ast.Command, []byte, error) {
	return defaultGrammar.ParseCommand(in)
}

// ParseCreateTable parses a CREATE TABLE statement and returns the remaining input.
func (g *Grammar) ParseCreateTable(in []byte) (ast.CreateTable, []byte, error) {
	if err := g.checkSize(in); err != nil {
		return ast.CreateTable{}, nil, err
	}
	stmt, rest, err := g.tableCreation(in)
	if err != nil {
		return ast.CreateTable{}, nil, locate(err, in)
	}
	return stmt, rest, nil
}

// ParseInsert parses an INSERT statement and returns the remaining input.
func (g *Grammar) ParseInsert(in []byte) (ast.InsertTable, []byte, error) {
	if err := g.checkSize(in); err != nil {
		return ast.InsertTable{}, nil, err
	}
	stmt, rest, err := g.tableInsertion(in)
	if err != nil {
		return ast.InsertTable{}, nil, locate(err, in)
	}
	return stmt, rest, nil
}

// Statement is one command parsed out of a multi-statement buffer.
type Statement struct {
	Command ast.Command
	// Position is where the statement starts in the buffer.
	Position
	// Text is the statement source, terminator included.
	Text string
}

// ParseAll parses consecutive statements until the buffer is exhausted. On
// failure it returns the statements parsed so far together with the error,
// whose position is relative to the whole buffer.
func (g *Grammar) ParseAll(in []byte) ([]Statement, error) {
	if err := g.checkSize(in); err != nil {
		return nil, err
	}
	var (
		out   []Statement
		lines lineTracker
	)
	rest := ws0(in)
	for len(rest) > 0 {
		offset := len(in) - len(rest)
		cmd, next, err := g.parseCommand(rest)
		if err != nil {
			return out, g.relocate(err, in, offset)
		}
		out = append(out, Statement{
			Command:  cmd,
			Position: lines.advance(in, offset),
			Text:     string(rest[:len(rest)-len(next)]),
		})
		if len(next) == len(rest) {
			return out, fmt.Errorf("grammar: no progress at offset %d", offset)
		}
		rest = next
	}
	return out, nil
}

func (g *Grammar) checkSize(in []byte) error {
	if g.maxInputBytes > 0 && len(in) > g.maxInputBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(in), g.maxInputBytes)
	}
	return nil
}

// relocate recomputes the position of err against the whole buffer.
func (g *Grammar) relocate(err error, src []byte, offset int) error {
	if ue, ok := err.(*UnsupportedStatementError); ok {
		ue.Position = positionOf(src, offset+ue.Offset)
		return ue
	}
	return locate(err, src)
}
