package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/config"
	"github.com/electwix/sqlast/internal/render"
)

// Document is the serialized form of one input.
type Document struct {
	Path       string           `json:"path" yaml:"path"`
	Statements []StatementEntry `json:"statements" yaml:"statements"`
}

// StatementEntry is one parsed statement and where it starts.
type StatementEntry struct {
	Line    int         `json:"line" yaml:"line"`
	Column  int         `json:"column" yaml:"column"`
	Command ast.Command `json:"command" yaml:"command"`
}

// NewDocument builds the serialized form of r.
func NewDocument(r FileResult) Document {
	doc := Document{Path: r.Path, Statements: make([]StatementEntry, 0, len(r.Statements))}
	for _, st := range r.Statements {
		doc.Statements = append(doc.Statements, StatementEntry{Line: st.Line, Column: st.Column, Command: st.Command})
	}
	return doc
}

// Encode writes results in format: one indented JSON document per input, a
// YAML stream with one document per input, or canonical SQL with a comment
// naming each input.
func Encode(format config.Format, results []FileResult) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case config.FormatJSON, "":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		for _, r := range results {
			if err := enc.Encode(NewDocument(r)); err != nil {
				return nil, fmt.Errorf("%s: %w", r.Path, err)
			}
		}
	case config.FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		for _, r := range results {
			if err := enc.Encode(NewDocument(r)); err != nil {
				return nil, fmt.Errorf("%s: %w", r.Path, err)
			}
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case config.FormatSQL:
		for _, r := range results {
			fmt.Fprintf(&buf, "-- %s\n", r.Path)
			for _, st := range r.Statements {
				text, err := render.Render(st.Command)
				if err != nil {
					return nil, fmt.Errorf("%s:%d:%d: %w", r.Path, st.Line, st.Column, err)
				}
				buf.WriteString(text)
				buf.WriteByte('\n')
			}
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return buf.Bytes(), nil
}
