package grammar

import "github.com/electwix/sqlast/internal/ast"

// tableCreation parses CREATE TABLE ref ( columns ) terminator.
func (g *Grammar) tableCreation(in []byte) (ast.CreateTable, []byte, error) {
	rest, err := keywords(ws0(in), "CREATE", "TABLE")
	if err != nil {
		return ast.CreateTable{}, nil, err
	}
	if rest, err = ws1(rest); err != nil {
		return ast.CreateTable{}, nil, err
	}
	table, rest, err := g.schemaTableReference(rest)
	if err != nil {
		return ast.CreateTable{}, nil, err
	}
	if rest, err = tag("(", ws0(rest)); err != nil {
		return ast.CreateTable{}, nil, err
	}
	fields, rest, err := g.columnSpecificationList(rest)
	if err != nil {
		return ast.CreateTable{}, nil, err
	}
	if rest, err = tag(")", ws0(rest)); err != nil {
		return ast.CreateTable{}, nil, err
	}
	if rest, err = statementTerminator(rest); err != nil {
		return ast.CreateTable{}, nil, err
	}
	return ast.CreateTable{Table: table, Fields: fields}, rest, nil
}
