package grammar

import "github.com/electwix/sqlast/internal/ast"

// tableInsertion parses INSERT INTO ref [( columns )] VALUES tuple, ... terminator.
// Row arity against the column list is left to the check package.
func (g *Grammar) tableInsertion(in []byte) (ast.InsertTable, []byte, error) {
	rest, err := keywords(ws0(in), "INSERT", "INTO")
	if err != nil {
		return ast.InsertTable{}, nil, err
	}
	if rest, err = ws1(rest); err != nil {
		return ast.InsertTable{}, nil, err
	}
	table, rest, err := g.schemaTableReference(rest)
	if err != nil {
		return ast.InsertTable{}, nil, err
	}
	stmt := ast.InsertTable{Table: table}
	rest = ws0(rest)
	if afterParen, err := tag("(", rest); err == nil {
		fields, next, err := g.insertColumns(afterParen)
		if err != nil {
			return ast.InsertTable{}, nil, err
		}
		stmt.Fields, rest = fields, ws0(next)
	}
	if rest, err = keyword("VALUES", rest); err != nil {
		return ast.InsertTable{}, nil, err
	}
	first, rest, err := valueTuple(ws0(rest))
	if err != nil {
		return ast.InsertTable{}, nil, err
	}
	stmt.Values = [][]ast.Literal{first}
	for {
		afterSep, err := commaSeparator(rest)
		if err != nil {
			break
		}
		row, next, err := valueTuple(afterSep)
		if err != nil {
			if !isBacktrack(err) {
				return ast.InsertTable{}, nil, err
			}
			break
		}
		stmt.Values = append(stmt.Values, row)
		rest = next
	}
	if rest, err = statementTerminator(rest); err != nil {
		return ast.InsertTable{}, nil, err
	}
	return stmt, rest, nil
}

// insertColumns parses identifiers up to the closing parenthesis. Names may be
// separated by commas or whitespace.
func (g *Grammar) insertColumns(in []byte) ([]ast.Column, []byte, error) {
	name, rest, err := g.sqlIdentifier(ws0(in))
	if err != nil {
		return nil, nil, err
	}
	cols := []ast.Column{{Name: string(name)}}
	for {
		next, err := commaSeparator(rest)
		if err != nil {
			next = ws0(rest)
		}
		name, after, err := g.sqlIdentifier(next)
		if err != nil {
			break
		}
		cols = append(cols, ast.Column{Name: string(name)})
		rest = after
	}
	if rest, err = tag(")", ws0(rest)); err != nil {
		return nil, nil, err
	}
	return cols, rest, nil
}

// valueTuple parses ( literal [,] literal ... ).
func valueTuple(in []byte) ([]ast.Literal, []byte, error) {
	rest, err := tag("(", in)
	if err != nil {
		return nil, nil, err
	}
	values, rest, err := literalList(ws0(rest), optComma)
	if err != nil {
		return nil, nil, err
	}
	if rest, err = tag(")", ws0(rest)); err != nil {
		return nil, nil, err
	}
	return values, rest, nil
}
