package grammar

import "github.com/electwix/sqlast/internal/ast"

// constraintRules are tried in order. A nil result is the bare NULL marker,
// which is consumed but adds nothing to the column.
var constraintRules = []alternative[*ast.ColumnConstraint]{
	{"NOT NULL", constraintPhrase(ast.ConstraintNotNull, "NOT", "NULL")},
	{"NULL", nullConstraint},
	{"AUTO_INCREMENT", constraintPhrase(ast.ConstraintAutoIncrement, "AUTO_INCREMENT")},
	{"DEFAULT", defaultConstraint},
	{"PRIMARY KEY", constraintPhrase(ast.ConstraintPrimaryKey, "PRIMARY", "KEY")},
	{"UNIQUE", constraintPhrase(ast.ConstraintUnique, "UNIQUE")},
}

// columnConstraint parses one constraint with surrounding whitespace.
func columnConstraint(in []byte) (*ast.ColumnConstraint, []byte, error) {
	c, rest, err := alt("column constraint", ws0(in), constraintRules)
	if err != nil {
		return nil, nil, err
	}
	return c, ws0(rest), nil
}

func constraintPhrase(kind ast.ConstraintKind, words ...string) func([]byte) (*ast.ColumnConstraint, []byte, error) {
	return func(in []byte) (*ast.ColumnConstraint, []byte, error) {
		rest, err := keywords(in, words...)
		if err != nil {
			return nil, nil, err
		}
		c := ast.Constraint(kind)
		return &c, rest, nil
	}
}

func nullConstraint(in []byte) (*ast.ColumnConstraint, []byte, error) {
	rest, err := keyword("NULL", in)
	if err != nil {
		return nil, nil, err
	}
	return nil, rest, nil
}

func defaultConstraint(in []byte) (*ast.ColumnConstraint, []byte, error) {
	rest, err := keyword("DEFAULT", in)
	if err != nil {
		return nil, nil, err
	}
	if rest, err = ws1(rest); err != nil {
		return nil, nil, err
	}
	lit, rest, err := literal(rest)
	if err != nil {
		return nil, nil, err
	}
	c := ast.DefaultValue(lit)
	return &c, rest, nil
}

// fieldSpecification parses a column name, an optional type and any number
// of constraints, followed by an optional comma. A missing type means TEXT.
func (g *Grammar) fieldSpecification(in []byte) (ast.ColumnSpecification, []byte, error) {
	name, rest, err := g.sqlIdentifier(in)
	if err != nil {
		return ast.ColumnSpecification{}, nil, err
	}
	spec := ast.ColumnSpecification{
		Column: ast.Column{Name: string(name)},
		Type:   ast.TypeOf(ast.TypeText),
	}
	if afterWS, err := ws1(rest); err == nil {
		typ, afterType, err := typeIdentifier(afterWS)
		switch {
		case err == nil:
			spec.Type, rest = typ, ws0(afterType)
		case !isBacktrack(err):
			return ast.ColumnSpecification{}, nil, err
		}
	}
	for {
		c, next, err := columnConstraint(rest)
		if err != nil {
			if !isBacktrack(err) {
				return ast.ColumnSpecification{}, nil, err
			}
			break
		}
		if c != nil {
			spec.Constraints = append(spec.Constraints, *c)
		}
		rest = next
	}
	if next, err := commaSeparator(rest); err == nil {
		rest = next
	}
	return spec, rest, nil
}

// columnSpecificationList parses one or more field specifications. The
// enclosing parentheses belong to the statement.
func (g *Grammar) columnSpecificationList(in []byte) ([]ast.ColumnSpecification, []byte, error) {
	first, rest, err := g.fieldSpecification(ws0(in))
	if err != nil {
		return nil, nil, err
	}
	fields := []ast.ColumnSpecification{first}
	for {
		spec, next, err := g.fieldSpecification(ws0(rest))
		if err != nil {
			if !isBacktrack(err) {
				return nil, nil, err
			}
			return fields, rest, nil
		}
		fields = append(fields, spec)
		rest = next
	}
}
