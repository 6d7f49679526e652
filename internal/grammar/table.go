package grammar

import "github.com/electwix/sqlast/internal/ast"

// schemaTableReference parses [schema.]name [[AS] alias].
func (g *Grammar) schemaTableReference(in []byte) (ast.Table, []byte, error) {
	first, rest, err := g.sqlIdentifier(in)
	if err != nil {
		return ast.Table{}, nil, err
	}
	table := ast.Table{Name: string(first)}
	if afterDot, err := tag(".", rest); err == nil {
		if name, afterName, err := g.sqlIdentifier(afterDot); err == nil {
			table = ast.Table{Name: string(name), Schema: ast.Ptr(string(first))}
			rest = afterName
		}
	}
	if alias, afterAlias, err := g.asAlias(rest); err == nil {
		table.Alias = &alias
		rest = afterAlias
	}
	return table, rest, nil
}
