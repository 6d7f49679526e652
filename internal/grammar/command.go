package grammar

import "github.com/electwix/sqlast/internal/ast"

// unsupportedVerbs maps statement verbs that have no grammar to their kind.
var unsupportedVerbs = map[string]ast.CommandKind{
	"SELECT": ast.CommandSelect,
	"DELETE": ast.CommandDelete,
	"UPDATE": ast.CommandUpdate,
	"SET":    ast.CommandSet,
}

// ParseCommand parses one statement, choosing the grammar from its leading
// keyword. Statement kinds without a grammar produce *UnsupportedStatementError.
func (g *Grammar) ParseCommand(in []byte) (ast.Command, []byte, error) {
	if err := g.checkSize(in); err != nil {
		return ast.Command{}, nil, err
	}
	cmd, rest, err := g.parseCommand(in)
	if err != nil {
		return ast.Command{}, nil, g.relocate(err, in, 0)
	}
	return cmd, rest, nil
}

func (g *Grammar) parseCommand(in []byte) (ast.Command, []byte, error) {
	start := ws0(in)
	verb, object := statementHead(start)
	switch verb {
	case "CREATE":
		stmt, rest, err := g.tableCreation(start)
		if err != nil {
			return ast.Command{}, nil, err
		}
		return ast.NewCreateTableCommand(stmt), rest, nil
	case "INSERT":
		stmt, rest, err := g.tableInsertion(start)
		if err != nil {
			return ast.Command{}, nil, err
		}
		return ast.NewInsertCommand(stmt), rest, nil
	case "DROP":
		if object == "TABLE" {
			return ast.Command{}, nil, unsupported(ast.CommandDropTable, "DROP TABLE", in, start)
		}
	default:
		if kind, ok := unsupportedVerbs[verb]; ok {
			return ast.Command{}, nil, unsupported(kind, verb, in, start)
		}
	}
	return ast.Command{}, nil, syntaxErr("command", start)
}

func unsupported(kind ast.CommandKind, kw string, in, start []byte) error {
	return &UnsupportedStatementError{
		Kind:     kind,
		Keyword:  kw,
		Position: Position{Offset: len(in) - len(start)},
	}
}
