package bind

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/electwix/sqlast/internal/ast"
	"github.com/electwix/sqlast/internal/render"
)

// Execer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplayStats counts what Replay executed.
type ReplayStats struct {
	Tables int
	Rows   int
}

// Replay executes cmds in order against a SQLite database. CREATE TABLE
// statements are rendered in the SQLite dialect; INSERT rows are executed one
// at a time with bound arguments typed from earlier CREATE TABLE statements.
// Statement kinds without a body are skipped.
func (b *Binder) Replay(ctx context.Context, db Execer, cmds []ast.Command) (ReplayStats, error) {
	var stats ReplayStats
	r := render.New(render.WithDialect(render.SQLite))
	tables := make(map[string]*ast.CreateTable)

	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		switch {
		case cmd.CreateTable != nil:
			q, err := r.CreateTable(*cmd.CreateTable)
			if err != nil {
				return stats, fmt.Errorf("statement %d: %w", i+1, err)
			}
			if _, err := db.ExecContext(ctx, q); err != nil {
				return stats, fmt.Errorf("statement %d: create %s: %w", i+1, cmd.CreateTable.Table.QualifiedName(), err)
			}
			tables[strings.ToLower(cmd.CreateTable.Table.QualifiedName())] = cmd.CreateTable
			stats.Tables++
		case cmd.Insert != nil:
			n, err := b.replayInsert(ctx, db, r, *cmd.Insert, tables[strings.ToLower(cmd.Insert.Table.QualifiedName())])
			stats.Rows += n
			if err != nil {
				return stats, fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
	}
	return stats, nil
}

func (b *Binder) replayInsert(ctx context.Context, db Execer, r *render.Renderer, stmt ast.InsertTable, table *ast.CreateTable) (int, error) {
	rows, err := b.Rows(stmt, table)
	if err != nil {
		return 0, err
	}
	queries := make(map[int]string)
	for i, args := range rows {
		q, ok := queries[len(args)]
		if !ok {
			if q, err = r.Parameterized(stmt, len(args)); err != nil {
				return i, err
			}
			queries[len(args)] = q
		}
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			return i, fmt.Errorf("insert into %s row %d: %w", stmt.Table.QualifiedName(), i+1, err)
		}
	}
	return len(rows), nil
}
