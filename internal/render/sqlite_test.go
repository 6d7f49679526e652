package render

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/electwix/sqlast/internal/grammar"
)

const (
	sqliteDriver = "sqlite"
	sqliteInMem  = ":memory:"
)

func openSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open(sqliteDriver, sqliteInMem)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteAcceptsRenderedStatements(t *testing.T) {
	const script = `CREATE TABLE main.users AS u (
    id INT(11) UNSIGNED PRIMARY KEY AUTO_INCREMENT,
    name VARCHAR(64) NOT NULL DEFAULT 'anon',
    mood ENUM('happy', 'sad'),
    balance FLOAT DEFAULT -0.5,
    avatar BLOB,
    created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
INSERT INTO users (id, name, mood, balance, avatar) VALUES (1, 'ann', 'happy', 10.25, '` + "\xff\x00\xfe" + `'), (2, 'bob', NULL, -3.5, NULL);
INSERT INTO main.users (id) VALUES (3);
`
	stmts, err := grammar.New().ParseAll([]byte(script))
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}

	ctx := context.Background()
	db := openSQLite(t)
	r := New(WithDialect(SQLite))
	for _, s := range stmts {
		q, err := r.Render(s.Command)
		if err != nil {
			t.Fatalf("Render(%s) error = %v", s.Command.Kind, err)
		}
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}

	var (
		count   int
		name    string
		balance float64
		avatar  []byte
	)
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if err := db.QueryRowContext(ctx, `SELECT name, balance FROM users WHERE id = 3`).Scan(&name, &balance); err != nil {
		t.Fatalf("select defaults: %v", err)
	}
	if name != "anon" || balance != -0.5 {
		t.Errorf("defaults = (%q, %v), want (anon, -0.5)", name, balance)
	}
	if err := db.QueryRowContext(ctx, `SELECT avatar FROM users WHERE id = 1`).Scan(&avatar); err != nil {
		t.Fatalf("select blob: %v", err)
	}
	if string(avatar) != "\xff\x00\xfe" {
		t.Errorf("avatar = %x, want ff00fe", avatar)
	}
}
