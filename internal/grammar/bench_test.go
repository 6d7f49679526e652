package grammar

import (
	"strings"
	"testing"
)

func BenchmarkParseCreateTable(b *testing.B) {
	input := []byte(`create table [test].[clients] (
    id int unsigned auto_increment primary key,
    FirstName varchar(255) not null,
    SecondName varchar(255) not null,
    balance real default 0.00,
    created timestamp default current_timestamp,
    isActive bool not null default 1
);`)
	g := New()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = g.ParseCreateTable(input)
	}
}

func BenchmarkParseInsertRows(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("insert into orders (id, total, note) values ")
	for i := range 500 {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(1, 9.99, 'note')")
	}
	sb.WriteString(";")
	input := []byte(sb.String())
	g := New()

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = g.ParseInsert(input)
	}
}

func BenchmarkParseAllStream(b *testing.B) {
	input := statementStream(1000)
	g := New()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for b.Loop() {
		_, _ = g.ParseAll(input)
	}
}
