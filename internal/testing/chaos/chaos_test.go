package chaos

import (
	"bytes"
	"testing"
)

const valid = "CREATE TABLE t (id INT, name VARCHAR(10) DEFAULT 'x');"

func TestCorruptorDeterministic(t *testing.T) {
	t.Parallel()

	a := NewCorruptor(7).Corpus([]byte(valid), 20)
	b := NewCorruptor(7).Corpus([]byte(valid), 20)
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			t.Fatalf("corpus entry %d differs between equal seeds: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestCorruptDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := []byte(valid)
	c := NewCorruptor(1)
	for range 200 {
		c.Corrupt(in)
	}
	if string(in) != valid {
		t.Fatalf("input modified: %q", in)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	in := []byte(valid)
	c := NewCorruptor(3)

	tests := []struct {
		mutation Mutation
		check    func(out []byte) bool
	}{
		{ByteDelete, func(out []byte) bool { return len(out) == len(in)-1 }},
		{ByteInsert, func(out []byte) bool { return len(out) == len(in)+1 }},
		{Truncate, func(out []byte) bool { return len(out) < len(in) }},
		{InvalidUTF8, func(out []byte) bool { return len(out) == len(in)+1 }},
		{DropDelimiter, func(out []byte) bool {
			return countDelims(out) == countDelims(in)-1
		}},
		{DoubleDelimiter, func(out []byte) bool {
			return countDelims(out) == countDelims(in)+1
		}},
		{HugeNumber, func(out []byte) bool { return bytes.Contains(out, []byte("99999999999999999999999")) }},
		{ByteFlip, func(out []byte) bool { return len(out) == len(in) && !bytes.Equal(out, in) }},
	}
	for _, tt := range tests {
		if out := c.Apply(tt.mutation, in); !tt.check(out) {
			t.Errorf("mutation %d produced %q", tt.mutation, out)
		}
	}

	if out := c.Apply(SwapCase, nil); len(out) == 0 {
		t.Errorf("empty input should grow")
	}
}

func countDelims(in []byte) int {
	n := 0
	for _, b := range in {
		if bytes.IndexByte(delimiters, b) >= 0 {
			n++
		}
	}
	return n
}
