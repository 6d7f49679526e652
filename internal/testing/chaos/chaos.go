// Package chaos corrupts valid SQL so tests can check that parsers fail
// cleanly instead of panicking.
package chaos

import (
	"bytes"
	"math/rand/v2"
	"slices"
)

// Mutation is one kind of corruption.
type Mutation int

const (
	ByteFlip Mutation = iota
	ByteDelete
	ByteInsert
	Truncate
	InvalidUTF8
	DropDelimiter
	DoubleDelimiter
	HugeNumber
	SwapCase
	mutationCount
)

// delimiters are the bytes the SQL grammar uses to structure statements.
var delimiters = []byte("(),;'`\"[]")

// Corruptor applies seeded, reproducible mutations.
type Corruptor struct {
	rng *rand.Rand
}

// NewCorruptor creates a Corruptor; the same seed yields the same corruptions.
func NewCorruptor(seed uint64) *Corruptor {
	return &Corruptor{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Corrupt returns a mutated copy of input. input itself is never modified.
func (c *Corruptor) Corrupt(input []byte) []byte {
	return c.Apply(Mutation(c.rng.IntN(int(mutationCount))), input)
}

// CorruptN applies n random mutations in sequence.
func (c *Corruptor) CorruptN(input []byte, n int) []byte {
	out := slices.Clone(input)
	for range n {
		out = c.Corrupt(out)
	}
	return out
}

// Corpus returns count corrupted variants of valid, each with one to five
// mutations.
func (c *Corruptor) Corpus(valid []byte, count int) [][]byte {
	corpus := make([][]byte, count)
	for i := range corpus {
		corpus[i] = c.CorruptN(valid, c.rng.IntN(5)+1)
	}
	return corpus
}

// Apply performs mutation m on a copy of input.
func (c *Corruptor) Apply(m Mutation, input []byte) []byte {
	out := slices.Clone(input)
	if len(out) == 0 {
		return append(out, c.randomBytes()...)
	}
	i := c.rng.IntN(len(out))

	switch m {
	case ByteFlip:
		out[i] ^= 1 << c.rng.IntN(8)
	case ByteDelete:
		out = slices.Delete(out, i, i+1)
	case ByteInsert:
		out = slices.Insert(out, i, byte(c.rng.IntN(256)))
	case Truncate:
		out = out[:i]
	case InvalidUTF8:
		out = slices.Insert(out, i, 0xC0|byte(c.rng.IntN(0x20)))
	case DropDelimiter:
		if j := c.pickDelimiter(out); j >= 0 {
			out = slices.Delete(out, j, j+1)
		}
	case DoubleDelimiter:
		if j := c.pickDelimiter(out); j >= 0 {
			out = slices.Insert(out, j, out[j])
		}
	case HugeNumber:
		out = slices.Insert(out, i, []byte("99999999999999999999999")...)
	case SwapCase:
		for j := i; j < len(out) && j < i+8; j++ {
			switch b := out[j]; {
			case 'a' <= b && b <= 'z':
				out[j] = b - 'a' + 'A'
			case 'A' <= b && b <= 'Z':
				out[j] = b - 'A' + 'a'
			}
		}
	}
	return out
}

// pickDelimiter returns the index of a random delimiter byte, or -1.
func (c *Corruptor) pickDelimiter(in []byte) int {
	var idx []int
	for i, b := range in {
		if bytes.IndexByte(delimiters, b) >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return -1
	}
	return idx[c.rng.IntN(len(idx))]
}

func (c *Corruptor) randomBytes() []byte {
	out := make([]byte, c.rng.IntN(10)+1)
	for i := range out {
		out[i] = byte(c.rng.IntN(256))
	}
	return out
}
