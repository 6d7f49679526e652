package grammar

import (
	"slices"
	"strings"
)

// defaultKeywords lists the words an unquoted identifier may not be.
var defaultKeywords = []string{
	"AS",
	"AUTO_INCREMENT",
	"CHECK",
	"CREATE",
	"DEFAULT",
	"DELETE",
	"DROP",
	"FROM",
	"INSERT",
	"INTO",
	"NOT",
	"NULL",
	"PRIMARY",
	"SELECT",
	"SET",
	"TABLE",
	"UNIQUE",
	"UPDATE",
	"VALUES",
	"WHERE",
}

// DefaultKeywords returns a copy of the words reserved by every Grammar.
func DefaultKeywords() []string {
	return slices.Clone(defaultKeywords)
}

// KeywordSet is an immutable, case-insensitive set of reserved words.
type KeywordSet struct {
	words map[string]struct{}
}

// NewKeywordSet builds a set from the given words.
func NewKeywordSet(words ...string) KeywordSet {
	set := KeywordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set.words[strings.ToUpper(w)] = struct{}{}
	}
	return set
}

// Contains reports whether word is reserved, ignoring case.
func (s KeywordSet) Contains(word []byte) bool {
	if len(word) == 0 {
		return false
	}
	_, ok := s.words[strings.ToUpper(string(word))]
	return ok
}

// Words returns the reserved words in sorted order.
func (s KeywordSet) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// keywordBoundary lists the bytes that may follow a reserved word.
var keywordBoundary = [256]bool{
	' ':  true,
	'\t': true,
	'\n': true,
	'\r': true,
	';':  true,
	'(':  true,
	')':  true,
	',':  true,
	'=':  true,
}

// atBoundary reports whether in starts with a keyword boundary or is empty.
func atBoundary(in []byte) bool {
	return len(in) == 0 || keywordBoundary[in[0]]
}
