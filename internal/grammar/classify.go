package grammar

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// headLexer splits just enough of a statement to see which verb starts it.
//
//nolint:govet // Participle DSL uses unkeyed fields
var headLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Word", `[A-Za-z0-9_@]+`},
	{"Whitespace", `[ \t\r\n]+`},
	{"Other", `[\s\S]`},
})

var (
	wordToken       = headLexer.Symbols()["Word"]
	whitespaceToken = headLexer.Symbols()["Whitespace"]
)

// statementHead returns the first two words of in, upper-cased. Missing words
// are empty. Only the bytes covering those two tokens are lexed.
func statementHead(in []byte) (verb, object string) {
	lex, err := headLexer.LexString("", string(in[:headLen(in)]))
	if err != nil {
		return "", ""
	}
	var words []string
	for len(words) < 2 {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			break
		}
		switch tok.Type {
		case whitespaceToken:
			continue
		case wordToken:
			words = append(words, strings.ToUpper(tok.Value))
		default:
			words = append(words, "")
		}
	}
	for len(words) < 2 {
		words = append(words, "")
	}
	return words[0], words[1]
}

// headLen returns the length of the prefix of in that holds its first two
// non-whitespace tokens, split the way headLexer splits them.
func headLen(in []byte) int {
	i := 0
	for range 2 {
		for i < len(in) && isSpace(in[i]) {
			i++
		}
		switch {
		case i == len(in):
			return i
		case isIdentByte(in[i]):
			for i < len(in) && isIdentByte(in[i]) {
				i++
			}
		default:
			_, size := utf8.DecodeRune(in[i:])
			i += size
		}
	}
	return i
}
