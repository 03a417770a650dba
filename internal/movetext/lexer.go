// Package movetext splits PGN movetext into tokens: moves, move numbers,
// numeric annotation glyphs, comments, variation brackets and results.
package movetext

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind uint8

const (
	Move Kind = iota
	MoveNumber
	NAG
	Comment
	Open
	Close
	Result
)

var kindNames = [...]string{"move", "number", "nag", "comment", "open", "close", "result"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Token is one lexical unit. Pos is the byte offset in the input.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// ErrUnterminatedComment is returned for a "{" with no closing "}".
var ErrUnterminatedComment = errors.New("unterminated comment")

const delimiters = " \t\r\n{}();"

// Lex tokenizes movetext. Move-number prefixes glued to moves ("1.e4") are
// split, and a run of "!"/"?" standing alone is returned as a NAG.
func Lex(s string) ([]Token, error) {
	var out []Token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '%' && (i == 0 || s[i-1] == '\n'):
			i = lineEnd(s, i)
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return out, fmt.Errorf("%w at offset %d", ErrUnterminatedComment, i)
			}
			out = append(out, Token{Comment, strings.TrimSpace(s[i+1 : i+1+end]), i})
			i += end + 2
		case c == ';':
			end := lineEnd(s, i)
			out = append(out, Token{Comment, strings.TrimSpace(s[i+1 : end]), i})
			i = end
		case c == '(':
			out = append(out, Token{Open, "(", i})
			i++
		case c == ')':
			out = append(out, Token{Close, ")", i})
			i++
		case c == '}':
			// stray closer, nothing to attach it to
			i++
		default:
			end := i
			for end < len(s) && strings.IndexByte(delimiters, s[end]) < 0 {
				end++
			}
			out = appendWord(out, s[i:end], i)
			i = end
		}
	}
	return out, nil
}

func lineEnd(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(s)
}

func appendWord(out []Token, w string, pos int) []Token {
	switch {
	case IsResult(w):
		return append(out, Token{Result, w, pos})
	case w[0] == '$':
		return append(out, Token{NAG, w, pos})
	case strings.Trim(w, "!?") == "":
		return append(out, Token{NAG, w, pos})
	case w[0] >= '0' && w[0] <= '9':
		digits := 0
		for digits < len(w) && w[digits] >= '0' && w[digits] <= '9' {
			digits++
		}
		dots := digits
		for dots < len(w) && w[dots] == '.' {
			dots++
		}
		if dots == digits && digits < len(w) {
			// castling written with zeros
			return append(out, Token{Move, w, pos})
		}
		out = append(out, Token{MoveNumber, w[:dots], pos})
		if dots < len(w) {
			out = append(out, Token{Move, w[dots:], pos + dots})
		}
		return out
	}
	return append(out, Token{Move, w, pos})
}

// IsResult reports whether w is a game termination marker.
func IsResult(w string) bool {
	switch w {
	case "1-0", "0-1", "1/2-1/2", "½-½", "*":
		return true
	}
	return false
}

// MainLine returns the moves outside any variation, in order.
func MainLine(tokens []Token) []string {
	var moves []string
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case Open:
			depth++
		case Close:
			if depth > 0 {
				depth--
			}
		case Move:
			if depth == 0 {
				moves = append(moves, t.Text)
			}
		}
	}
	return moves
}
