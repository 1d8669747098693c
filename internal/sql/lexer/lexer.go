// Package lexer turns SQL text into a linked list of tokens.
package lexer

import (
	"strconv"
	"strings"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Tokenize scans src once and returns the Root token of the list.
func Tokenize(src string) (*Token, error) {
	l := &lexer{src: src}
	root := &Token{Kind: Root}
	tail := root

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return root, nil
		}
		tail.Next = tok
		tail = tok
	}
}

type lexer struct {
	src string
	pos int
}

// next returns nil at end of input.
func (l *lexer) next() (*Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return nil, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		return l.ident(), nil
	case isDigit(c):
		return l.number()
	case c == '"' || c == '\'':
		return l.str()
	}

	var kind Kind
	switch c {
	case ';':
		kind = Semicolon
	case '=':
		kind = Assign
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case '?':
		kind = Placeholder
	case '*':
		kind = Star
	case ',':
		kind = Comma
	default:
		return nil, sqlerr.New(sqlerr.KindTokenize, "not supported character '%c' on tokenize (offset %d)", c, start)
	}
	l.pos++
	return &Token{Kind: kind, Text: l.src[start:l.pos], Pos: start}, nil
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) ident() *Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]
	if kw, ok := LookupKeyword(word); ok {
		return &Token{Kind: kw, Text: word, Pos: start}
	}
	return &Token{Kind: Ident, Text: word, Pos: start}
}

func (l *lexer) number() (*Token, error) {
	start := l.pos
	dot := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '.' {
			if dot {
				return nil, sqlerr.New(sqlerr.KindTokenize, "invalid number %q on tokenize (offset %d)", l.src[start:l.pos+1], start)
			}
			dot = true
			l.pos++
			continue
		}
		if !isDigit(c) {
			break
		}
		l.pos++
	}

	text := l.src[start:l.pos]
	if dot {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, sqlerr.Wrap(sqlerr.KindTokenize, err, "invalid number %q on tokenize", text)
		}
		return &Token{Kind: Double, Text: text, Double: f, Pos: start}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindTokenize, err, "invalid number %q on tokenize", text)
	}
	return &Token{Kind: Int, Text: text, Int: n, Pos: start}, nil
}

// str reads a quoted literal. A backslash escapes the next byte.
func (l *lexer) str() (*Token, error) {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++

	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos++
			if l.pos == len(l.src) {
				return nil, sqlerr.New(sqlerr.KindTokenize, "dangling escape at end of string literal on tokenize (offset %d)", start)
			}
			b.WriteByte(l.src[l.pos])
			l.pos++
		case c == quote:
			l.pos++
			return &Token{Kind: String, Text: b.String(), Pos: start}, nil
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return nil, sqlerr.New(sqlerr.KindTokenize, "unterminated string literal on tokenize (offset %d)", start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
