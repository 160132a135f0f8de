// Package lexer splits an input line into shell words, honouring single
// quotes, double quotes and backslash escapes.
package lexer

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Operators recognised when they appear as a bare, unquoted word.
const (
	OpPipe         = "|"
	OpStdout       = ">"
	OpStdoutFD     = "1>"
	OpAppend       = ">>"
	OpAppendFD     = "1>>"
	OpStderr       = "2>"
	OpStderrAppend = "2>>"
)

var operators = map[string]struct{}{
	OpPipe:         {},
	OpStdout:       {},
	OpStdoutFD:     {},
	OpAppend:       {},
	OpAppendFD:     {},
	OpStderr:       {},
	OpStderrAppend: {},
}

// Token is a single word of the input line. Quoted is set when any part of
// the word came from a quote or an escape, which stops it from being read
// as an operator.
type Token struct {
	Text   string
	Quoted bool
}

// IsOperator reports whether the token is a bare pipe or redirection marker.
func (t Token) IsOperator() bool {
	if t.Quoted {
		return false
	}
	_, ok := operators[t.Text]
	return ok
}

func (t Token) Is(op string) bool {
	return !t.Quoted && t.Text == op
}

type parseState int

const (
	stateOutside parseState = iota
	stateSingleQuote
	stateDoubleQuote
)

type tokenBuffer struct {
	builder strings.Builder
	quoted  bool
}

func (tb *tokenBuffer) appendRune(r rune) {
	tb.builder.WriteRune(r)
}

func (tb *tokenBuffer) flushIfNotEmpty(tokens []Token) []Token {
	if tb.builder.Len() > 0 {
		tokens = append(tokens, Token{Text: tb.builder.String(), Quoted: tb.quoted})
	}
	tb.builder.Reset()
	tb.quoted = false
	return tokens
}

type lexer struct {
	state    parseState
	escaping bool
	buf      tokenBuffer
	tokens   []Token
}

func (l *lexer) outside(ch rune) {
	if l.escaping {
		l.buf.appendRune(ch)
		l.escaping = false
		return
	}

	switch {
	case unicode.IsSpace(ch):
		l.tokens = l.buf.flushIfNotEmpty(l.tokens)
	case ch == '\'':
		l.state = stateSingleQuote
		l.buf.quoted = true
	case ch == '"':
		l.state = stateDoubleQuote
		l.buf.quoted = true
	case ch == '\\':
		l.escaping = true
		l.buf.quoted = true
	default:
		l.buf.appendRune(ch)
	}
}

func (l *lexer) singleQuote(ch rune) {
	if ch == '\'' {
		l.state = stateOutside
		return
	}
	l.buf.appendRune(ch)
}

func (l *lexer) doubleQuote(ch rune) {
	if l.escaping {
		// only \\ and \" are escapes inside double quotes
		if ch != '\\' && ch != '"' {
			l.buf.appendRune('\\')
		}
		l.buf.appendRune(ch)
		l.escaping = false
		return
	}

	switch ch {
	case '"':
		l.state = stateOutside
	case '\\':
		l.escaping = true
	default:
		l.buf.appendRune(ch)
	}
}

// Split tokenizes line. It never fails: an unterminated quote or a trailing
// backslash is accepted and whatever was collected is kept as the last word.
func Split(line string) []Token {
	l := &lexer{}
	for _, ch := range line {
		switch l.state {
		case stateOutside:
			l.outside(ch)
		case stateSingleQuote:
			l.singleQuote(ch)
		case stateDoubleQuote:
			l.doubleQuote(ch)
		}
	}
	return l.buf.flushIfNotEmpty(l.tokens)
}

// Words returns only the token texts.
func Words(tokens []Token) []string {
	return lo.Map(tokens, func(t Token, _ int) string {
		return t.Text
	})
}
