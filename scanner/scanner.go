// Package scanner implements the lexer for minilox source text.
//
// A Scanner makes a single left-to-right pass over the source and produces
// a flat slice of tokens, always terminated by an EOF token. Lexical
// problems (unterminated strings, unexpected characters) are reported to
// an ErrorHandler and scanning continues with the next character.
package scanner

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/podhmo/minilox/token"
)

// ErrorHandler receives lexical diagnostics. It may be nil.
type ErrorHandler func(line int, msg string)

// Error is a single lexical diagnostic.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Msg)
}

// ErrorList collects lexical diagnostics. The zero value is ready to use.
type ErrorList []*Error

// Add appends a diagnostic. Its signature matches ErrorHandler.
func (l *ErrorList) Add(line int, msg string) {
	*l = append(*l, &Error{Line: line, Msg: msg})
}

// Sort orders the list by line, keeping the scan order for equal lines.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Line < l[j].Line })
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	lines := make([]string, len(l))
	for i, e := range l {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns nil for an empty list and the list itself otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Scanner holds the scanning state for one source text.
type Scanner struct {
	src  string
	errh ErrorHandler

	tokens  []token.Token
	start   int // offset of the first byte of the current lexeme
	current int // offset of the next unread byte
	line    int
}

// New creates a Scanner for src. errh is called for each lexical error.
func New(src string, errh ErrorHandler) *Scanner {
	return &Scanner{src: src, errh: errh, line: 1}
}

// Scan tokenizes src in one call.
func Scan(src string, errh ErrorHandler) []token.Token {
	return New(src, errh).Tokens()
}

// Tokens scans the whole source and returns the tokens, EOF last.
func (s *Scanner) Tokens() []token.Token {
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.Token{Kind: token.EOF, Lexeme: "", Line: s.line})
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)
	case '%':
		s.add(token.Percent)
	case '!':
		s.addEither('=', token.BangEqual, token.Bang)
	case '=':
		s.addEither('=', token.EqualEqual, token.Equal)
	case '<':
		s.addEither('=', token.LessEqual, token.Less)
	case '>':
		s.addEither('=', token.GreaterEqual, token.Greater)
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		} else {
			s.add(token.Slash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(c):
			s.scanNumber()
		case isAlpha(c):
			s.scanIdentifier()
		default:
			s.unexpected()
		}
	}
}

func (s *Scanner) scanString() {
	opened := s.line
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.errorAt(opened, "Unterminated string.")
		return
	}
	s.advance() // closing quote
	s.add(token.String)
}

func (s *Scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	s.add(token.Number)
}

func (s *Scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.add(token.Lookup(s.src[s.start:s.current]))
}

// unexpected reports the character starting at s.start. Multi-byte runes
// are consumed whole so the report names the actual character.
func (s *Scanner) unexpected() {
	r, size := utf8.DecodeRuneInString(s.src[s.start:])
	s.current = s.start + size
	s.error(fmt.Sprintf("Unexpected character: %c", r))
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) add(kind token.Kind) {
	s.tokens = append(s.tokens, token.Token{
		Kind:   kind,
		Lexeme: s.src[s.start:s.current],
		Line:   s.line,
	})
}

func (s *Scanner) addEither(next byte, two, one token.Kind) {
	if s.match(next) {
		s.add(two)
		return
	}
	s.add(one)
}

func (s *Scanner) error(msg string) {
	s.errorAt(s.line, msg)
}

func (s *Scanner) errorAt(line int, msg string) {
	if s.errh != nil {
		s.errh(line, msg)
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }
