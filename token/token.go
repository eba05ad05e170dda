// Package token defines the lexical tokens of the minilox language.
package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the kind of a lexical token.
type Kind int

const (
	// Special tokens
	EOF Kind = iota

	// Single-character punctuation
	LeftParen  // (
	RightParen // )
	LeftBrace  // {
	RightBrace // }
	Comma      // ,
	Dot        // .
	Minus      // -
	Plus       // +
	Semicolon  // ;
	Slash      // /
	Star       // *
	Percent    // %

	// One or two character operators
	Bang         // !
	BangEqual    // !=
	Equal        // =
	EqualEqual   // ==
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals
	Identifier
	String
	Number

	// Keywords
	keywordBeg
	And
	Break
	Class
	Continue
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordEnd
)

var kindNames = [...]string{
	EOF: "EOF",

	LeftParen:  "LEFT_PAREN",
	RightParen: "RIGHT_PAREN",
	LeftBrace:  "LEFT_BRACE",
	RightBrace: "RIGHT_BRACE",
	Comma:      "COMMA",
	Dot:        "DOT",
	Minus:      "MINUS",
	Plus:       "PLUS",
	Semicolon:  "SEMICOLON",
	Slash:      "SLASH",
	Star:       "STAR",
	Percent:    "PERCENT",

	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",

	Identifier: "IDENTIFIER",
	String:     "STRING",
	Number:     "NUMBER",

	And:      "AND",
	Break:    "BREAK",
	Class:    "CLASS",
	Continue: "CONTINUE",
	Else:     "ELSE",
	False:    "FALSE",
	For:      "FOR",
	Fun:      "FUN",
	If:       "IF",
	Nil:      "NIL",
	Or:       "OR",
	Print:    "PRINT",
	Return:   "RETURN",
	Super:    "SUPER",
	This:     "THIS",
	True:     "TRUE",
	Var:      "VAR",
	While:    "WHILE",
}

// String returns the upper-snake-case name of the kind, e.g. "LEFT_PAREN".
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return keywordBeg < k && k < keywordEnd
}

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keywordEnd-keywordBeg)
	for k := keywordBeg + 1; k < keywordEnd; k++ {
		keywords[strings.ToLower(k.String())] = k
	}
}

// Lookup maps an identifier to its keyword kind, or Identifier if it is not reserved.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Identifier
}

// Token is a single lexical unit. Lexeme is the exact source text, so a
// String token's lexeme still carries its surrounding quotes.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// String renders the token as "KIND lexeme literal", the format used by the
// tokenize command. The literal column is "null" for tokens without one.
func (t Token) String() string {
	return fmt.Sprintf("%s %s %s", t.Kind, t.Lexeme, t.literal())
}

func (t Token) literal() string {
	switch t.Kind {
	case String:
		return Unquote(t.Lexeme)
	case Number:
		f, err := strconv.ParseFloat(t.Lexeme, 64)
		if err != nil {
			return "null"
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	default:
		return "null"
	}
}

// Unquote strips the surrounding double quotes of a string lexeme.
// The language has no escape sequences, so nothing else is rewritten.
func Unquote(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' && lexeme[len(lexeme)-1] == '"' {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
