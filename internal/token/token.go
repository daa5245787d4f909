// Package token defines the lexical units consumed by the translator, and a
// lexer producing them from source text.
package token

import "fmt"

// Kind classifies a Token.
type Kind uint8

// Token kinds.
const (
	EOF Kind = iota
	Keyword
	Identifier
	Number
	Operator
	Semicolon
	Comma
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	String
	Char
)

var kindNames = [...]string{
	EOF:          "EOF",
	Keyword:      "KEYWORD",
	Identifier:   "IDENTIFIER",
	Number:       "NUMBER",
	Operator:     "OPERATOR",
	Semicolon:    "SEMICOLON",
	Comma:        "COMMA",
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	LeftBracket:  "LEFT_BRACKET",
	RightBracket: "RIGHT_BRACKET",
	String:       "STRING",
	Char:         "CHAR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one classified lexical unit, with its 1-based source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

// Is returns true if tok has the given kind and lexeme.
func (tok Token) Is(kind Kind, lexeme string) bool {
	return tok.Kind == kind && tok.Lexeme == lexeme
}

// Pos returns the "line:column" position of tok.
func (tok Token) Pos() string { return fmt.Sprintf("%v:%v", tok.Line, tok.Column) }

func (tok Token) String() string {
	if tok.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%v(%v)", tok.Kind, tok.Lexeme)
}

var keywords = map[string]bool{
	"int": true, "float": true, "double": true, "char": true, "void": true,
	"if": true, "else": true, "while": true, "for": true,
	"read": true, "input": true, "write": true, "output": true,
	"return": true, "struct": true, "mem1": true, "mem2": true,
}

// IsKeyword returns true if word is a reserved word of the language.
func IsKeyword(word string) bool { return keywords[word] }

// IsType returns true if word names a declarable type.
func IsType(word string) bool {
	switch word {
	case "int", "float", "double", "char":
		return true
	}
	return false
}
