package token

import (
	"fmt"
	"io"
	"strings"
	"text/scanner"
)

// Error is a lexical error, located in its source.
type Error struct {
	Pos scanner.Position
	Msg string
}

func (err *Error) Error() string { return fmt.Sprintf("%v: %v", err.Pos, err.Msg) }

// Lexer splits source text into Tokens.
type Lexer struct {
	sc  scanner.Scanner
	err *Error
	eof bool
}

// NewLexer returns a Lexer reading from r; name is used in error positions.
func NewLexer(name string, r io.Reader) *Lexer {
	var lx Lexer
	lx.sc.Init(r)
	lx.sc.Filename = name
	lx.sc.Mode = scanner.ScanIdents | scanner.ScanChars | scanner.ScanStrings |
		scanner.ScanRawStrings | scanner.ScanComments | scanner.SkipComments
	lx.sc.Error = func(sc *scanner.Scanner, msg string) {
		lx.fail(sc.Position, msg)
	}
	return &lx
}

func (lx *Lexer) fail(pos scanner.Position, msg string) {
	if lx.err == nil {
		if !pos.IsValid() {
			pos = lx.sc.Pos()
		}
		lx.err = &Error{Pos: pos, Msg: msg}
	}
}

// Err returns the first lexical error encountered, if any.
func (lx *Lexer) Err() error {
	if lx.err == nil {
		return nil
	}
	return lx.err
}

// Next returns the next Token; after the end of input, or any error, it
// returns only EOF tokens.
func (lx *Lexer) Next() Token {
	if lx.eof || lx.err != nil {
		return Token{Kind: EOF, Line: lx.sc.Line, Column: lx.sc.Column}
	}

	r := lx.sc.Scan()
	tok := Token{
		Lexeme: lx.sc.TokenText(),
		Line:   lx.sc.Position.Line,
		Column: lx.sc.Position.Column,
	}
	if isDigit(r) || r == '.' && isDigit(lx.sc.Peek()) {
		tok.Lexeme, r = lx.number(r), scanner.Float
	}
	switch r {
	case scanner.EOF:
		lx.eof = true
		tok.Kind, tok.Lexeme = EOF, ""
		tok.Line, tok.Column = lx.sc.Pos().Line, lx.sc.Pos().Column
	case scanner.Ident:
		tok.Kind = Identifier
		if IsKeyword(tok.Lexeme) {
			tok.Kind = Keyword
		}
	case scanner.Int, scanner.Float:
		tok.Kind = Number
	case scanner.Char:
		tok.Kind = Char
	case scanner.String, scanner.RawString:
		tok.Kind = String
	case ';':
		tok.Kind = Semicolon
	case ',':
		tok.Kind = Comma
	case '(':
		tok.Kind = LeftParen
	case ')':
		tok.Kind = RightParen
	case '{':
		tok.Kind = LeftBrace
	case '}':
		tok.Kind = RightBrace
	case '[':
		tok.Kind = LeftBracket
	case ']':
		tok.Kind = RightBracket
	case '+', '-', '*', '/', '%':
		tok.Kind = Operator
	case '=', '<', '>', '!':
		tok.Kind = Operator
		if lx.sc.Peek() == '=' {
			lx.sc.Next()
			tok.Lexeme += "="
		} else if r == '!' {
			lx.fail(lx.sc.Position, "unexpected '!' without '='")
		}
	case '&', '|':
		tok.Kind = Operator
		if lx.sc.Peek() == r {
			lx.sc.Next()
			tok.Lexeme += string(r)
		} else {
			lx.fail(lx.sc.Position, fmt.Sprintf("unexpected %q", r))
		}
	default:
		lx.fail(lx.sc.Position, fmt.Sprintf("unexpected character %q", r))
	}
	if lx.err != nil {
		return Token{Kind: EOF, Line: tok.Line, Column: tok.Column}
	}
	return tok
}

// number scans the rest of a decimal literal begun by first: digits, an
// optional fraction, and an optional exponent. Leading zeros are decimal.
func (lx *Lexer) number(first rune) string {
	var sb strings.Builder
	sb.WriteRune(first)
	digits := func() (n int) {
		for ; isDigit(lx.sc.Peek()); n++ {
			sb.WriteRune(lx.sc.Next())
		}
		return n
	}
	if first != '.' {
		digits()
		if lx.sc.Peek() == '.' {
			sb.WriteRune(lx.sc.Next())
		}
	}
	digits()
	if p := lx.sc.Peek(); p == 'e' || p == 'E' {
		sb.WriteRune(lx.sc.Next())
		if p := lx.sc.Peek(); p == '+' || p == '-' {
			sb.WriteRune(lx.sc.Next())
		}
		if digits() == 0 {
			lx.fail(lx.sc.Pos(), "exponent has no digits")
		}
	}
	return sb.String()
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

// Scan tokenizes all of r, returning a token sequence terminated by a single
// EOF token, or the first lexical error.
func Scan(name string, r io.Reader) ([]Token, error) {
	lx := NewLexer(name, r)
	var toks []Token
	for {
		tok := lx.Next()
		if err := lx.Err(); err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// ScanString tokenizes src.
func ScanString(src string) ([]Token, error) {
	return Scan("<string>", strings.NewReader(src))
}
