// Package translate lowers a token sequence into a postfix ops.Program.
//
// Statements are translated by recursive descent; expressions by precedence
// climbing over an explicit operator stack. Control flow becomes Label, Jump,
// and JumpFalse instructions, naming labels m0, m1, ... in allocation order.
package translate

import (
	"io"
	"strconv"

	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/ops"
	"github.com/jcorbin/opstack/internal/runeio"
	"github.com/jcorbin/opstack/internal/token"
)

// maxStalls bounds how many consecutive loop iterations an expression may
// spend on the same token.
const maxStalls = 100

// Source tokenizes and translates the source text read from r.
func Source(name string, r io.Reader) (ops.Program, error) {
	toks, err := token.Scan(name, r)
	if err != nil {
		return nil, err
	}
	return Tokens(toks)
}

// Tokens translates a token sequence; a missing trailing EOF token is
// tolerated. No partial program is returned on error.
func Tokens(toks []token.Token) (ops.Program, error) {
	tr := translator{toks: toks}
	if err := tr.program(); err != nil {
		return nil, err
	}
	return tr.prog, nil
}

type translator struct {
	toks   []token.Token
	pos    int
	prog   ops.Program
	labels int
}

func (tr *translator) emit(ins ...ops.Instr) { tr.prog = append(tr.prog, ins...) }

func (tr *translator) label() string {
	name := "m" + strconv.Itoa(tr.labels)
	tr.labels++
	return name
}

func (tr *translator) peek() token.Token {
	if tr.pos < len(tr.toks) {
		return tr.toks[tr.pos]
	}
	var tok token.Token
	if n := len(tr.toks); n > 0 {
		tok.Line, tok.Column = tr.toks[n-1].Line, tr.toks[n-1].Column
	}
	return tok
}

func (tr *translator) peekAt(off int) token.Token {
	if i := tr.pos + off; i < len(tr.toks) {
		return tr.toks[i]
	}
	return token.Token{}
}

func (tr *translator) atEnd() bool { return tr.peek().Kind == token.EOF }

func (tr *translator) advance() token.Token {
	tok := tr.peek()
	if tr.pos < len(tr.toks) {
		tr.pos++
	}
	return tok
}

// expect consumes a token of the given kind, or fails with an
// UnexpectedEndError inside construct, or a SyntaxError wanting want.
func (tr *translator) expect(kind token.Kind, want, construct string) (token.Token, error) {
	tok := tr.peek()
	if tok.Kind == kind {
		return tr.advance(), nil
	}
	return tok, tr.unexpected(want, construct)
}

func (tr *translator) unexpected(want, construct string) error {
	if tr.atEnd() {
		return &UnexpectedEndError{Construct: construct}
	}
	return &SyntaxError{Tok: tr.peek(), Want: want}
}

func (tr *translator) skip(kind token.Kind) bool {
	if tr.peek().Kind == kind {
		tr.advance()
		return true
	}
	return false
}

func (tr *translator) program() error {
	for !tr.atEnd() {
		before := tr.pos
		if err := tr.statement(); err != nil {
			return err
		}
		if tr.pos == before {
			return &InternalError{Pos: tr.pos, Construct: "program"}
		}
	}
	return nil
}

// block translates a braced statement list.
func (tr *translator) block(construct string) error {
	if _, err := tr.expect(token.LeftBrace, "'{'", construct); err != nil {
		return err
	}
	for !tr.skip(token.RightBrace) {
		if tr.atEnd() {
			return &UnexpectedEndError{Construct: construct}
		}
		before := tr.pos
		if err := tr.statement(); err != nil {
			return err
		}
		if tr.pos == before {
			return &InternalError{Pos: tr.pos, Construct: construct}
		}
	}
	return nil
}

func (tr *translator) statement() error {
	tok := tr.peek()
	switch tok.Kind {
	case token.Semicolon:
		tr.advance()
		return nil

	case token.Identifier:
		return tr.assignment()

	case token.Keyword:
		switch tok.Lexeme {
		case "int", "float", "double", "char":
			return tr.declaration()
		case "if":
			return tr.ifStatement()
		case "while":
			return tr.whileStatement()
		case "for":
			return tr.forStatement()
		case "read", "input":
			return tr.readStatement()
		case "write", "output":
			return tr.writeStatement()
		}
		tr.advance()
		return nil
	}
	return &SyntaxError{Tok: tok, Want: "statement"}
}

func (tr *translator) declaration() error {
	typ := tr.advance().Lexeme
	nameTok, err := tr.expect(token.Identifier, "identifier", typ+" declaration")
	if err != nil {
		return err
	}
	name, err := operandName(nameTok)
	if err != nil {
		return err
	}

	switch {
	case tr.peek().Kind == token.LeftBracket:
		var dims []int
		for len(dims) < 2 && tr.skip(token.LeftBracket) {
			size, err := tr.arraySize()
			if err != nil {
				return err
			}
			if _, err := tr.expect(token.RightBracket, "']'", "array declaration"); err != nil {
				return err
			}
			dims = append(dims, size)
		}
		tr.emit(ops.Sized(typ, name, dims...))

	case tr.peek().Is(token.Operator, "="):
		tr.advance()
		if err := tr.expression("initializer"); err != nil {
			return err
		}
		tr.emit(ops.Named(ops.Assign, name))

	default:
		tr.emit(ops.Typed(ops.Declare, typ, name))
	}

	tr.skip(token.Semicolon)
	return nil
}

func (tr *translator) arraySize() (int, error) {
	tok := tr.peek()
	if tok.Kind == token.Number {
		if n, err := strconv.ParseInt(tok.Lexeme, 10, strconv.IntSize); err == nil && n >= 0 {
			tr.advance()
			return int(n), nil
		}
	}
	return 0, tr.unexpected("array size", "array declaration")
}

func (tr *translator) assignment() error {
	name, err := operandName(tr.advance())
	if err != nil {
		return err
	}

	n := 0
	if tr.peek().Kind == token.LeftBracket {
		tr.emit(ops.Named(ops.Mark, name))
		if n, err = tr.indices("array assignment"); err != nil {
			return err
		}
	}

	if !tr.peek().Is(token.Operator, "=") {
		return tr.unexpected("'='", "assignment")
	}
	tr.advance()
	if err := tr.expression("assignment"); err != nil {
		return err
	}

	switch n {
	case 0:
		tr.emit(ops.Named(ops.Assign, name))
	case 1:
		tr.emit(ops.Named(ops.ArraySet, name))
	default:
		tr.emit(ops.Named(ops.ArraySet2D, name))
	}
	tr.skip(token.Semicolon)
	return nil
}

// indices translates one or two bracketed index expressions, returning how
// many there were.
func (tr *translator) indices(construct string) (int, error) {
	n := 0
	for n < 2 && tr.skip(token.LeftBracket) {
		if err := tr.expression("array index"); err != nil {
			return n, err
		}
		if _, err := tr.expect(token.RightBracket, "']'", construct); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// condition translates a parenthesized condition.
func (tr *translator) condition(construct string) error {
	if _, err := tr.expect(token.LeftParen, "'('", construct); err != nil {
		return err
	}
	if err := tr.expression(construct + " condition"); err != nil {
		return err
	}
	_, err := tr.expect(token.RightParen, "')'", construct)
	return err
}

func (tr *translator) ifStatement() error {
	tr.advance()
	if err := tr.condition("if"); err != nil {
		return err
	}
	elseLabel, endLabel := tr.label(), tr.label()
	tr.emit(ops.Named(ops.JumpFalse, elseLabel))
	if err := tr.block("if body"); err != nil {
		return err
	}

	if !tr.peek().Is(token.Keyword, "else") {
		tr.emit(ops.Named(ops.Label, elseLabel))
		return nil
	}
	tr.advance()

	tr.emit(
		ops.Named(ops.Jump, endLabel),
		ops.Named(ops.Label, elseLabel))
	if tr.peek().Is(token.Keyword, "if") {
		if err := tr.ifStatement(); err != nil {
			return err
		}
	} else if err := tr.block("else body"); err != nil {
		return err
	}
	tr.emit(ops.Named(ops.Label, endLabel))
	return nil
}

func (tr *translator) whileStatement() error {
	tr.advance()
	startLabel, endLabel := tr.label(), tr.label()
	tr.emit(ops.Named(ops.Label, startLabel))
	if err := tr.condition("while"); err != nil {
		return err
	}
	tr.emit(ops.Named(ops.JumpFalse, endLabel))
	if err := tr.block("while body"); err != nil {
		return err
	}
	tr.emit(
		ops.Named(ops.Jump, startLabel),
		ops.Named(ops.Label, endLabel))
	return nil
}

func (tr *translator) forStatement() error {
	tr.advance()
	if _, err := tr.expect(token.LeftParen, "'('", "for"); err != nil {
		return err
	}

	switch tok := tr.peek(); {
	case tok.Kind == token.Keyword && token.IsType(tok.Lexeme):
		if err := tr.declaration(); err != nil {
			return err
		}
	case tok.Kind == token.Identifier:
		if err := tr.assignment(); err != nil {
			return err
		}
	default:
		if _, err := tr.expect(token.Semicolon, "for initializer", "for"); err != nil {
			return err
		}
	}

	startLabel, endLabel := tr.label(), tr.label()
	tr.emit(ops.Named(ops.Label, startLabel))
	if tr.peek().Kind != token.Semicolon {
		if err := tr.expression("for condition"); err != nil {
			return err
		}
		tr.emit(ops.Named(ops.JumpFalse, endLabel))
	}
	if _, err := tr.expect(token.Semicolon, "';'", "for"); err != nil {
		return err
	}

	// the increment clause is translated after the body
	incStart := tr.pos
	for depth := 0; ; tr.advance() {
		tok := tr.peek()
		if tok.Kind == token.EOF {
			return &UnexpectedEndError{Construct: "for"}
		} else if tok.Kind == token.LeftParen {
			depth++
		} else if tok.Kind == token.RightParen {
			if depth == 0 {
				break
			}
			depth--
		}
	}
	incEnd := tr.pos
	tr.advance()

	if err := tr.block("for body"); err != nil {
		return err
	}

	if incStart < incEnd {
		resume := tr.pos
		tr.pos = incStart
		if err := tr.assignment(); err != nil {
			return err
		}
		if tr.pos != incEnd {
			return &SyntaxError{Tok: tr.peek(), Want: "')'"}
		}
		tr.pos = resume
	}

	tr.emit(
		ops.Named(ops.Jump, startLabel),
		ops.Named(ops.Label, endLabel))
	return nil
}

func (tr *translator) readStatement() error {
	kw := tr.advance().Lexeme
	if _, err := tr.expect(token.LeftParen, "'('", kw); err != nil {
		return err
	}
	nameTok, err := tr.expect(token.Identifier, "identifier", kw)
	if err != nil {
		return err
	}
	name, err := operandName(nameTok)
	if err != nil {
		return err
	}

	if tr.peek().Kind == token.LeftBracket {
		tr.emit(ops.Named(ops.Mark, name))
		n, err := tr.indices(kw)
		if err != nil {
			return err
		}
		if n == 1 {
			tr.emit(ops.Named(ops.ArrayRead, name))
		} else {
			tr.emit(ops.Named(ops.ArrayRead2D, name))
		}
	} else {
		tr.emit(ops.Named(ops.Read, name))
	}

	if _, err := tr.expect(token.RightParen, "')'", kw); err != nil {
		return err
	}
	tr.skip(token.Semicolon)
	return nil
}

func (tr *translator) writeStatement() error {
	kw := tr.advance().Lexeme
	if _, err := tr.expect(token.LeftParen, "'('", kw); err != nil {
		return err
	}
	if err := tr.expression(kw); err != nil {
		return err
	}
	tr.emit(ops.Op(ops.Write))
	if _, err := tr.expect(token.RightParen, "')'", kw); err != nil {
		return err
	}
	tr.skip(token.Semicolon)
	return nil
}

var binaryOps = map[string]struct {
	code     ops.Code
	priority int
}{
	">":  {ops.Greater, 1},
	"<":  {ops.Less, 1},
	"==": {ops.Equal, 1},
	"+":  {ops.Add, 2},
	"-":  {ops.Sub, 2},
	"*":  {ops.Mul, 3},
	"/":  {ops.Div, 3},
	"%":  {ops.Mod, 3},
}

// expression translates an infix expression. It stops before any token that
// cannot continue it, including an unmatched ')', without consuming it.
func (tr *translator) expression(construct string) error {
	var stack []pending

	wantOperand := true
	last, stalls := tr.pos, 0
	for {
		if tr.pos != last {
			last, stalls = tr.pos, 0
		} else if stalls++; stalls > maxStalls {
			return &InternalError{Pos: tr.pos, Construct: construct}
		}

		tok := tr.peek()

		if wantOperand {
			switch {
			case tok.Kind == token.LeftParen:
				tr.advance()
				stack = append(stack, pending{})
				continue
			case tok.Is(token.Operator, "-") && tr.peekAt(1).Kind == token.Number:
				tr.advance()
				in, err := tr.literal(tr.advance(), true)
				if err != nil {
					return err
				}
				tr.emit(in)
			case tok.Kind == token.Number, tok.Kind == token.Char:
				in, err := tr.literal(tr.advance(), false)
				if err != nil {
					return err
				}
				tr.emit(in)
			case tok.Kind == token.Identifier:
				if err := tr.operand(); err != nil {
					return err
				}
			default:
				return tr.unexpected("operand", construct)
			}
			wantOperand = false
			continue
		}

		if tok.Kind == token.Operator {
			if bin, isBin := binaryOps[tok.Lexeme]; isBin {
				tr.advance()
				for i := len(stack) - 1; i >= 0 && stack[i].priority >= bin.priority; i-- {
					tr.emit(ops.Op(stack[i].code))
					stack = stack[:i]
				}
				stack = append(stack, pending{bin.code, bin.priority})
				wantOperand = true
				continue
			}
		}

		if tok.Kind == token.RightParen && hasOpen(stack) {
			tr.advance()
			for i := len(stack) - 1; i >= 0; i-- {
				top := stack[i]
				stack = stack[:i]
				if top.priority == 0 {
					break
				}
				tr.emit(ops.Op(top.code))
			}
			continue
		}

		break
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].priority == 0 {
			return tr.unexpected("')'", construct)
		}
		tr.emit(ops.Op(stack[i].code))
	}
	return nil
}

// pending is an operator awaiting its right operand, or an open parenthesis
// when priority is 0.
type pending struct {
	code     ops.Code
	priority int
}

func hasOpen(stack []pending) bool {
	for _, p := range stack {
		if p.priority == 0 {
			return true
		}
	}
	return false
}

// operandName returns the scalar or array name carried by an identifier,
// rejecting instruction words and any other word that no instruction could
// carry.
func operandName(tok token.Token) (string, error) {
	if !ops.IsName(tok.Lexeme) {
		return "", &SyntaxError{Tok: tok, Want: "identifier other than an instruction word"}
	}
	return tok.Lexeme, nil
}

// operand translates a scalar load or an array element read.
func (tr *translator) operand() error {
	name, err := operandName(tr.advance())
	if err != nil {
		return err
	}
	if tr.peek().Kind != token.LeftBracket {
		tr.emit(ops.Named(ops.Load, name))
		return nil
	}
	tr.emit(ops.Named(ops.Mark, name))
	n, err := tr.indices("array access")
	if err != nil {
		return err
	}
	if n == 1 {
		tr.emit(ops.Named(ops.ArrayGet, name))
	} else {
		tr.emit(ops.Named(ops.ArrayGet2D, name))
	}
	return nil
}

func (tr *translator) literal(tok token.Token, negate bool) (ops.Instr, error) {
	if tok.Kind == token.Char {
		r, err := runeio.UnquoteRune(tok.Lexeme)
		if err != nil {
			return ops.Instr{}, &SyntaxError{Tok: tok, Want: "character literal"}
		}
		return ops.Lit(mem.Int(int64(r))), nil
	}
	lexeme := tok.Lexeme
	if negate {
		lexeme = "-" + lexeme
	}
	if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
		return ops.Lit(mem.Int(i)), nil
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return ops.Instr{}, &SyntaxError{Tok: tok, Want: "number in range"}
	}
	return ops.Lit(mem.Float(f)), nil
}
