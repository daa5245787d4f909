package token_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jcorbin/opstack/internal/token"
)

func kindsOf(toks []token.Token) []token.Kind {
	kinds := make([]token.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func lexemesOf(toks []token.Token) []string {
	lexemes := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != token.EOF {
			lexemes = append(lexemes, tok.Lexeme)
		}
	}
	return lexemes
}

var _ = Describe("Lexer", func() {
	Context("declarations", func() {
		It("should classify keywords, identifiers and numbers", func() {
			toks, err := token.ScanString("int x = 2 + 3 * 4;")
			Expect(err).NotTo(HaveOccurred())
			Expect(kindsOf(toks)).To(Equal([]token.Kind{
				token.Keyword, token.Identifier, token.Operator,
				token.Number, token.Operator, token.Number, token.Operator, token.Number,
				token.Semicolon, token.EOF,
			}))
			Expect(lexemesOf(toks)).To(Equal([]string{"int", "x", "=", "2", "+", "3", "*", "4", ";"}))
		})

		It("should track 1-based positions", func() {
			toks, err := token.ScanString("int x;\n  x = 1.5;")
			Expect(err).NotTo(HaveOccurred())
			Expect(toks[0]).To(Equal(token.Token{Kind: token.Keyword, Lexeme: "int", Line: 1, Column: 1}))
			Expect(toks[1].Pos()).To(Equal("1:5"))
			Expect(toks[3]).To(Equal(token.Token{Kind: token.Identifier, Lexeme: "x", Line: 2, Column: 3}))
			Expect(toks[5]).To(Equal(token.Token{Kind: token.Number, Lexeme: "1.5", Line: 2, Column: 7}))
		})

		It("should scan array brackets", func() {
			toks, err := token.ScanString("float M[2][3];")
			Expect(err).NotTo(HaveOccurred())
			Expect(kindsOf(toks)).To(Equal([]token.Kind{
				token.Keyword, token.Identifier,
				token.LeftBracket, token.Number, token.RightBracket,
				token.LeftBracket, token.Number, token.RightBracket,
				token.Semicolon, token.EOF,
			}))
		})
	})

	Context("operators", func() {
		It("should combine two character operators", func() {
			toks, err := token.ScanString("a==b<=c>=d!=e&&f||g<h>i=j%k")
			Expect(err).NotTo(HaveOccurred())
			var ops []string
			for _, tok := range toks {
				if tok.Kind == token.Operator {
					ops = append(ops, tok.Lexeme)
				}
			}
			Expect(ops).To(Equal([]string{"==", "<=", ">=", "!=", "&&", "||", "<", ">", "=", "%"}))
		})

		It("should reject a lone bang", func() {
			_, err := token.ScanString("x = !y;")
			Expect(err).To(MatchError("<string>:1:5: unexpected '!' without '='"))
		})
	})

	Context("literals", func() {
		It("should scan chars and strings", func() {
			toks, err := token.ScanString(`write('a'); write("hi");`)
			Expect(err).NotTo(HaveOccurred())
			Expect(toks[2]).To(Equal(token.Token{Kind: token.Char, Lexeme: "'a'", Line: 1, Column: 7}))
			Expect(toks[7].Kind).To(Equal(token.String))
			Expect(toks[7].Lexeme).To(Equal(`"hi"`))
		})

		It("should scan numbers as decimal", func() {
			toks, err := token.ScanString("010 08 1.5 .25 3. 2e3 1E-2 7x")
			Expect(err).NotTo(HaveOccurred())
			Expect(lexemesOf(toks)).To(Equal([]string{"010", "08", "1.5", ".25", "3.", "2e3", "1E-2", "7", "x"}))
			Expect(kindsOf(toks)[:8]).To(HaveEach(token.Number))
			Expect(toks[1]).To(Equal(token.Token{Kind: token.Number, Lexeme: "08", Line: 1, Column: 5}))
		})

		It("should reject an exponent without digits", func() {
			_, err := token.ScanString("x = 2e;")
			Expect(err).To(MatchError("<string>:1:7: exponent has no digits"))
		})

		It("should skip comments", func() {
			toks, err := token.ScanString("x = 1; // one\n/* two */ y = 2;")
			Expect(err).NotTo(HaveOccurred())
			Expect(lexemesOf(toks)).To(Equal([]string{"x", "=", "1", ";", "y", "=", "2", ";"}))
		})
	})

	Context("errors", func() {
		It("should report unexpected characters with their position", func() {
			_, err := token.Scan("prog.c", strings.NewReader("int x;\nx = 1 @ 2;"))
			Expect(err).To(HaveOccurred())
			var lexErr *token.Error
			Expect(err).To(BeAssignableToTypeOf(lexErr))
			Expect(err.Error()).To(Equal("prog.c:2:7: unexpected character '@'"))
		})

		It("should end with exactly one EOF", func() {
			toks, err := token.ScanString("")
			Expect(err).NotTo(HaveOccurred())
			Expect(kindsOf(toks)).To(Equal([]token.Kind{token.EOF}))
		})
	})
})

var _ = Describe("Token", func() {
	It("should render kind and lexeme", func() {
		Expect(token.Token{Kind: token.RightParen, Lexeme: ")"}.String()).To(Equal("RIGHT_PAREN())"))
		Expect(token.Token{Kind: token.EOF}.String()).To(Equal("EOF"))
		Expect(token.Kind(99).String()).To(Equal("Kind(99)"))
	})

	It("should know keywords and types", func() {
		Expect(token.IsKeyword("while")).To(BeTrue())
		Expect(token.IsKeyword("x")).To(BeFalse())
		Expect(token.IsType("double")).To(BeTrue())
		Expect(token.IsType("if")).To(BeFalse())
	})

	It("should match kind and lexeme", func() {
		tok := token.Token{Kind: token.Operator, Lexeme: "="}
		Expect(tok.Is(token.Operator, "=")).To(BeTrue())
		Expect(tok.Is(token.Operator, "==")).To(BeFalse())
	})
})
