// Package ops defines the tagged postfix instruction set shared by the
// translator and the VM, its textual word form, and label resolution.
package ops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/opstack/internal/mem"
)

// Code identifies an instruction's operation.
type Code uint8

// Instruction codes.
const (
	Push Code = iota // <value>                 push a literal
	Load             // <name>                  push a scalar's value
	Mark             // <name>                  name the array of the following array op; no effect

	Add     // +
	Sub     // -
	Mul     // *
	Div     // /
	Mod     // %
	Greater // >
	Less    // <
	Equal   // ==

	Assign        // <name> :=                     pop and bind a scalar
	Declare       // <type> <name> declare         coerce a scalar binding to type
	DeclareAssign // <type> <name> declare_assign  pop, coerce to type, and bind

	Alloc   // <type> <name> <n> alloc_array             allocate a vector
	Alloc2D // <type> <name> <r> <c> alloc_array_2d      allocate a matrix

	ArrayGet    // array_get        pop index, push cell
	ArraySet    // array_set        pop value and index, store cell
	ArrayRead   // array_read       pop index, read input into cell
	ArrayGet2D  // array_get_2d     pop 2 indices, push cell
	ArraySet2D  // array_set_2d     pop value and 2 indices, store cell
	ArrayRead2D // array_read_2d    pop 2 indices, read input into cell

	Read  // <name> r    read input into a scalar
	Write // w           pop and write

	Jump      // <label> j     jump
	JumpFalse // <label> jf    pop, jump if zero
	Label     // <label>:      jump target; no effect

	NumCodes
)

var codeNames = [NumCodes]string{
	"push", "load", "mark",
	"add", "sub", "mul", "div", "mod", "greater", "less", "equal",
	"assign", "declare", "declare_assign",
	"alloc_array", "alloc_array_2d",
	"array_get", "array_set", "array_read",
	"array_get_2d", "array_set_2d", "array_read_2d",
	"read", "write",
	"jump", "jump_false", "label",
}

// codeWords holds each code's opcode word, empty for codes rendered only by
// their operand.
var codeWords = [NumCodes]string{
	"", "", "",
	"+", "-", "*", "/", "%", ">", "<", "==",
	":=", "declare", "declare_assign",
	"alloc_array", "alloc_array_2d",
	"array_get", "array_set", "array_read",
	"array_get_2d", "array_set_2d", "array_read_2d",
	"r", "w",
	"j", "jf", "",
}

var codeEffects = [NumCodes][2]int8{
	Push: {0, 1}, Load: {0, 1},
	Add: {2, 1}, Sub: {2, 1}, Mul: {2, 1}, Div: {2, 1}, Mod: {2, 1},
	Greater: {2, 1}, Less: {2, 1}, Equal: {2, 1},
	Assign: {1, 0}, DeclareAssign: {1, 0},
	ArrayGet: {1, 1}, ArraySet: {2, 0}, ArrayRead: {1, 0},
	ArrayGet2D: {2, 1}, ArraySet2D: {3, 0}, ArrayRead2D: {2, 0},
	Write: {1, 0}, JumpFalse: {1, 0},
}

var wordCodes = make(map[string]Code, NumCodes)

// nameWords are the opcode words that may also name a scalar; the word
// loader reads each as whichever of the two the surrounding words admit.
var nameWords = map[string]bool{"r": true, "w": true, "j": true, "jf": true}

func init() {
	for code, word := range codeWords {
		if word != "" {
			wordCodes[word] = Code(code)
		}
	}
}

func (code Code) String() string {
	if code < NumCodes {
		return codeNames[code]
	}
	return fmt.Sprintf("Code(%d)", uint8(code))
}

// Word returns the opcode word that ends code's textual form, if any.
func (code Code) Word() string {
	if code < NumCodes {
		return codeWords[code]
	}
	return ""
}

// Effect returns how many values code pops from, then pushes onto, the
// operand stack.
func (code Code) Effect() (pops, pushes int) {
	if code < NumCodes {
		eff := codeEffects[code]
		return int(eff[0]), int(eff[1])
	}
	return 0, 0
}

// IsBinary returns true for the arithmetic and comparison codes.
func (code Code) IsBinary() bool { return code >= Add && code <= Equal }

// IsArray returns true for the indexed array access codes, whose array name
// is carried by a preceding Mark.
func (code Code) IsArray() bool { return code >= ArrayGet && code <= ArrayRead2D }

// Indices returns how many index operands an array access code takes.
func (code Code) Indices() int {
	switch code {
	case ArrayGet, ArraySet, ArrayRead:
		return 1
	case ArrayGet2D, ArraySet2D, ArrayRead2D:
		return 2
	}
	return 0
}

// Instr is a single tagged instruction; which fields are meaningful depends
// on Code.
type Instr struct {
	Code  Code
	Name  string    // scalar, array, or label name
	Type  string    // declared type
	Value mem.Value // Push literal
	Dims  [2]int    // Alloc size, Alloc2D rows and columns
}

// Lit returns a Push instruction.
func Lit(val mem.Value) Instr { return Instr{Code: Push, Value: val} }

// Op returns an instruction that has no operand fields.
func Op(code Code) Instr { return Instr{Code: code} }

// Named returns an instruction with a Name operand.
func Named(code Code, name string) Instr { return Instr{Code: code, Name: name} }

// Typed returns a Declare or DeclareAssign instruction.
func Typed(code Code, typ, name string) Instr { return Instr{Code: code, Type: typ, Name: name} }

// Sized returns an Alloc instruction for one dimension, or Alloc2D for two.
func Sized(typ, name string, dims ...int) Instr {
	in := Instr{Code: Alloc, Type: typ, Name: name}
	if len(dims) > 1 {
		in.Code = Alloc2D
	}
	copy(in.Dims[:], dims)
	return in
}

// AppendWords appends in's textual instruction words to words.
func (in Instr) AppendWords(words []string) []string {
	switch in.Code {
	case Push:
		return append(words, in.Value.Literal())
	case Load, Mark:
		return append(words, in.Name)
	case Label:
		return append(words, in.Name+":")
	case Assign, Read, Jump, JumpFalse:
		return append(words, in.Name, in.Code.Word())
	case Declare, DeclareAssign:
		return append(words, in.Type, in.Name, in.Code.Word())
	case Alloc:
		return append(words, in.Type, in.Name, strconv.Itoa(in.Dims[0]), in.Code.Word())
	case Alloc2D:
		return append(words, in.Type, in.Name,
			strconv.Itoa(in.Dims[0]), strconv.Itoa(in.Dims[1]), in.Code.Word())
	}
	if word := in.Code.Word(); word != "" {
		return append(words, word)
	}
	return append(words, in.Code.String())
}

func (in Instr) String() string {
	return strings.Join(in.AppendWords(nil), " ")
}

// Check returns an error wrapping ErrInvalidOperand if in's operand fields
// do not fit its code.
func (in Instr) Check() error {
	switch in.Code {
	case Push, Write, Add, Sub, Mul, Div, Mod, Greater, Less, Equal,
		ArrayGet, ArraySet, ArrayRead, ArrayGet2D, ArraySet2D, ArrayRead2D:
		if in.Code.IsArray() && !IsName(in.Name) {
			return operandError{in.Code, "array name", in.Name}
		}
		return nil
	case Declare, DeclareAssign, Alloc, Alloc2D:
		if !IsName(in.Type) {
			return operandError{in.Code, "type", in.Type}
		}
	case Load, Mark, Assign, Read, Jump, JumpFalse, Label:
	default:
		return fmt.Errorf("%w: unknown code %v", ErrInvalidOperand, in.Code)
	}
	if !IsName(in.Name) {
		return operandError{in.Code, "name", in.Name}
	}
	return nil
}

type operandError struct {
	code Code
	what string
	word string
}

func (oe operandError) Error() string {
	return fmt.Sprintf("%v: invalid %v %q for %v", ErrInvalidOperand, oe.what, oe.word, oe.code)
}

func (oe operandError) Unwrap() error { return ErrInvalidOperand }

// IsReserved returns true if word is an identifier shaped opcode word that
// cannot name a scalar, array, or label.
func IsReserved(word string) bool {
	_, isOp := wordCodes[word]
	return isOp && !nameWords[word] && isIdent(word)
}

// IsName returns true if word has identifier shape: a letter or underscore,
// followed by letters, digits, or underscores. Reserved opcode words are not
// names.
func IsName(word string) bool {
	return isIdent(word) && !IsReserved(word)
}

func isIdent(word string) bool {
	if word == "" {
		return false
	}
	for i, r := range word {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
