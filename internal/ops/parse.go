package ops

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/opstack/internal/fileinput"
	"github.com/jcorbin/opstack/internal/mem"
)

// WordError locates a word-stream loading failure.
type WordError struct {
	Index int
	Word  string
	Err   error
}

func (we WordError) Error() string {
	return fmt.Sprintf("word %v %q: %v", we.Index, we.Word, we.Err)
}

func (we WordError) Unwrap() error { return we.Err }

var (
	errMissingOperand = errors.New("missing operand")
	errNotSize        = errors.New("array size must be an integer literal")
)

// Parse reads whitespace separated instruction words from r and loads them
// with ParseWords.
func Parse(r io.Reader) (Program, error) {
	in := fileinput.Input{Queue: []io.Reader{r}}
	var words []string
	for {
		word, _, err := in.ScanWord()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return ParseWords(words)
}

// ParseString loads the instruction words in s.
func ParseString(s string) (Program, error) {
	return ParseWords(strings.Fields(s))
}

// ParseWords loads a textual postfix word stream into tagged instructions.
//
// Each opcode word claims the name, type, and size words that precede it:
// the fixed number that its textual form carries, or for array accesses the
// word preceding its index and value operands. Any other word is a numeric
// literal, a label definition ending in ':', or a scalar load.
//
// The opcode words "r", "w", "j", and "jf" may also name scalars. Each is
// read as an opcode where that leaves a stream whose operand stack never
// underflows, and as a scalar load otherwise. Streams that underflow under
// every reading load with those words read as opcodes wherever they can be.
func ParseWords(words []string) (Program, error) {
	ld := loader{words: words, strict: true, steps: maxLoadSteps + 4*len(words)}
	if err := ld.loadFrom(0); err == nil {
		return ld.prog, nil
	}
	ld = loader{words: words}
	if err := ld.loadFrom(0); err != nil {
		return nil, err
	}
	return ld.prog, nil
}

// maxLoadSteps bounds how many words a strict load may revisit while
// choosing between opcode and name readings.
const maxLoadSteps = 1 << 12

var (
	errUnderflow    = errors.New("operand stack underflow")
	errTooAmbiguous = errors.New("too many ambiguous words")
)

type loader struct {
	words  []string
	strict bool
	steps  int

	prog  Program
	depth int
	word  string
}

func (ld *loader) loadFrom(i int) error {
	for ; i < len(ld.words); i++ {
		if ld.strict {
			if ld.steps--; ld.steps < 0 {
				return errTooAmbiguous
			}
		}
		word := ld.words[i]
		ld.word = word
		code, isOp := wordCodes[word]
		if !isOp {
			if err := ld.operand(word); err != nil {
				return WordError{Index: i, Word: word, Err: err}
			}
			continue
		}
		if !nameWords[word] {
			if err := ld.opcode(code); err != nil {
				return WordError{Index: i, Word: word, Err: err}
			}
			continue
		}

		prog, depth := append(Program(nil), ld.prog...), ld.depth
		if err := ld.opcode(code); err == nil {
			if !ld.strict {
				continue
			}
			if err := ld.loadFrom(i + 1); err == nil || errors.Is(err, errTooAmbiguous) {
				return err
			}
		}
		ld.prog, ld.depth = prog, depth
		ld.word = word
		ld.emit(Named(Load, word))
	}
	return nil
}

// operand loads a word that is not an opcode.
func (ld *loader) operand(word string) error {
	if isNumeric(word) {
		val, err := mem.ParseValue(word)
		if err != nil {
			return err
		}
		return ld.emit(Lit(val))
	}
	if name := strings.TrimSuffix(word, ":"); name != word {
		if !IsName(name) {
			return operandError{Label, "name", name}
		}
		return ld.emit(Named(Label, name))
	}
	if !IsName(word) {
		return operandError{Load, "name", word}
	}
	return ld.emit(Named(Load, word))
}

// emit appends in, tracking the operand stack depth; strict loads fail on
// underflow.
func (ld *loader) emit(in Instr) error {
	pops, pushes := in.Code.Effect()
	if ld.strict && ld.depth < pops {
		return errUnderflow
	}
	ld.depth += pushes - pops
	ld.prog = append(ld.prog, in)
	return nil
}

func (ld *loader) opcode(code Code) error {
	switch code {
	case Assign, Jump, JumpFalse:
		name, err := ld.claimName()
		if err != nil {
			return err
		}
		return ld.emit(Named(code, name))

	case Read:
		if ld.legacyIndexedRead() {
			return nil
		}
		name, err := ld.claimName()
		if err != nil {
			return err
		}
		return ld.emit(Named(Read, name))

	case Declare, DeclareAssign:
		name, err := ld.claimName()
		if err != nil {
			return err
		}
		typ, err := ld.claimName()
		if err != nil {
			return err
		}
		return ld.emit(Typed(code, typ, name))

	case Alloc, Alloc2D:
		var dims [2]int
		n := 1
		if code == Alloc2D {
			n = 2
		}
		for i := n - 1; i >= 0; i-- {
			size, err := ld.claimSize()
			if err != nil {
				return err
			}
			dims[i] = size
		}
		name, err := ld.claimName()
		if err != nil {
			return err
		}
		typ, err := ld.claimName()
		if err != nil {
			return err
		}
		return ld.emit(Sized(typ, name, dims[:n]...))

	case ArrayGet, ArraySet, ArrayRead, ArrayGet2D, ArraySet2D, ArrayRead2D:
		pops, _ := code.Effect()
		at, err := ld.operandExtent(pops)
		if err != nil {
			return err
		}
		name := ld.prog[at].Name
		ld.prog[at] = Named(Mark, name)
		ld.depth--
		return ld.emit(Named(code, name))
	}
	return ld.emit(Op(code))
}

// claimName removes the trailing provisional Load, returning its name.
func (ld *loader) claimName() (string, error) {
	i := len(ld.prog) - 1
	if i < 0 {
		return "", errMissingOperand
	}
	if in := ld.prog[i]; in.Code == Load {
		ld.prog = ld.prog[:i]
		ld.depth--
		return in.Name, nil
	}
	return "", operandError{wordCodes[ld.word], "name", ld.prog[i].String()}
}

// claimSize removes the trailing integer Push, returning its value.
func (ld *loader) claimSize() (int, error) {
	i := len(ld.prog) - 1
	if i < 0 {
		return 0, errMissingOperand
	}
	if in := ld.prog[i]; in.Code == Push && !in.Value.IsFloat() {
		ld.prog = ld.prog[:i]
		ld.depth--
		return int(in.Value.I), nil
	}
	return 0, fmt.Errorf("%w: %v", errNotSize, ld.prog[i])
}

// operandExtent walks back over the expression instructions that produce the
// trailing n operand values, returning the index of the Load that names the
// array accessed by them.
func (ld *loader) operandExtent(n int) (int, error) {
	need := n
	i := len(ld.prog) - 1
	for ; i >= 0; i-- {
		in := ld.prog[i]
		if need == 0 && in.Code != Mark {
			break
		}
		switch {
		case in.Code == Push, in.Code == Load, in.Code == Mark,
			in.Code.IsBinary(), in.Code == ArrayGet, in.Code == ArrayGet2D:
		default:
			return 0, fmt.Errorf("%w: %v within operands", errMissingOperand, in)
		}
		pops, pushes := in.Code.Effect()
		need += pops - pushes
	}
	if need != 0 || i < 0 {
		return 0, errMissingOperand
	}
	if ld.prog[i].Code != Load {
		return 0, operandError{wordCodes[ld.word], "array name", ld.prog[i].String()}
	}
	return i, nil
}

// legacyIndexedRead loads the older "M a i r" form, reading into M[a], as an
// ArrayRead.
func (ld *loader) legacyIndexedRead() bool {
	n := len(ld.prog)
	if n < 3 {
		return false
	}
	arr, idx, marker := ld.prog[n-3], ld.prog[n-2], ld.prog[n-1]
	if marker.Code != Load || marker.Name != "i" || arr.Code != Load {
		return false
	}
	if idx.Code != Load && idx.Code != Push {
		return false
	}
	ld.prog = append(ld.prog[:n-3], Named(Mark, arr.Name), idx)
	ld.depth -= 2
	return ld.emit(Named(ArrayRead, arr.Name)) == nil
}

// isNumeric returns true if word begins like a number, so that names such as
// "inf" are never read as one.
func isNumeric(word string) bool {
	s := strings.TrimLeft(word, "+-")
	if len(s) == 0 || len(word)-len(s) > 1 {
		return false
	}
	if s[0] == '.' {
		s = s[1:]
	}
	return len(s) > 0 && '0' <= s[0] && s[0] <= '9'
}
