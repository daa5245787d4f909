package ops

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOperand is matched by errors from instructions whose operand
// names do not have identifier shape.
var ErrInvalidOperand = errors.New("invalid operand name")

// Program is an ordered instruction stream, addressed by index.
type Program []Instr

// Words renders p as its flat sequence of textual instruction words.
func (p Program) Words() []string {
	words := make([]string, 0, 2*len(p))
	for _, in := range p {
		words = in.AppendWords(words)
	}
	return words
}

// String joins p's words with single spaces.
func (p Program) String() string { return strings.Join(p.Words(), " ") }

// Check returns the index and error of the first instruction failing
// Instr.Check, or -1 and nil.
func (p Program) Check() (int, error) {
	for i, in := range p {
		if err := in.Check(); err != nil {
			return i, err
		}
	}
	return -1, nil
}

// Labels maps label names to their instruction index.
type Labels map[string]int

// DuplicateLabelError indicates a label defined more than once.
type DuplicateLabelError struct {
	Name          string
	First, Second int
}

func (dle DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate label %v at %v, first defined at %v", dle.Name, dle.Second, dle.First)
}

// ResolveLabels makes a single forward pass over p, recording the index of
// every Label instruction.
func ResolveLabels(p Program) (Labels, error) {
	labels := make(Labels)
	for i, in := range p {
		if in.Code != Label {
			continue
		}
		if first, defined := labels[in.Name]; defined {
			return nil, DuplicateLabelError{Name: in.Name, First: first, Second: i}
		}
		labels[in.Name] = i
	}
	return labels, nil
}
