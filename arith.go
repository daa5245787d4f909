package main

import (
	"fmt"
	"math"

	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/ops"
)

// arith applies a binary code to a and b; if either is a float, both are
// widened and the operation is done in floating point.
func arith(code ops.Code, a, b mem.Value) (mem.Value, error) {
	if a.IsFloat() || b.IsFloat() {
		return arithFloat(code, a.Float(), b.Float())
	}
	return arithInt(code, a.I, b.I)
}

func arithInt(code ops.Code, a, b int64) (mem.Value, error) {
	switch code {
	case ops.Add:
		return mem.Int(a + b), nil
	case ops.Sub:
		return mem.Int(a - b), nil
	case ops.Mul:
		return mem.Int(a * b), nil
	case ops.Div:
		if b == 0 {
			return mem.Value{}, errDivisionByZero
		}
		return mem.Int(a / b), nil
	case ops.Mod:
		if b == 0 {
			return mem.Value{}, errDivisionByZero
		}
		return mem.Int(a % b), nil
	case ops.Greater:
		return mem.Bool(a > b), nil
	case ops.Less:
		return mem.Bool(a < b), nil
	case ops.Equal:
		return mem.Bool(a == b), nil
	}
	return mem.Value{}, fmt.Errorf("%v is not a binary operation", code)
}

func arithFloat(code ops.Code, a, b float64) (mem.Value, error) {
	switch code {
	case ops.Add:
		return mem.Float(a + b), nil
	case ops.Sub:
		return mem.Float(a - b), nil
	case ops.Mul:
		return mem.Float(a * b), nil
	case ops.Div:
		if b == 0 {
			return mem.Value{}, errDivisionByZero
		}
		return mem.Float(a / b), nil
	case ops.Mod:
		if b == 0 {
			return mem.Value{}, errDivisionByZero
		}
		return mem.Float(math.Mod(a, b)), nil
	case ops.Greater:
		return mem.Bool(a > b), nil
	case ops.Less:
		return mem.Bool(a < b), nil
	case ops.Equal:
		return mem.Bool(a == b), nil
	}
	return mem.Value{}, fmt.Errorf("%v is not a binary operation", code)
}
