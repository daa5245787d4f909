package main

import (
	"errors"
	"fmt"

	"github.com/jcorbin/opstack/internal/ops"
)

var (
	errStackUnderflow = errors.New("stack underflow")
	errDivisionByZero = errors.New("division by zero")
	errUndefinedLabel = errors.New("undefined label")
	errInputEnd       = errors.New("input exhausted")
	errInvalidInput   = errors.New("invalid input")
)

// ExecError is the fatal error that halted execution of a program; it
// unwraps to the underlying cause.
type ExecError struct {
	PC    int
	Instr ops.Instr
	Err   error
}

func (ee *ExecError) Error() string {
	return fmt.Sprintf("@%v %v: %v", ee.PC, ee.Instr, ee.Err)
}

func (ee *ExecError) Unwrap() error { return ee.Err }
