package main

import (
	"context"
	"errors"
	"io"

	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/ops"
	"github.com/jcorbin/opstack/internal/panicerr"
)

// New creates a VM with the given options applied over the defaults: no
// input, discarded output, and no memory limit.
func New(opts ...VMOption) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	VMOptions(opts...).apply(&vm)
	return &vm
}

// Load checks prog, resolves its labels, and makes it the VM's program;
// the program counter and operand stack are cleared but the store is kept.
func (vm *VM) Load(prog ops.Program) error {
	if err := vm.load(prog); err != nil {
		return err
	}
	vm.pc, vm.at = 0, 0
	vm.stack = vm.stack[:0]
	return nil
}

func (vm *VM) load(prog ops.Program) error {
	if i, err := prog.Check(); err != nil {
		return &ExecError{PC: i, Instr: prog[i], Err: err}
	}
	labels, err := ops.ResolveLabels(prog)
	if err != nil {
		var dup ops.DuplicateLabelError
		if errors.As(err, &dup) {
			return &ExecError{PC: dup.Second, Instr: prog[dup.Second], Err: err}
		}
		return err
	}
	vm.logf("load", "%v instructions, %v labels", len(prog), len(labels))
	vm.prog, vm.labels = prog, labels
	return nil
}

// Run executes the loaded program from its current program counter until it
// runs off the end, returning any fatal error. Errors raised by
// instructions are *ExecError values.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	var halt haltError
	if errors.As(err, &halt) {
		err = halt.error
	}
	return err
}

// Reset discards all execution state: the program counter, operand stack,
// and every scalar and array binding. The loaded program is kept.
func (vm *VM) Reset() {
	vm.execution = execution{}
	vm.store.Limit = vm.memLimit
}

// Scalar returns the value bound to name; unbound names read as integer 0.
func (vm *VM) Scalar(name string) mem.Value { return vm.store.Load(name) }

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []mem.Value {
	stack := make([]mem.Value, len(vm.stack))
	copy(stack, vm.stack)
	return stack
}

// Program returns the loaded program.
func (vm *VM) Program() ops.Program { return vm.prog }

func WithInput(r io.Reader) VMOption        { return withInput(r) }
func WithOutput(w io.Writer) VMOption       { return withOutput(w) }
func WithTee(w io.Writer) VMOption          { return withTee(w) }
func WithMemLimit(cells uint) VMOption      { return withMemLimit(cells) }
func WithProgram(prog ops.Program) VMOption { return withProgram(prog) }

func WithInputs(rs ...io.Reader) VMOption {
	opts := make([]VMOption, len(rs))
	for i, r := range rs {
		opts[i] = withInput(r)
	}
	return VMOptions(opts...)
}

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
