package main

import (
	"context"
	"fmt"

	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/ops"
)

// VM executes a loaded program against an operand stack and a store of
// scalar and array bindings.
type VM struct {
	ioCore
	logging

	// The loaded program and its label table; neither is mutated while
	// running.
	prog   ops.Program
	labels ops.Labels

	// All mutable state of a run; Reset replaces it wholesale.
	execution

	memLimit uint
}

type execution struct {
	pc    int // next instruction
	at    int // instruction being executed
	stack []mem.Value
	store mem.Store
}

func (vm *VM) run(ctx context.Context) error {
	if vm.labels == nil {
		vm.haltif(vm.load(vm.prog))
	}

	if vm.logfn != nil {
		defer vm.withLogPrefix("	")()
	}

	for vm.pc < len(vm.prog) {
		vm.step()
		vm.haltif(ctx.Err())
	}
	return vm.out.Flush()
}

func (vm *VM) step() {
	vm.at = vm.pc
	in := vm.prog[vm.at]
	vm.logf("exec", "@%v %v -- s:%v", vm.at, in, vm.stack)
	if pops, _ := in.Code.Effect(); len(vm.stack) < pops {
		vm.fail(errStackUnderflow)
	}
	vm.pc++
	if in.Code < ops.NumCodes {
		vmCodeTable[in.Code](vm, in)
	} else {
		vm.fail(fmt.Errorf("%w: unknown code %v", ops.ErrInvalidOperand, in.Code))
	}
}

// args returns the top n operand stack values, deepest first; the result
// aliases the stack, so handlers drop only once they can no longer fail.
func (vm *VM) args(n int) []mem.Value {
	return vm.stack[len(vm.stack)-n:]
}

func (vm *VM) drop(n int) {
	vm.stack = vm.stack[:len(vm.stack)-n]
}

func (vm *VM) push(val mem.Value) {
	vm.stack = append(vm.stack, val)
}

func (vm *VM) pop() (val mem.Value) {
	i := len(vm.stack) - 1
	val, vm.stack = vm.stack[i], vm.stack[:i]
	return val
}

func (vm *VM) jump(label string) {
	target, defined := vm.labels[label]
	if !defined {
		vm.fail(fmt.Errorf("%w %v", errUndefinedLabel, label))
	}
	vm.pc = target
}

func (vm *VM) read() mem.Value {
	val, err := vm.readValue()
	if err != nil {
		vm.fail(err)
	}
	vm.logf("read", "%v", val)
	return val
}

var vmCodeTable [ops.NumCodes]func(vm *VM, in ops.Instr)

func init() {
	vmCodeTable = [...]func(vm *VM, in ops.Instr){
		ops.Push: (*VM).pushValue,
		ops.Load: (*VM).loadScalar,
		ops.Mark: (*VM).nop,

		ops.Add:     (*VM).binary,
		ops.Sub:     (*VM).binary,
		ops.Mul:     (*VM).binary,
		ops.Div:     (*VM).binary,
		ops.Mod:     (*VM).binary,
		ops.Greater: (*VM).binary,
		ops.Less:    (*VM).binary,
		ops.Equal:   (*VM).binary,

		ops.Assign:        (*VM).assign,
		ops.Declare:       (*VM).declare,
		ops.DeclareAssign: (*VM).declareAssign,

		ops.Alloc:   (*VM).alloc,
		ops.Alloc2D: (*VM).alloc2D,

		ops.ArrayGet:    (*VM).arrayGet,
		ops.ArraySet:    (*VM).arraySet,
		ops.ArrayRead:   (*VM).arrayRead,
		ops.ArrayGet2D:  (*VM).arrayGet2D,
		ops.ArraySet2D:  (*VM).arraySet2D,
		ops.ArrayRead2D: (*VM).arrayRead2D,

		ops.Read:  (*VM).readScalar,
		ops.Write: (*VM).write,

		ops.Jump:      (*VM).jumpAlways,
		ops.JumpFalse: (*VM).jumpFalse,
		ops.Label:     (*VM).nop,
	}
}

//// Values and scalars

func (vm *VM) nop(in ops.Instr)        {}
func (vm *VM) pushValue(in ops.Instr)  { vm.push(in.Value) }
func (vm *VM) loadScalar(in ops.Instr) { vm.push(vm.store.Load(in.Name)) }

func (vm *VM) binary(in ops.Instr) {
	ab := vm.args(2)
	val, err := arith(in.Code, ab[0], ab[1])
	if err != nil {
		vm.fail(err)
	}
	vm.drop(2)
	vm.push(val)
}

func (vm *VM) assign(in ops.Instr) {
	vm.store.Bind(in.Name, vm.pop())
}

func (vm *VM) declare(in ops.Instr) {
	vm.store.Bind(in.Name, vm.store.Load(in.Name).As(in.Type))
}

func (vm *VM) declareAssign(in ops.Instr) {
	vm.store.Bind(in.Name, vm.pop().As(in.Type))
}

//// Arrays

func (vm *VM) alloc(in ops.Instr) {
	if err := vm.store.Alloc(in.Name, in.Dims[0], mem.Zero(in.Type)); err != nil {
		vm.fail(err)
	}
}

func (vm *VM) alloc2D(in ops.Instr) {
	if err := vm.store.Alloc2D(in.Name, in.Dims[0], in.Dims[1], mem.Zero(in.Type)); err != nil {
		vm.fail(err)
	}
}

func (vm *VM) arrayGet(in ops.Instr) {
	args := vm.args(1)
	val, err := vm.store.Get(in.Name, args[0].Int())
	if err != nil {
		vm.fail(err)
	}
	args[0] = val
}

func (vm *VM) arraySet(in ops.Instr) {
	args := vm.args(2)
	if err := vm.store.Set(in.Name, args[0].Int(), args[1]); err != nil {
		vm.fail(err)
	}
	vm.drop(2)
}

func (vm *VM) arrayRead(in ops.Instr) {
	args := vm.args(1)
	i := args[0].Int()
	if err := vm.store.Check(in.Name, i); err != nil {
		vm.fail(err)
	}
	vm.haltif(vm.store.Set(in.Name, i, vm.read()))
	vm.drop(1)
}

func (vm *VM) arrayGet2D(in ops.Instr) {
	args := vm.args(2)
	val, err := vm.store.Get2D(in.Name, args[0].Int(), args[1].Int())
	if err != nil {
		vm.fail(err)
	}
	vm.drop(2)
	vm.push(val)
}

func (vm *VM) arraySet2D(in ops.Instr) {
	args := vm.args(3)
	if err := vm.store.Set2D(in.Name, args[0].Int(), args[1].Int(), args[2]); err != nil {
		vm.fail(err)
	}
	vm.drop(3)
}

func (vm *VM) arrayRead2D(in ops.Instr) {
	args := vm.args(2)
	i, j := args[0].Int(), args[1].Int()
	if err := vm.store.Check2D(in.Name, i, j); err != nil {
		vm.fail(err)
	}
	vm.haltif(vm.store.Set2D(in.Name, i, j, vm.read()))
	vm.drop(2)
}

//// Input and output

func (vm *VM) readScalar(in ops.Instr) {
	vm.store.Bind(in.Name, vm.read())
}

func (vm *VM) write(in ops.Instr) {
	if err := vm.writeValue(vm.args(1)[0]); err != nil {
		vm.fail(err)
	}
	vm.drop(1)
}

//// Control flow

func (vm *VM) jumpAlways(in ops.Instr) {
	vm.jump(in.Name)
}

func (vm *VM) jumpFalse(in ops.Instr) {
	if vm.args(1)[0].IsZero() {
		vm.jump(in.Name)
	}
	vm.drop(1)
}
