package main

import (
	"io"

	"github.com/jcorbin/opstack/internal/ops"
)

// VMOption configures a VM, see New.
type VMOption interface{ apply(vm *VM) }

// VMOptions combines any number of options into one; nil options are
// ignored.
func VMOptions(opts ...VMOption) VMOption {
	var res vmOptions
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case vmOptions:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type vmOptions []VMOption

func (opts vmOptions) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

var defaultOptions = VMOptions(
	withOutput(io.Discard),
)

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type memLimitOption uint
type programOption ops.Program

func withInput(r io.Reader) inputOption          { return inputOption{r} }
func withOutput(w io.Writer) outputOption        { return outputOption{w} }
func withTee(w io.Writer) teeOption              { return teeOption{w} }
func withMemLimit(limit uint) memLimitOption     { return memLimitOption(limit) }
func withProgram(prog ops.Program) programOption { return programOption(prog) }

func (i inputOption) apply(vm *VM) {
	vm.in.Queue = append(vm.in.Queue, i.Reader)
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = newWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = multiWriteFlusher(vm.out, newWriteFlusher(o.Writer))
}

func (lim memLimitOption) apply(vm *VM) {
	vm.memLimit = uint(lim)
	vm.store.Limit = uint(lim)
}

func (prog programOption) apply(vm *VM) {
	vm.prog = ops.Program(prog)
	vm.labels = nil
}
