package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/opstack/internal/logio"
	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/ops"
	"github.com/jcorbin/opstack/internal/translate"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		t.Run(vmt.name, vmt.run)
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name     string
	opts     []interface{}
	expect   []func(t *testing.T, vm *VM)
	timeout  time.Duration
	wantErr  error
	wantMess string

	exclusive   bool
	nextInputID int
}

func (vmt vmTestCase) apply(wraps ...func(vmTestCase) vmTestCase) vmTestCase {
	for _, wrap := range wraps {
		vmt = wrap(vmt)
	}
	return vmt
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

func (vmt vmTestCase) withProgram(prog ...ops.Instr) vmTestCase {
	vmt.opts = append(vmt.opts, WithProgram(prog))
	return vmt
}

func (vmt vmTestCase) withSource(lines ...string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		src := strings.Join(lines, "\n")
		prog, err := translate.Source(t.Name()+"/source", strings.NewReader(src))
		require.NoError(t, err, "unexpected translation error")
		return WithProgram(prog)
	})
	return vmt
}

func (vmt vmTestCase) withWords(words string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		prog, err := ops.ParseString(words)
		require.NoError(t, err, "unexpected instruction word error")
		return WithProgram(prog)
	})
	return vmt
}

func (vmt vmTestCase) withStack(values ...mem.Value) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		vm.stack = append(vm.stack, values...)
	}))
	return vmt
}

func (vmt vmTestCase) withScalar(name string, val mem.Value) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		vm.store.Bind(name, val)
	}))
	return vmt
}

func (vmt vmTestCase) withVector(name string, values ...mem.Value) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		if err := vm.store.Alloc(name, len(values), mem.Int(0)); err != nil {
			panic(err)
		}
		copy(vm.store.Vector(name), values)
	}))
	return vmt
}

func (vmt vmTestCase) withMemLimit(limit uint) vmTestCase {
	vmt.opts = append(vmt.opts, withMemLimit(limit))
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		name := t.Name() + "/input"
		if id := vmt.nextInputID; id > 0 {
			name += "_" + strconv.Itoa(id+1)
		}
		vmt.nextInputID++
		return WithInput(namedReader{name, strings.NewReader(input)})
	})
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(vmt *vmTestCase, t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: t.Logf, Prefix: "out: "})
	})
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectErrorMessage(mess string) vmTestCase {
	vmt.wantMess = mess
	return vmt
}

func (vmt vmTestCase) expectPC(pc int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, pc, vm.pc, "expected program counter")
	})
	return vmt
}

func (vmt vmTestCase) expectWords(words string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, words, vm.Program().String(), "expected program words")
	})
	return vmt
}

func (vmt vmTestCase) expectStack(values ...mem.Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []mem.Value{}
		}
		assert.Equal(t, values, vm.Stack(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectScalar(name string, val mem.Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, val, vm.Scalar(name), "expected scalar %v", name)
	})
	return vmt
}

func (vmt vmTestCase) expectUnbound(name string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		_, bound := vm.store.Lookup(name)
		assert.False(t, bound, "expected %v to be unbound", name)
	})
	return vmt
}

func (vmt vmTestCase) expectVector(name string, values ...mem.Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, mem.Vector(values), vm.store.Vector(name), "expected vector %v", name)
	})
	return vmt
}

func (vmt vmTestCase) expectMatrixRow(name string, i int, values ...mem.Value) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		m := vm.store.Matrix(name)
		if assert.NotNil(t, m, "expected matrix %v", name) {
			assert.Equal(t, values, m.Row(i), "expected matrix %v row %v", name, i)
		}
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectDump(parts ...string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		var out strings.Builder
		vmDumper{vm: vm, out: &out, withProgram: true}.dump()
		for _, part := range parts {
			assert.Contains(t, out.String(), part, "expected dump content")
		}
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	var trace []string
	vm := vmt.buildVM(t, func(mess string, args ...interface{}) {
		trace = append(trace, fmt.Sprintf(mess, args...))
	})
	defer func() {
		if t.Failed() {
			for _, line := range trace {
				t.Log(line)
			}
			vmt.dumpToTest(t, vm)
		}
	}()
	vmt.runVMTest(context.Background(), t, vm)
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM) {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := vmt.runVM(ctx, vm)
	if vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else if vmt.wantMess == "" {
		assert.NoError(t, err, "unexpected VM run error")
	}
	if vmt.wantMess != "" {
		assert.EqualError(t, err, vmt.wantMess)
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) (rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()
	return vm.Run(ctx)
}

func (vmt vmTestCase) buildVM(t *testing.T, logfn func(mess string, args ...interface{})) *VM {
	var vm VM

	opt := VMOptions(defaultOptions, WithLogf(logfn))
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(vmt *vmTestCase, t *testing.T) VMOption:
			opt = VMOptions(opt, impl(&vmt, t))
		case VMOption:
			opt = VMOptions(opt, impl)
		default:
			t.Logf("unsupported vmTestCase opt type %T", o)
			t.FailNow()
		}
	}
	opt.apply(&vm)

	return &vm
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw, withProgram: true}.dump()
}

//// utilities

type namedReader struct {
	name string
	io.Reader
}

func (nr namedReader) Name() string { return nr.name }

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func ints(is ...int64) []mem.Value {
	vals := make([]mem.Value, len(is))
	for i, n := range is {
		vals[i] = mem.Int(n)
	}
	return vals
}
