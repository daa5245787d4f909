package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"

	"github.com/jcorbin/opstack/internal/ops"
	"github.com/jcorbin/opstack/internal/panicerr"
	"github.com/jcorbin/opstack/internal/translate"
)

func main() {
	ctx := context.Background()

	var (
		timeout     time.Duration
		trace       bool
		memLimit    uint
		printOps    bool
		loadOps     bool
		dump        bool
		interactive bool
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.UintVar(&memLimit, "mem-limit", 0, "limit allocated array cells")
	flag.BoolVar(&printOps, "ops", false, "print instruction streams instead of running them")
	flag.BoolVar(&loadOps, "load", false, "read files as instruction streams")
	flag.BoolVar(&dump, "dump", false, "dump machine state after running")
	flag.BoolVar(&interactive, "repl", false, "run an interactive prompt")
	flag.Parse()

	level := zerolog.InfoLevel
	if trace {
		level = zerolog.TraceLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		atexit.Register(cancel)
	}

	files := flag.Args()
	interactive = interactive || len(files) == 0

	var opts = []VMOption{
		WithOutput(os.Stdout),
	}
	if !interactive {
		opts = append(opts, WithInput(os.Stdin))
	}
	if trace {
		opts = append(opts, WithLogf(func(mess string, args ...interface{}) {
			log.Trace().Msgf(mess, args...)
		}))
	}
	if memLimit != 0 {
		opts = append(opts, WithMemLimit(memLimit))
	}
	vm := New(opts...)
	atexit.Register(func() {
		if err := vm.Close(); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	})

	for _, name := range files {
		prog, err := compileFile(name, loadOps)
		if err != nil {
			log.Error().Err(err).Str("file", name).Msg("translation failed")
			atexit.Exit(1)
		}
		if printOps {
			fmt.Println(prog)
			continue
		}
		if err := runProgram(ctx, vm, prog); err != nil {
			ev := log.Error().Err(err).Str("file", name)
			if panicerr.IsPanic(err) {
				ev = ev.Str("stack", panicerr.PanicStack(err))
			}
			ev.Msg("run failed")
			if dump {
				vmDumper{vm: vm, out: os.Stderr, withProgram: true}.dump()
			}
			atexit.Exit(1)
		}
	}

	if dump && len(files) > 0 {
		vmDumper{vm: vm, out: os.Stderr}.dump()
	}

	if interactive {
		if err := runREPL(ctx, vm, log, printOps); err != nil {
			log.Error().Err(err).Msg("repl failed")
			atexit.Exit(1)
		}
	}

	atexit.Exit(0)
}

func compileFile(name string, words bool) (ops.Program, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if words {
		return ops.Parse(f)
	}
	return translate.Source(name, f)
}

func runProgram(ctx context.Context, vm *VM, prog ops.Program) error {
	if err := vm.Load(prog); err != nil {
		return err
	}
	return vm.Run(ctx)
}
