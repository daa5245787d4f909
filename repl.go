package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jcorbin/opstack/internal/translate"
)

const (
	promptMain  = "> "
	promptCont  = ". "
	promptInput = "? "
)

type repl struct {
	vm       *VM
	ln       *liner.State
	log      zerolog.Logger
	printOps bool

	input *promptReader
}

func runREPL(ctx context.Context, vm *VM, log zerolog.Logger, printOps bool) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	rp := repl{
		vm:       vm,
		ln:       ln,
		log:      log,
		printOps: printOps,
		input:    &promptReader{ln: ln, prompt: promptInput},
	}
	return rp.run(ctx)
}

func (rp *repl) run(ctx context.Context) error {
	for {
		src, ok := rp.readEntry()
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.HasPrefix(src, ":") {
			if rp.command(src) {
				return nil
			}
			continue
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		rp.ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if err := rp.eval(ctx, src); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			rp.log.Error().Err(err).Msg("")
		}
	}
}

// readEntry reads lines until every opened brace is closed.
func (rp *repl) readEntry() (string, bool) {
	var sb strings.Builder
	depth := 0
	for {
		prompt := promptMain
		if sb.Len() > 0 {
			prompt = promptCont
		}
		line, err := rp.ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		} else if err != nil {
			return "", false
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth <= 0 {
			return sb.String(), true
		}
	}
}

func (rp *repl) command(line string) (quit bool) {
	switch cmd := strings.TrimSpace(line); cmd {
	case ":quit", ":q":
		return true
	case ":reset":
		rp.vm.Reset()
	case ":dump":
		vmDumper{vm: rp.vm, out: os.Stdout, withProgram: true}.dump()
	case ":ops":
		rp.printOps = !rp.printOps
	default:
		fmt.Printf("unknown command %q; try :dump :ops :reset :quit\n", cmd)
	}
	return false
}

func (rp *repl) eval(ctx context.Context, src string) error {
	prog, err := translate.Source("<repl>", strings.NewReader(src))
	if err != nil {
		return err
	}
	if rp.printOps {
		fmt.Println(prog)
	}
	if err := rp.vm.Load(prog); err != nil {
		return err
	}
	if len(rp.vm.in.Queue) == 0 {
		withInput(rp.input).apply(rp.vm)
	}
	return rp.vm.Run(ctx)
}

// promptReader reads input one prompted line at a time.
type promptReader struct {
	ln     *liner.State
	prompt string
	buf    strings.Reader
}

func (pr *promptReader) Name() string { return "<input>" }

func (pr *promptReader) Read(p []byte) (int, error) {
	for pr.buf.Len() == 0 {
		line, err := pr.ln.Prompt(pr.prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return 0, io.EOF
		} else if err != nil {
			return 0, err
		}
		pr.buf.Reset(line + "\n")
	}
	return pr.buf.Read(p)
}
