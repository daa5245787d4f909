package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jcorbin/opstack/internal/fileinput"
	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/runeio"
)

type ioCore struct {
	in  fileinput.Input
	out writeFlusher
}

func (ioc *ioCore) Close() (err error) {
	if ioc.out != nil {
		err = ioc.out.Flush()
	}
	if cerr := ioc.in.Close(); err == nil {
		err = cerr
	}
	return err
}

// readValue flushes any pending output, then scans one input word as a
// numeric literal or, failing that, a character literal.
func (ioc *ioCore) readValue() (mem.Value, error) {
	if err := ioc.out.Flush(); err != nil {
		return mem.Value{}, err
	}
	word, loc, err := ioc.in.ScanWord()
	if err == io.EOF {
		return mem.Value{}, errInputEnd
	} else if err != nil {
		return mem.Value{}, err
	}
	if val, err := mem.ParseValue(word); err == nil {
		return val, nil
	}
	if r, err := runeio.UnquoteRune(word); err == nil {
		return mem.Int(int64(r)), nil
	}
	return mem.Value{}, fmt.Errorf("%w %q from %v", errInvalidInput, word, loc)
}

func (ioc *ioCore) writeValue(val mem.Value) error {
	_, err := io.WriteString(ioc.out, val.String()+"\n")
	return err
}

type writeFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher writeFlusher = nopFlusher{io.Discard}

func newWriteFlusher(w io.Writer) writeFlusher {
	// discard writer does not need flushing
	if w == io.Discard {
		return discardWriteFlusher
	}

	if wf, is := w.(writeFlusher); is {
		return wf
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

type writeFlushers []writeFlusher

func (wfs writeFlushers) Write(p []byte) (n int, err error) {
	for _, wf := range wfs {
		n, err = wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (wfs writeFlushers) Flush() (err error) {
	for _, wf := range wfs {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

func appendWriteFlusher(all writeFlushers, some ...writeFlusher) writeFlushers {
	for _, one := range some {
		if many, ok := one.(writeFlushers); ok {
			all = append(all, many...)
		} else if one != nil && one != discardWriteFlusher {
			all = append(all, one)
		}
	}
	return all
}

func multiWriteFlusher(a, b writeFlusher) writeFlusher {
	switch wfs := appendWriteFlusher(nil, a, b); len(wfs) {
	case 0:
		return discardWriteFlusher
	case 1:
		return wfs[0]
	default:
		return wfs
	}
}
