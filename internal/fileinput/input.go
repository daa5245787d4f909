// Package fileinput implements sequential reading through a queue of named
// input streams, tracking line locations for diagnostics.
package fileinput

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/jcorbin/opstack/internal/runeio"
)

// Location names a line in an Input file.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer for handling it.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams. Both the current and last scanned lines are tracked to
// facilitate user feedback.
type Input struct {
	rr    io.RuneReader
	Queue []io.Reader
	Last  Line
	Scan  Line
}

// ReadRune reads one rune from the current input stream, appending it into the
// current Scan line, and rolling Scan over to Last after line feed. Reaching
// the end of one stream moves on to the next one queued.
func (in *Input) ReadRune() (rune, int, error) {
	if in.rr == nil && !in.nextIn() {
		return 0, 0, io.EOF
	}

	r, n, err := in.rr.ReadRune()
	if r == '\n' {
		in.nextLine()
	} else if n > 0 {
		in.Scan.WriteRune(r)
	}

	if n > 0 {
		return r, n, nil
	}
	if err == io.EOF && in.nextIn() {
		err = nil
	}
	return 0, 0, err
}

// ScanWord skips any leading space, then reads one space-delimited word,
// consuming the space that terminates it. Returns io.EOF only if every queued
// stream is exhausted before any word starts.
func (in *Input) ScanWord() (string, Location, error) {
	var sb strings.Builder
	for {
		r, n, err := in.ReadRune()
		if err != nil {
			return "", in.Scan.Location, err
		}
		if n > 0 && !unicode.IsSpace(r) {
			sb.WriteRune(r)
			break
		}
	}
	loc := in.Scan.Location
	for {
		r, n, err := in.ReadRune()
		if err == io.EOF || (n > 0 && unicode.IsSpace(r)) {
			break
		} else if err != nil {
			return sb.String(), loc, err
		} else if n == 0 {
			// crossed into the next stream
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), loc, nil
}

// Close closes any current stream and discards all queued ones; queued
// streams that implement io.Closer are closed too.
func (in *Input) Close() (err error) {
	if cl, ok := in.rr.(io.Closer); ok {
		err = cl.Close()
	}
	in.rr = nil
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	return err
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Name = in.Scan.Name
	in.Last.Line = in.Scan.Line
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
}

func (in *Input) nextIn() bool {
	if in.Scan.Len() > 0 {
		in.nextLine()
	}
	if in.rr != nil {
		if cl, ok := in.rr.(io.Closer); ok {
			cl.Close()
		}
		in.rr = nil
	}
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.rr = runeio.NewReader(r)
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
	}
	return in.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
