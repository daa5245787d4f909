package logio_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/jcorbin/opstack/internal/logio"
	"github.com/stretchr/testify/assert"
)

func TestWriter(t *testing.T) {
	var logged []string
	lw := &logio.Writer{
		Prefix: "out: ",
		Logf: func(mess string, args ...interface{}) {
			logged = append(logged, fmt.Sprintf(mess, args...))
		},
	}

	io.WriteString(lw, "1\n2")
	assert.Equal(t, []string{"out: 1"}, logged, "expected only complete lines")

	io.WriteString(lw, "3\n")
	assert.Equal(t, []string{"out: 1", "out: 23"}, logged)

	io.WriteString(lw, "tail")
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{"out: 1", "out: 23", "out: tail"}, logged, "expected close to flush partial line")
}
