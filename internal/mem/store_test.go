package mem_test

import (
	"errors"
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/jcorbin/opstack/internal/logio"
	"github.com/jcorbin/opstack/internal/mem"
	"github.com/jcorbin/opstack/internal/panicerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Store(t *testing.T) {
	for _, tc := range []storeTestCase{
		storeTest("scalars",
			"unbound reads zero", func(t *testing.T, s *mem.Store) {
				require.Equal(t, mem.Int(0), s.Load("x"), "expected integer 0 for unbound x")
				_, bound := s.Lookup("x")
				require.False(t, bound, "expected x to be unbound")
			},

			"bind and load", func(t *testing.T, s *mem.Store) {
				s.Bind("x", mem.Int(14))
				s.Bind("y", mem.Float(2.5))
				require.Equal(t, mem.Int(14), s.Load("x"))
				require.Equal(t, mem.Float(2.5), s.Load("y"))
				require.Equal(t, []string{"x", "y"}, s.ScalarNames())
			},

			"reset", func(t *testing.T, s *mem.Store) {
				s.Reset()
				require.Equal(t, mem.Int(0), s.Load("x"))
				require.Empty(t, s.ScalarNames())
			},
		),

		storeTest("vector",
			"unallocated", func(t *testing.T, s *mem.Store) {
				_, err := s.Get("A", 0)
				require.True(t, errors.Is(err, mem.ErrNotAllocated), "expected not allocated, got %v", err)
				require.EqualError(t, err, "array A not allocated")
			},

			"alloc zero filled", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Alloc("A", 3, mem.Int(0)))
				require.Equal(t, mem.Vector{mem.Int(0), mem.Int(0), mem.Int(0)}, s.Vector("A"))
				require.Equal(t, uint(3), s.Used())
			},

			"set then get", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Set("A", 1, mem.Int(9)))
				val, err := s.Get("A", 1)
				require.NoError(t, err)
				require.Equal(t, mem.Int(9), val)
			},

			"out of bounds", func(t *testing.T, s *mem.Store) {
				_, err := s.Get("A", 5)
				require.True(t, errors.Is(err, mem.ErrIndexOutOfBounds), "expected out of bounds, got %v", err)
				require.EqualError(t, err, "index [5] out of bounds for A[3]")
				require.Error(t, s.Set("A", -1, mem.Int(1)))
				require.Error(t, s.Check("A", 3))
				require.NoError(t, s.Check("A", 2))
				require.Equal(t, mem.Vector{mem.Int(0), mem.Int(9), mem.Int(0)}, s.Vector("A"),
					"expected no mutation from failed accesses")
			},

			"realloc releases", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Alloc("A", 2, mem.Float(0)))
				require.Equal(t, uint(2), s.Used())
				require.Equal(t, mem.Vector{mem.Float(0), mem.Float(0)}, s.Vector("A"))
			},

			"negative size", func(t *testing.T, s *mem.Store) {
				err := s.Alloc("B", -1, mem.Int(0))
				require.True(t, errors.Is(err, mem.ErrInvalidSize), "expected invalid size, got %v", err)
			},

			"oversized", func(t *testing.T, s *mem.Store) {
				err := s.Alloc("B", mem.MaxCells+1, mem.Int(0))
				require.True(t, errors.Is(err, mem.ErrInvalidSize), "expected invalid size, got %v", err)
				require.Nil(t, s.Vector("B"))
				require.Equal(t, uint(2), s.Used(), "expected no cells reserved")
			},
		),

		storeTest("matrix",
			"alloc", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Alloc2D("M", 2, 3, mem.Int(0)))
				m := s.Matrix("M")
				require.NotNil(t, m)
				require.Equal(t, 2, m.Rows())
				require.Equal(t, 3, m.Cols())
			},

			"set then get", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Set2D("M", 1, 2, mem.Int(7)))
				val, err := s.Get2D("M", 1, 2)
				require.NoError(t, err)
				require.Equal(t, mem.Int(7), val)
				require.Equal(t, []mem.Value{mem.Int(0), mem.Int(0), mem.Int(7)}, s.Matrix("M").Row(1))
			},

			"out of bounds", func(t *testing.T, s *mem.Store) {
				_, err := s.Get2D("M", 2, 0)
				require.True(t, errors.Is(err, mem.ErrIndexOutOfBounds), "expected out of bounds, got %v", err)
				require.EqualError(t, err, "index [2][0] out of bounds for M[2][3]")
				require.Error(t, s.Check2D("M", 0, 3))
			},

			"shapes do not alias", func(t *testing.T, s *mem.Store) {
				_, err := s.Get("M", 0)
				require.True(t, errors.Is(err, mem.ErrNotAllocated), "expected 1-D access to 2-D array to fail")
				require.NoError(t, s.Alloc("M", 1, mem.Int(0)))
				require.Nil(t, s.Matrix("M"), "expected 1-D alloc to release 2-D M")
				require.Equal(t, uint(1), s.Used())
			},
		),

		storeTest("limit",
			"init", func(t *testing.T, s *mem.Store) {
				s.Limit = 8
				require.NoError(t, s.Alloc("A", 4, mem.Int(0)))
			},

			"exceed", func(t *testing.T, s *mem.Store) {
				err := s.Alloc2D("M", 3, 3, mem.Int(0))
				require.True(t, errors.Is(err, mem.ErrLimit), "expected limit error, got %v", err)
				require.Nil(t, s.Matrix("M"))
				require.Equal(t, uint(4), s.Used())
			},

			"overflowing cell count", func(t *testing.T, s *mem.Store) {
				big := 1 << (strconv.IntSize / 2)
				err := s.Alloc2D("H", big, big, mem.Int(0))
				require.True(t, errors.Is(err, mem.ErrInvalidSize), "expected invalid size, got %v", err)
				require.Nil(t, s.Matrix("H"))
				require.Equal(t, uint(4), s.Used())
				require.Error(t, s.Alloc2D("Z", big, 0, mem.Int(0)), "expected rows to be bounded without columns")
				require.NoError(t, s.Alloc2D("Z", 3, 0, mem.Int(0)), "expected an empty matrix to fit")
			},

			"realloc within limit", func(t *testing.T, s *mem.Store) {
				require.NoError(t, s.Alloc("A", 8, mem.Int(0)), "expected prior A cells to be reusable")
			},

			"failed realloc keeps prior", func(t *testing.T, s *mem.Store) {
				require.Error(t, s.Alloc("A", 9, mem.Int(0)))
				require.Len(t, s.Vector("A"), 8)
			},

			"reset keeps limit", func(t *testing.T, s *mem.Store) {
				s.Reset()
				require.Equal(t, uint(8), s.Limit)
				require.Equal(t, uint(0), s.Used())
			},
		),
	} {
		t.Run(tc.name, func(t *testing.T) {
			tcLogOut := &logio.Writer{Logf: t.Logf}
			log.SetOutput(tcLogOut)
			defer log.SetOutput(os.Stderr)

			var s mem.Store
			for _, step := range tc.steps {
				if !t.Run(step.name, func(t *testing.T) {
					isolateTest(t, step.bind(&s))
				}) {
					break
				}
			}
		})
	}
}

func Test_Value(t *testing.T) {
	for _, tc := range []struct {
		name    string
		val     mem.Value
		str     string
		literal string
	}{
		{"int", mem.Int(14), "14", "14"},
		{"negative int", mem.Int(-3), "-3", "-3"},
		{"float", mem.Float(2.5), "2.5", "2.5"},
		{"integral float", mem.Float(3), "3", "3.0"},
		{"zero", mem.Value{}, "0", "0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.str, tc.val.String())
			assert.Equal(t, tc.literal, tc.val.Literal())
			back, err := mem.ParseValue(tc.val.Literal())
			require.NoError(t, err)
			assert.Equal(t, tc.val, back, "expected literal to parse back")
		})
	}

	t.Run("coercion", func(t *testing.T) {
		assert.Equal(t, mem.Int(2), mem.Float(2.9).As("int"))
		assert.Equal(t, mem.Int(-2), mem.Float(-2.9).As("int"))
		assert.Equal(t, mem.Float(2), mem.Int(2).As("double"))
		assert.Equal(t, mem.Float(2), mem.Int(2).As("float"))
		assert.Equal(t, mem.Int(97), mem.Int(97).As("char"))
		assert.Equal(t, mem.Float(1.5), mem.Float(1.5).As("void"))
		assert.Equal(t, mem.Float(0), mem.Zero("float"))
		assert.Equal(t, mem.Int(0), mem.Zero("int"))
	})

	t.Run("truthiness", func(t *testing.T) {
		assert.True(t, mem.Int(0).IsZero())
		assert.True(t, mem.Float(0).IsZero())
		assert.False(t, mem.Float(0.1).IsZero())
		assert.Equal(t, mem.Int(1), mem.Bool(true))
		assert.Equal(t, mem.Int(0), mem.Bool(false))
	})

	t.Run("parse errors", func(t *testing.T) {
		_, err := mem.ParseValue("x1")
		assert.EqualError(t, err, `invalid numeric value "x1"`)
	})
}

func isolateTest(t *testing.T, f func(t *testing.T)) {
	if err := panicerr.Recover(t.Name(), func() error {
		f(t)
		return nil
	}); err != nil {
		t.Logf("%+v", err)
		t.Fail()
	}
}

func storeTest(name string, args ...interface{}) (tc storeTestCase) {
	tc.name = name
	for i := 0; i < len(args); i++ {
		var step storeTestStep

		step.name = args[i].(string)

		if i++; i >= len(args) {
			panic("storeTest: missing function argument after name")
		}
		step.f = args[i].(func(t *testing.T, s *mem.Store))

		tc.steps = append(tc.steps, step)
	}
	return tc
}

type storeTestCase struct {
	name  string
	steps []storeTestStep
}

type storeTestStep struct {
	name string
	f    func(t *testing.T, s *mem.Store)

	s *mem.Store
}

func (step storeTestStep) bind(s *mem.Store) func(t *testing.T) {
	step.s = s
	return step.boundTest
}

func (step storeTestStep) boundTest(t *testing.T) {
	step.f(t, step.s)
}
