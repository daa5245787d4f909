package mem

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotAllocated is matched by any access to an array name that has no
	// allocation of the accessed shape.
	ErrNotAllocated = errors.New("array not allocated")

	// ErrIndexOutOfBounds is matched by any IndexError.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrLimit is matched by any LimitError.
	ErrLimit = errors.New("memory limit exceeded")

	// ErrInvalidSize is returned when allocating a negative dimension, or
	// more than MaxCells cells.
	ErrInvalidSize = errors.New("invalid array size")
)

// MaxCells bounds the cell count of any single array, regardless of
// Store.Limit.
const MaxCells = 1 << 26

// IndexError indicates an array access outside of its dimensions.
type IndexError struct {
	Name  string
	Index []int64
	Dims  []int
}

func (ie IndexError) Error() string {
	var sb strings.Builder
	sb.WriteString("index ")
	for _, i := range ie.Index {
		fmt.Fprintf(&sb, "[%v]", i)
	}
	sb.WriteString(" out of bounds for ")
	sb.WriteString(ie.Name)
	for _, n := range ie.Dims {
		fmt.Fprintf(&sb, "[%v]", n)
	}
	return sb.String()
}

// Unwrap returns ErrIndexOutOfBounds.
func (ie IndexError) Unwrap() error { return ErrIndexOutOfBounds }

// NotAllocatedError names an array that was accessed before allocation.
type NotAllocatedError string

func (name NotAllocatedError) Error() string {
	return fmt.Sprintf("array %v not allocated", string(name))
}

// Unwrap returns ErrNotAllocated.
func (name NotAllocatedError) Unwrap() error { return ErrNotAllocated }

// LimitError indicates that an allocation would exceed Store.Limit.
type LimitError struct {
	Name  string
	Need  uint
	Limit uint
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded allocating %v: need %v cells, limit %v", lim.Name, lim.Need, lim.Limit)
}

// Unwrap returns ErrLimit.
func (lim LimitError) Unwrap() error { return ErrLimit }

// Store holds scalar bindings and 1-D and 2-D array bindings.
// The zero Store is empty and ready to use.
type Store struct {
	// Limit specifies the maximum number of array cells that may be
	// allocated at once; zero means no limit.
	Limit uint

	used     uint
	scalars  map[string]Value
	vectors  map[string]Vector
	matrices map[string]*Matrix
}

// Reset discards all bindings, retaining only Limit.
func (s *Store) Reset() {
	*s = Store{Limit: s.Limit}
}

// Load returns the scalar bound to name; unbound names read as integer 0.
func (s *Store) Load(name string) Value {
	return s.scalars[name]
}

// Lookup returns the scalar bound to name, and whether it was bound.
func (s *Store) Lookup(name string) (Value, bool) {
	val, ok := s.scalars[name]
	return val, ok
}

// Bind sets the scalar bound to name.
func (s *Store) Bind(name string, val Value) {
	if s.scalars == nil {
		s.scalars = make(map[string]Value)
	}
	s.scalars[name] = val
}

// Alloc binds name to a new vector of n cells, each set to zero.
// Any prior array bound to name, of either shape, is released.
func (s *Store) Alloc(name string, n int, zero Value) error {
	if n < 0 || n > MaxCells {
		return fmt.Errorf("%w %v[%v]", ErrInvalidSize, name, n)
	}
	if err := s.reserve(name, uint(n)); err != nil {
		return err
	}
	if s.vectors == nil {
		s.vectors = make(map[string]Vector)
	}
	s.vectors[name] = newVector(n, zero)
	return nil
}

// Alloc2D binds name to a new rows×cols matrix, each cell set to zero.
// Any prior array bound to name, of either shape, is released.
func (s *Store) Alloc2D(name string, rows, cols int, zero Value) error {
	if rows < 0 || cols < 0 || rows > MaxCells || cols > MaxCells ||
		cols != 0 && rows > MaxCells/cols {
		return fmt.Errorf("%w %v[%v][%v]", ErrInvalidSize, name, rows, cols)
	}
	if err := s.reserve(name, uint(rows)*uint(cols)); err != nil {
		return err
	}
	if s.matrices == nil {
		s.matrices = make(map[string]*Matrix)
	}
	s.matrices[name] = newMatrix(rows, cols, zero)
	return nil
}

func (s *Store) reserve(name string, n uint) error {
	used := s.used - s.cellsOf(name)
	if lim := s.Limit; lim != 0 && used+n > lim {
		return LimitError{Name: name, Need: n, Limit: lim - used}
	}
	delete(s.vectors, name)
	delete(s.matrices, name)
	s.used = used + n
	return nil
}

func (s *Store) cellsOf(name string) (n uint) {
	if vec, ok := s.vectors[name]; ok {
		n += uint(len(vec))
	}
	if m, ok := s.matrices[name]; ok {
		n += uint(len(m.cells))
	}
	return n
}

// Used returns the number of array cells currently allocated.
func (s *Store) Used() uint { return s.used }

func (s *Store) vector(name string) (Vector, error) {
	if vec, ok := s.vectors[name]; ok {
		return vec, nil
	}
	return nil, NotAllocatedError(name)
}

func (s *Store) matrix(name string) (*Matrix, error) {
	if m, ok := s.matrices[name]; ok {
		return m, nil
	}
	return nil, NotAllocatedError(name)
}

// Get returns name[i].
func (s *Store) Get(name string, i int64) (Value, error) {
	vec, err := s.vector(name)
	if err != nil {
		return Value{}, err
	}
	off, err := vec.offset(name, i)
	if err != nil {
		return Value{}, err
	}
	return vec[off], nil
}

// Set stores name[i] = val.
func (s *Store) Set(name string, i int64, val Value) error {
	vec, err := s.vector(name)
	if err != nil {
		return err
	}
	off, err := vec.offset(name, i)
	if err != nil {
		return err
	}
	vec[off] = val
	return nil
}

// Check returns any error that Get(name, i) would return.
func (s *Store) Check(name string, i int64) error {
	vec, err := s.vector(name)
	if err == nil {
		_, err = vec.offset(name, i)
	}
	return err
}

// Get2D returns name[i][j].
func (s *Store) Get2D(name string, i, j int64) (Value, error) {
	m, err := s.matrix(name)
	if err != nil {
		return Value{}, err
	}
	off, err := m.offset(name, i, j)
	if err != nil {
		return Value{}, err
	}
	return m.cells[off], nil
}

// Set2D stores name[i][j] = val.
func (s *Store) Set2D(name string, i, j int64, val Value) error {
	m, err := s.matrix(name)
	if err != nil {
		return err
	}
	off, err := m.offset(name, i, j)
	if err != nil {
		return err
	}
	m.cells[off] = val
	return nil
}

// Check2D returns any error that Get2D(name, i, j) would return.
func (s *Store) Check2D(name string, i, j int64) error {
	m, err := s.matrix(name)
	if err == nil {
		_, err = m.offset(name, i, j)
	}
	return err
}

// Vector returns the vector bound to name, or nil; the result aliases s.
func (s *Store) Vector(name string) Vector { return s.vectors[name] }

// Matrix returns the matrix bound to name, or nil; the result aliases s.
func (s *Store) Matrix(name string) *Matrix { return s.matrices[name] }

// ScalarNames returns all bound scalar names in sorted order.
func (s *Store) ScalarNames() []string { return sortedKeys(s.scalars) }

// VectorNames returns all bound vector names in sorted order.
func (s *Store) VectorNames() []string { return sortedKeys(s.vectors) }

// MatrixNames returns all bound matrix names in sorted order.
func (s *Store) MatrixNames() []string { return sortedKeys(s.matrices) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
