package mem

// Vector is a fixed-length, zero-initialized array of values.
type Vector []Value

// Matrix is a fixed-size, zero-initialized rows×cols array of values,
// stored row-major.
type Matrix struct {
	rows, cols int
	cells      []Value
}

func newVector(n int, zero Value) Vector {
	vec := make(Vector, n)
	for i := range vec {
		vec[i] = zero
	}
	return vec
}

func newMatrix(rows, cols int, zero Value) *Matrix {
	return &Matrix{
		rows:  rows,
		cols:  cols,
		cells: newVector(rows*cols, zero),
	}
}

// Rows returns the number of rows in m.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns in m.
func (m *Matrix) Cols() int { return m.cols }

// Row returns the cells of row i; the returned slice aliases m.
func (m *Matrix) Row(i int) []Value { return m.cells[i*m.cols : (i+1)*m.cols] }

func (vec Vector) offset(name string, i int64) (int, error) {
	if i < 0 || i >= int64(len(vec)) {
		return 0, IndexError{Name: name, Index: []int64{i}, Dims: []int{len(vec)}}
	}
	return int(i), nil
}

func (m *Matrix) offset(name string, i, j int64) (int, error) {
	if i < 0 || i >= int64(m.rows) || j < 0 || j >= int64(m.cols) {
		return 0, IndexError{Name: name, Index: []int64{i, j}, Dims: []int{m.rows, m.cols}}
	}
	return int(i)*m.cols + int(j), nil
}
