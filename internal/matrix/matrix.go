package matrix

import "github.com/XMinty77/DungeonCracker/internal/bigrat"

// Matrix is a dense row-major rows x cols container of exact rationals.
//
// "Row echelon", "size reduced", and "Lovász-reduced" are predicates
// tested on a Matrix by internal/lll, not stored state on the matrix
// itself.
type Matrix struct {
	data []bigrat.Rat
	rows int
	cols int
}

func New(rows, cols int) Matrix {
	data := make([]bigrat.Rat, rows*cols)
	for i := range data {
		data[i] = bigrat.Zero()
	}
	return Matrix{data: data, rows: rows, cols: cols}
}

func Identity(size int) Matrix {
	m := New(size, size)
	for i := 0; i < size; i++ {
		m.Set(i, i, bigrat.One())
	}
	return m
}

func (m Matrix) RowCount() int { return m.rows }
func (m Matrix) ColCount() int { return m.cols }
func (m Matrix) IsSquare() bool { return m.rows == m.cols }

func (m Matrix) Get(r, c int) bigrat.Rat { return m.data[r*m.cols+c] }

func (m *Matrix) Set(r, c int, v bigrat.Rat) { m.data[r*m.cols+c] = v }

func (m Matrix) GetRow(r int) Vector {
	start := r * m.cols
	out := make([]bigrat.Rat, m.cols)
	copy(out, m.data[start:start+m.cols])
	return Vector{data: out}
}

func (m *Matrix) SetRow(r int, v Vector) {
	start := r * m.cols
	for i := 0; i < m.cols; i++ {
		m.data[start+i] = v.Get(i)
	}
}

func (m Matrix) GetCol(c int) Vector {
	v := NewVector(m.rows)
	for i := 0; i < m.rows; i++ {
		v.Set(i, m.Get(i, c))
	}
	return v
}

func (m *Matrix) SetCol(c int, v Vector) {
	for i := 0; i < m.rows; i++ {
		m.Set(i, c, v.Get(i))
	}
}

func (m *Matrix) SwapRows(r1, r2 int) {
	if r1 == r2 {
		return
	}
	for c := 0; c < m.cols; c++ {
		i1, i2 := r1*m.cols+c, r2*m.cols+c
		m.data[i1], m.data[i2] = m.data[i2], m.data[i1]
	}
}

func (m Matrix) Clone() Matrix {
	out := make([]bigrat.Rat, len(m.data))
	copy(out, m.data)
	return Matrix{data: out, rows: m.rows, cols: m.cols}
}

func (m Matrix) Transpose() Matrix {
	t := New(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			t.Set(c, r, m.Get(r, c))
		}
	}
	return t
}

func (m Matrix) MultiplyVector(v Vector) Vector {
	out := NewVector(m.rows)
	for r := 0; r < m.rows; r++ {
		out.Set(r, m.GetRow(r).Dot(v))
	}
	return out
}

// Multiply computes the matrix product m*other.
func (m Matrix) Multiply(other Matrix) Matrix {
	if m.cols != other.rows {
		panic("matrix: dimension mismatch in multiply")
	}
	out := New(m.rows, other.cols)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < other.cols; c++ {
			sum := bigrat.Zero()
			for k := 0; k < m.cols; k++ {
				sum = sum.Add(m.Get(r, k).Mul(other.Get(k, c)))
			}
			out.Set(r, c, sum)
		}
	}
	return out
}

func (m Matrix) MultiplyScalar(s bigrat.Rat) Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] = out.data[i].Mul(s)
	}
	return out
}

func (m Matrix) Submatrix(startRow, startCol, rowCount, colCount int) Matrix {
	out := New(rowCount, colCount)
	for r := 0; r < rowCount; r++ {
		for c := 0; c < colCount; c++ {
			out.Set(r, c, m.Get(startRow+r, startCol+c))
		}
	}
	return out
}

// RowSubtractScaled performs target -= scale * source, used by Gauss-Jordan
// elimination (internal/simplex).
func (m *Matrix) RowSubtractScaled(target, source int, scale bigrat.Rat) {
	for c := 0; c < m.cols; c++ {
		v := m.Get(target, c).Sub(m.Get(source, c).Mul(scale))
		m.Set(target, c, v)
	}
}

func (m *Matrix) RowAddScaled(target, source int, scale bigrat.Rat) {
	for c := 0; c < m.cols; c++ {
		v := m.Get(target, c).Add(m.Get(source, c).Mul(scale))
		m.Set(target, c, v)
	}
}

func (m *Matrix) RowDivide(row int, divisor bigrat.Rat) {
	recip := bigrat.One().Div(divisor)
	m.RowMultiply(row, recip)
}

func (m *Matrix) RowMultiply(row int, scalar bigrat.Rat) {
	for c := 0; c < m.cols; c++ {
		m.Set(row, c, m.Get(row, c).Mul(scalar))
	}
}
