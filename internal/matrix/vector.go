// Package matrix provides dense BigRational vectors and matrices with
// the row operations the lattice reducer (internal/lll) and the
// enumeration search (internal/enumerate) are built on. It has no
// Gram-Schmidt routine; internal/lll keeps its own Gram-Schmidt data.
package matrix

import "github.com/XMinty77/DungeonCracker/internal/bigrat"

// Vector is a dense vector of exact rationals.
type Vector struct {
	data []bigrat.Rat
}

func NewVector(dim int) Vector {
	v := Vector{data: make([]bigrat.Rat, dim)}
	for i := range v.data {
		v.data[i] = bigrat.Zero()
	}
	return v
}

func VectorFromData(data []bigrat.Rat) Vector {
	return Vector{data: data}
}

func (v Vector) Dimension() int { return len(v.data) }

func (v Vector) Get(i int) bigrat.Rat { return v.data[i] }

func (v *Vector) Set(i int, val bigrat.Rat) { v.data[i] = val }

func (v Vector) Clone() Vector {
	out := make([]bigrat.Rat, len(v.data))
	copy(out, v.data)
	return Vector{data: out}
}

func (v Vector) MagnitudeSq() bigrat.Rat {
	sum := bigrat.Zero()
	for _, x := range v.data {
		sum = sum.Add(x.Mul(x))
	}
	return sum
}

func (v Vector) IsZero() bool {
	for _, x := range v.data {
		if !x.IsZero() {
			return false
		}
	}
	return true
}

func (v Vector) Add(o Vector) Vector {
	out := make([]bigrat.Rat, len(v.data))
	for i := range v.data {
		out[i] = v.data[i].Add(o.data[i])
	}
	return Vector{data: out}
}

func (v Vector) Sub(o Vector) Vector {
	out := make([]bigrat.Rat, len(v.data))
	for i := range v.data {
		out[i] = v.data[i].Sub(o.data[i])
	}
	return Vector{data: out}
}

func (v *Vector) SubAssign(o Vector) {
	for i := range v.data {
		v.data[i] = v.data[i].Sub(o.data[i])
	}
}

func (v *Vector) AddAssign(o Vector) {
	for i := range v.data {
		v.data[i] = v.data[i].Add(o.data[i])
	}
}

func (v Vector) MulScalar(s bigrat.Rat) Vector {
	out := make([]bigrat.Rat, len(v.data))
	for i := range v.data {
		out[i] = v.data[i].Mul(s)
	}
	return Vector{data: out}
}

func (v *Vector) MulScalarAssign(s bigrat.Rat) {
	for i := range v.data {
		v.data[i] = v.data[i].Mul(s)
	}
}

func (v *Vector) DivScalarAssign(s bigrat.Rat) {
	v.MulScalarAssign(bigrat.One().Div(s))
}

func (v Vector) Dot(o Vector) bigrat.Rat {
	sum := bigrat.Zero()
	for i := range v.data {
		sum = sum.Add(v.data[i].Mul(o.data[i]))
	}
	return sum
}

func (v *Vector) Swap(i, j int) { v.data[i], v.data[j] = v.data[j], v.data[i] }

// Basis returns a vector of the given size with scale at position i and
// zero elsewhere.
func Basis(size, i int, scale bigrat.Rat) Vector {
	v := NewVector(size)
	v.Set(i, scale)
	return v
}

func BasisOne(size, i int) Vector {
	return Basis(size, i, bigrat.One())
}
