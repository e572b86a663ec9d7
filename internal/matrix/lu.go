package matrix

import "github.com/XMinty77/DungeonCracker/internal/bigrat"

// Inverse computes the inverse of a square matrix by LU decomposition
// with partial pivoting, over exact rational arithmetic. Panics if the
// matrix is singular (which, for the enumeration search's root basis,
// can only happen if the caller handed it a degenerate lattice).
func (m Matrix) Inverse() Matrix {
	if !m.IsSquare() {
		panic("matrix: inverse requires a square matrix")
	}
	size := m.RowCount()

	a := m.Clone()
	inv := Identity(size)

	for i := 0; i < size; i++ {
		pivot := -1
		biggest := bigrat.Zero()
		for row := i; row < size; row++ {
			d := a.Get(row, i).Abs()
			if d.Cmp(biggest) > 0 {
				biggest = d
				pivot = row
			}
		}
		if pivot == -1 {
			panic("matrix: singular matrix")
		}

		inv.SwapRows(i, pivot)
		if pivot != i {
			a.SwapRows(i, pivot)
		}

		for row := i + 1; row < size; row++ {
			val := a.Get(row, i).Div(a.Get(i, i))
			a.Set(row, i, val)
		}

		for row := i + 1; row < size; row++ {
			for col := i + 1; col < size; col++ {
				val := a.Get(row, col).Sub(a.Get(row, i).Mul(a.Get(i, col)))
				a.Set(row, col, val)
			}
		}
	}

	for dcol := 0; dcol < size; dcol++ {
		for row := 0; row < size; row++ {
			for col := 0; col < row; col++ {
				val := inv.Get(row, dcol).Sub(a.Get(row, col).Mul(inv.Get(col, dcol)))
				inv.Set(row, dcol, val)
			}
		}
	}

	for dcol := 0; dcol < size; dcol++ {
		for row := size - 1; row >= 0; row-- {
			for col := size - 1; col > row; col-- {
				val := inv.Get(row, dcol).Sub(a.Get(row, col).Mul(inv.Get(col, dcol)))
				inv.Set(row, dcol, val)
			}
			val := inv.Get(row, dcol).Div(a.Get(row, row))
			inv.Set(row, dcol, val)
		}
	}

	return inv
}
