package simplex

import "github.com/XMinty77/DungeonCracker/internal/matrix"

// gaussJordanReduce performs Gauss-Jordan elimination on m, optionally
// applying the same row operations to the matrices in others (used to
// keep a transform matrix in lockstep with the table it was derived
// from). pivotCol advances are gated by keepGoing: once it returns
// false for a column, the whole reduction stops rather than skipping
// that one column, mirroring the reference "reduce real variables out,
// then stop" usage in OptimizeBuilder.build.
//
// Returns pivotRows[col] = the row holding that column's pivot, or -1.
func gaussJordanReduce(m *matrix.Matrix, others []*matrix.Matrix, keepGoing func(col int, pivotRows []int) bool) []int {
	rows := m.RowCount()
	cols := m.ColCount()
	pivotRows := make([]int, cols)
	for i := range pivotRows {
		pivotRows[i] = -1
	}

	row := 0
	pivotCol := 0

	for row < rows && pivotCol < cols {
		pivotRow := -1
		for pr := row; pr < rows; pr++ {
			if !m.Get(pr, pivotCol).IsZero() {
				pivotRow = pr
				break
			}
		}

		if pivotRow != -1 {
			pivot := m.Get(pivotRow, pivotCol)
			m.RowDivide(pivotRow, pivot)
			for _, o := range others {
				o.RowDivide(pivotRow, pivot)
			}

			for i := 0; i < rows; i++ {
				if i == pivotRow {
					continue
				}
				scale := m.Get(i, pivotCol)
				if !scale.IsZero() {
					m.RowSubtractScaled(i, pivotRow, scale)
					for _, o := range others {
						o.RowSubtractScaled(i, pivotRow, scale)
					}
				}
			}

			if pivotRow != row {
				m.SwapRows(row, pivotRow)
				for _, o := range others {
					o.SwapRows(row, pivotRow)
				}
			}

			pivotRows[pivotCol] = row
			row++
		}

		for {
			pivotCol++
			if pivotCol >= cols || keepGoing(pivotCol, pivotRows) {
				break
			}
		}
	}

	return pivotRows
}

func gaussJordanReduceAll(m *matrix.Matrix) []int {
	return gaussJordanReduce(m, nil, func(int, []int) bool { return true })
}
