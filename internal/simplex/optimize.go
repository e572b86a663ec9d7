// Package simplex implements the two-phase simplex method over exact
// rational arithmetic (component H of the dungeon cracker): the
// enumeration search (internal/enumerate) uses it to compute, at each
// lattice basis dimension, the feasible interval for the next
// coordinate given the hyperbox bounds and the ancestor path already
// fixed by shallower branches.
package simplex

import (
	"fmt"

	"github.com/XMinty77/DungeonCracker/internal/bigrat"
	"github.com/XMinty77/DungeonCracker/internal/matrix"
)

// Optimize is a simplex tableau in canonical form: basics[row] names
// the variable basic in that row, nonbasics[col] names the variable
// represented by that column, and transform maps the reduced tableau's
// variables back to the caller's original coordinate space.
type Optimize struct {
	table      matrix.Matrix
	basics     []int
	nonbasics  []int
	transform  matrix.Matrix
	rows, cols int
}

func newOptimize(table matrix.Matrix, basics, nonbasics []int, transform matrix.Matrix) Optimize {
	return Optimize{
		table:     table,
		basics:    append([]int(nil), basics...),
		nonbasics: append([]int(nil), nonbasics...),
		transform: transform,
		rows:      table.RowCount(),
		cols:      table.ColCount(),
	}
}

func (o Optimize) TableSize() (int, int) { return o.rows, o.cols }

// Clone returns an independent copy: Minimize/Maximize mutate the
// tableau in place, so callers that need the same starting point for
// more than one optimization (as the enumeration search does, to
// minimize and then maximize the same dimension) must clone first.
func (o Optimize) Clone() Optimize {
	return Optimize{
		table:     o.table.Clone(),
		basics:    append([]int(nil), o.basics...),
		nonbasics: append([]int(nil), o.nonbasics...),
		transform: o.transform,
		rows:      o.rows,
		cols:      o.cols,
	}
}

func (o *Optimize) transformForTable(lhs matrix.Vector, rhs bigrat.Rat) matrix.Vector {
	tcols := o.transform.ColCount()
	transformed := matrix.NewVector(tcols)
	transformed.Set(tcols-1, rhs)

	for row := 0; row < o.transform.RowCount(); row++ {
		x := lhs.Get(row)
		trRow := o.transform.GetRow(row)
		scaled := trRow.MulScalar(x)
		transformed.SubAssign(scaled)
	}

	eliminated := matrix.NewVector(o.cols)
	for col := 0; col < o.cols-1; col++ {
		eliminated.Set(col, transformed.Get(o.nonbasics[col]))
	}
	eliminated.Set(o.cols-1, transformed.Get(tcols-1))

	for row := 0; row < o.rows-1; row++ {
		x := transformed.Get(o.basics[row])
		tRow := o.table.GetRow(row)
		scaled := tRow.MulScalar(x)
		eliminated.SubAssign(scaled)
	}

	return eliminated
}

// Maximize finds x maximizing gradient.x subject to this tableau's
// constraints, returning x in the caller's coordinate space and the
// optimal objective value.
func (o *Optimize) Maximize(gradient matrix.Vector) (matrix.Vector, bigrat.Rat) {
	neg := matrix.NewVector(gradient.Dimension())
	for i := 0; i < gradient.Dimension(); i++ {
		neg.Set(i, gradient.Get(i).Neg())
	}
	res, val := o.Minimize(neg)
	return res, val.Neg()
}

// Minimize finds x minimizing gradient.x subject to this tableau's
// constraints.
func (o *Optimize) Minimize(gradient matrix.Vector) (matrix.Vector, bigrat.Rat) {
	if gradient.Dimension() != o.transform.RowCount() {
		panic("simplex: gradient dimension mismatch")
	}

	objRow := matrix.NewVector(o.cols)
	o.table.SetRow(o.rows-1, objRow)

	negTransformed := o.transformForTable(gradient, bigrat.Zero())
	for c := 0; c < o.cols; c++ {
		val := o.table.Get(o.rows-1, c).Sub(negTransformed.Get(c))
		o.table.Set(o.rows-1, c, val)
	}

	o.solve()

	tcols := o.transform.ColCount()
	result := o.transform.GetCol(tcols - 1)

	for row := 0; row < o.rows-1; row++ {
		v0 := o.basics[row]
		scale := o.table.Get(row, o.cols-1)
		colVec := o.transform.GetCol(v0)
		scaled := colVec.MulScalar(scale)
		result.SubAssign(scaled)
	}

	objVal := o.table.Get(o.rows-1, o.cols-1)
	return result, objVal
}

func (o *Optimize) solve() {
	iters := 0
	for o.step() {
		iters++
		if iters > 1_000_000 {
			break
		}
	}
}

func (o *Optimize) step() bool {
	entering := -1
	candidate := bigrat.Zero()

	for col := 0; col < o.cols-1; col++ {
		x := o.table.Get(o.rows-1, col)
		if x.Sign() <= 0 {
			continue
		}
		if entering != -1 && x.Cmp(candidate) <= 0 {
			continue
		}
		entering = col
		candidate = x
	}

	if entering == -1 {
		return false
	}

	exiting := -1
	candidate = bigrat.Zero()

	for row := 0; row < o.rows-1; row++ {
		x := o.table.Get(row, entering)
		if x.Sign() <= 0 {
			continue
		}
		y := o.table.Get(row, o.cols-1).Div(x)
		if exiting != -1 && y.Cmp(candidate) >= 0 {
			continue
		}
		exiting = row
		candidate = y
	}

	if exiting == -1 {
		panic("simplex: unbounded LP")
	}
	o.pivot(entering, exiting)
	return true
}

func (o *Optimize) pivot(entering, exiting int) {
	rows, cols := o.rows, o.cols
	pivot := o.table.Get(exiting, entering)

	for col := 0; col < cols; col++ {
		if col == entering {
			continue
		}
		val := o.table.Get(exiting, col).Div(pivot)
		o.table.Set(exiting, col, val)
	}

	for row := 0; row < rows; row++ {
		if row == exiting {
			continue
		}
		x := o.table.Get(row, entering)
		for col := 0; col < cols; col++ {
			if col == entering {
				continue
			}
			y := o.table.Get(exiting, col)
			val := o.table.Get(row, col).Sub(x.Mul(y))
			o.table.Set(row, col, val)
		}
		val := x.Div(pivot).Neg()
		o.table.Set(row, entering, val)
	}

	recip := bigrat.One().Div(pivot)
	o.table.Set(exiting, entering, recip)

	o.nonbasics[entering], o.basics[exiting] = o.basics[exiting], o.nonbasics[entering]
}

// WithStrictBound returns a new Optimize with one additional equality
// constraint lhs.x == rhs (the row is negated first when rhs is
// negative), used by the enumeration search to fix the coordinate a
// child branch has chosen without re-deriving the whole tableau.
func (o *Optimize) WithStrictBound(lhs matrix.Vector, rhs bigrat.Rat) Optimize {
	newTable := matrix.New(o.rows+1, o.cols)

	for row := 0; row < o.rows-1; row++ {
		for col := 0; col < o.cols; col++ {
			newTable.Set(row, col, o.table.Get(row, col))
		}
	}

	boundRow := o.transformForTable(lhs, rhs)
	for col := 0; col < o.cols; col++ {
		newTable.Set(o.rows-1, col, boundRow.Get(col))
	}

	if newTable.Get(o.rows-1, o.cols-1).Sign() < 0 {
		newTable.RowMultiply(o.rows-1, bigrat.MinusOne())
	}

	newBasics := append([]int(nil), o.basics...)
	newBasics = append(newBasics, (o.rows-1)+(o.cols-1))

	newNonbasics := append([]int(nil), o.nonbasics...)

	return fromTable(newTable, newBasics, newNonbasics, 1, o.transform)
}

func fromTable(table matrix.Matrix, basics, nonbasics []int, artificials int, transform matrix.Matrix) Optimize {
	rows := table.RowCount()
	cols := table.ColCount()

	realVariables := (rows - 1) + (cols - 1) - artificials

	for basicRow := 0; basicRow < rows-1; basicRow++ {
		if basics[basicRow] < realVariables {
			continue
		}
		for col := 0; col < cols; col++ {
			val := table.Get(rows-1, col).Add(table.Get(basicRow, col))
			table.Set(rows-1, col, val)
		}
	}

	opt := newOptimize(table, basics, nonbasics, matrix.New(1, 1))
	opt.solve()

	if opt.table.Get(opt.rows-1, opt.cols-1).Sign() != 0 {
		panic("simplex: table has no basic feasible solutions")
	}

	for row := 0; row < opt.rows-1; row++ {
		if opt.basics[row] >= realVariables {
			for col := 0; col < opt.cols-1; col++ {
				if opt.nonbasics[col] >= realVariables || opt.table.Get(row, col).Sign() == 0 {
					continue
				}
				opt.pivot(col, row)
				break
			}
		}
	}

	finalCols := cols - artificials
	finalTable := matrix.New(rows, finalCols)

	c0, c1 := 0, 0
	finalNonbasics := make([]int, finalCols-1)

	for c0 < finalCols-1 {
		for c1 < cols-1 && opt.nonbasics[c1] >= realVariables {
			c1++
		}
		if c1 >= cols-1 {
			break
		}
		for row := 0; row < rows-1; row++ {
			finalTable.Set(row, c0, opt.table.Get(row, c1))
		}
		finalNonbasics[c0] = opt.nonbasics[c1]
		c0++
		c1++
	}

	for row := 0; row < rows-1; row++ {
		finalTable.Set(row, finalCols-1, opt.table.Get(row, cols-1))
	}

	return newOptimize(finalTable, opt.basics, finalNonbasics, transform)
}

func fromInnerTable(innerTable matrix.Matrix, transform matrix.Matrix) Optimize {
	constraints := innerTable.RowCount()
	variables := innerTable.ColCount() - 1

	inner := innerTable.Clone()
	basics := make([]int, constraints)
	for i := range basics {
		basics[i] = -1
	}
	var nonbasicList []int

	for row := 0; row < constraints; row++ {
		if inner.Get(row, variables).Sign() < 0 {
			inner.RowMultiply(row, bigrat.MinusOne())
		}
	}

	for col := 0; col < variables; col++ {
		count := 0
		index := 0
		for row := 0; row < constraints; row++ {
			if inner.Get(row, col).Sign() != 0 {
				count++
				index = row
			}
		}
		if count == 1 && basics[index] == -1 && inner.Get(index, col).Sign() > 0 {
			pivot := inner.Get(index, col)
			inner.RowDivide(index, pivot)
			basics[index] = col
		} else {
			nonbasicList = append(nonbasicList, col)
		}
	}

	artificials := 0
	for row := 0; row < constraints; row++ {
		if basics[row] == -1 {
			basics[row] = variables + artificials
			artificials++
		}
	}

	nonbasicCount := variables - constraints + artificials
	nonbasics := append([]int(nil), nonbasicList...)
	table := matrix.New(constraints+1, nonbasicCount+1)

	for row := 0; row < constraints; row++ {
		for basicRow := 0; basicRow < constraints; basicRow++ {
			if basicRow == row || basics[basicRow] >= variables {
				continue
			}
			scale := inner.Get(row, basics[basicRow])
			if !scale.IsZero() {
				for c := 0; c < inner.ColCount(); c++ {
					val := inner.Get(row, c).Sub(inner.Get(basicRow, c).Mul(scale))
					inner.Set(row, c, val)
				}
			}
		}

		for col := 0; col < nonbasicCount; col++ {
			if col < len(nonbasics) {
				table.Set(row, col, inner.Get(row, nonbasics[col]))
			}
		}
		table.Set(row, nonbasicCount, inner.Get(row, variables))
	}

	finalNonbasics := make([]int, nonbasicCount)
	for i := 0; i < len(nonbasics) && i < nonbasicCount; i++ {
		finalNonbasics[i] = nonbasics[i]
	}

	return fromTable(table, basics, finalNonbasics, artificials, transform)
}

// Builder constructs an Optimize tableau from a set of lower/upper
// bound constraints over `size` real variables.
type Builder struct {
	size   int
	slacks []int
	lefts  []matrix.Vector
	rights []bigrat.Rat
}

func OfSize(size int) *Builder {
	return &Builder{size: size}
}

func (b *Builder) WithLowerBoundIdx(idx int, rhs bigrat.Rat) *Builder {
	b.lefts = append(b.lefts, matrix.BasisOne(b.size, idx))
	b.slacks = append(b.slacks, -1)
	b.rights = append(b.rights, rhs)
	return b
}

func (b *Builder) WithUpperBoundIdx(idx int, rhs bigrat.Rat) *Builder {
	b.lefts = append(b.lefts, matrix.BasisOne(b.size, idx))
	b.slacks = append(b.slacks, 1)
	b.rights = append(b.rights, rhs)
	return b
}

func (b *Builder) Build() Optimize {
	variables := b.size + len(b.slacks)
	constraint := 0
	slack := b.size

	maxRows := len(b.slacks) + b.size
	maxCols := variables + 2*b.size + 1
	table := matrix.New(maxRows, maxCols)

	for i := 0; i < len(b.slacks); i++ {
		for col := 0; col < b.size; col++ {
			table.Set(constraint, col, b.lefts[i].Get(col))
		}
		table.Set(constraint, variables+2*b.size, b.rights[i])

		if b.slacks[i] != 0 {
			table.Set(constraint, slack, bigrat.FromInt64(int64(b.slacks[i])))
			slack++
		}
		constraint++
	}

	size := b.size
	pivotRows := gaussJordanReduce(&table, nil, func(col int, _ []int) bool { return col < size })

	for col := 0; col < b.size; col++ {
		if pivotRows[col] != -1 {
			continue
		}
		table.Set(constraint, col, bigrat.One())
		table.Set(constraint, slack, bigrat.One())
		table.Set(constraint, slack+1, bigrat.MinusOne())
		constraint++
		slack += 2
	}

	pivotRows = gaussJordanReduceAll(&table)

	for col := 0; col < b.size; col++ {
		if pivotRows[col] == -1 {
			panic(fmt.Sprintf("simplex: could not remove column %d from table", col))
		}
	}

	maxPivot := -1
	for _, p := range pivotRows {
		if p > maxPivot {
			maxPivot = p
		}
	}
	constraint = maxPivot + 1

	slackCount := slack - b.size
	transform := matrix.New(b.size, slackCount+1)
	innerRows := 0
	if constraint > b.size {
		innerRows = constraint - b.size
	}
	rowsForInner := innerRows
	if rowsForInner < 1 {
		rowsForInner = 1
	}
	innerTable := matrix.New(rowsForInner, slackCount+1)

	for row := 0; row < b.size; row++ {
		for col := 0; col < slackCount; col++ {
			transform.Set(row, col, table.Get(row, b.size+col))
		}
		transform.Set(row, slackCount, table.Get(row, variables+2*b.size))
	}

	for row := 0; row < innerRows; row++ {
		for col := 0; col < slackCount; col++ {
			innerTable.Set(row, col, table.Get(b.size+row, b.size+col))
		}
		innerTable.Set(row, slackCount, table.Get(b.size+row, variables+2*b.size))
	}

	return fromInnerTable(innerTable, transform)
}
