// Package lll implements Lenstra-Lenstra-Lovász lattice basis reduction
// over exact rational arithmetic, following Cohen's "A Course in
// Computational Algebraic Number Theory" (the algorithm LattiCG's
// LLL.java implements, and which the dungeon reverser's lattice
// construction in internal/dungeon depends on for keeping its root-level
// branch count tractable).
package lll

import (
	"math/big"

	"github.com/XMinty77/DungeonCracker/internal/bigrat"
	"github.com/XMinty77/DungeonCracker/internal/matrix"
)

// Params controls the reduction quality/speed tradeoff. Delta is the
// Lovász condition parameter; standard LLL uses 3/4, but tighter
// reduction (closer to 1) shrinks the enumeration tree further at the
// cost of more swaps. MaxStage limits how many basis vectors are
// touched; -1 means "all of them".
type Params struct {
	Delta    bigrat.Rat
	MaxStage int
}

// Default is the textbook delta = 3/4.
func Default() Params {
	return Params{Delta: bigrat.New(big.NewInt(75), big.NewInt(100)), MaxStage: -1}
}

// Recommended is delta = 99/100, used by the dungeon reverser because
// its lattices are small enough that the extra reduction quality is
// worth the additional swaps.
func Recommended() Params {
	return Params{Delta: bigrat.New(big.NewInt(99), big.NewInt(100)), MaxStage: -1}
}

// Result holds the reduced basis, the unimodular transformation that
// produced it from the input lattice, and how many input rows were
// linearly dependent (and therefore dropped as zero rows).
type Result struct {
	NumDependentVectors int
	ReducedBasis        matrix.Matrix
	Transformations     matrix.Matrix
}

// DegenerateLatticeError reports an input basis whose rows are not all
// linearly independent. The reduction still completes (dependent rows
// collapse to zero and are dropped), but callers that require full
// rank must treat this as fatal per the constraint system's contract.
type DegenerateLatticeError struct {
	NumDependentVectors int
}

func (e *DegenerateLatticeError) Error() string {
	return "lll: degenerate lattice: dependent vectors present"
}

// Reduce runs LLL reduction on lattice, a rows x cols matrix whose rows
// are the basis vectors (rows may exceed cols, as when a redundant
// generator is deliberately added so LLL can discover and drop a
// dependency), returning the reduced basis and its transformation from
// the original. Rows found to be linearly dependent collapse to zero
// and are dropped; Result reports how many.
func Reduce(lattice matrix.Matrix, params Params) Result {
	nbRows := lattice.RowCount()
	nbCols := lattice.ColCount()

	basis := lattice.Clone()
	baseGSO := matrix.New(nbRows, nbCols)
	mu := matrix.New(nbRows, nbRows)
	norms := matrix.NewVector(nbRows)
	coordinates := matrix.Identity(nbRows)

	baseGSO.SetRow(0, basis.GetRow(0))
	norms.Set(0, basis.GetRow(0).MagnitudeSq())

	k := 1
	kmax := 0
	updateGSO := true
	n := nbRows
	if params.MaxStage != -1 {
		n = params.MaxStage
	}

	for k < n {
		if k > kmax && updateGSO {
			kmax = k
			updateGSOAt(basis, &baseGSO, &mu, &norms, k)
		}

		red(&basis, &coordinates, &mu, k, k-1)

		if testCondition(mu, norms, k, params.Delta) {
			swapg(&basis, &coordinates, &baseGSO, &mu, &norms, k, kmax)
			if k > 1 {
				k--
			} else {
				k = 1
			}
			updateGSO = false
		} else {
			if k >= 2 {
				for l := k - 2; l >= 0; l-- {
					red(&basis, &coordinates, &mu, k, l)
				}
			}
			k++
			updateGSO = true
		}
	}

	p := countZeroRows(basis)
	if p > 0 {
		newRows := nbRows - p
		basis = basis.Submatrix(p, 0, newRows, nbCols)
		coordinates = coordinates.Submatrix(p, 0, newRows, coordinates.ColCount())
	}

	return Result{
		NumDependentVectors: p,
		ReducedBasis:        basis,
		Transformations:     coordinates,
	}
}

func countZeroRows(basis matrix.Matrix) int {
	p := 0
	for i := 0; i < basis.RowCount(); i++ {
		if basis.GetRow(i).IsZero() {
			p++
		}
	}
	return p
}

func updateGSOAt(basis matrix.Matrix, baseGSO *matrix.Matrix, mu *matrix.Matrix, norms *matrix.Vector, k int) {
	newRow := basis.GetRow(k)
	for j := 0; j < k; j++ {
		if !norms.Get(j).IsZero() {
			muKJ := basis.GetRow(k).Dot(baseGSO.GetRow(j)).Div(norms.Get(j))
			mu.Set(k, j, muKJ)
			scaled := baseGSO.GetRow(j).MulScalar(muKJ)
			newRow.SubAssign(scaled)
		} else {
			mu.Set(k, j, bigrat.Zero())
		}
	}
	baseGSO.SetRow(k, newRow)
	norms.Set(k, newRow.MagnitudeSq())
}

func testCondition(mu matrix.Matrix, norms matrix.Vector, k int, delta bigrat.Rat) bool {
	muTemp := mu.Get(k, k-1)
	factor := delta.Sub(muTemp.Mul(muTemp))
	return norms.Get(k).Cmp(norms.Get(k-1).Mul(factor)) < 0
}

func red(basis *matrix.Matrix, coordinates *matrix.Matrix, mu *matrix.Matrix, i, j int) {
	r := mu.Get(i, j).Round()
	if r.Sign() == 0 {
		return
	}
	rRat := bigrat.FromBigInt(r)

	rowJ := basis.GetRow(j).MulScalar(rRat)
	rowI := basis.GetRow(i)
	rowI.SubAssign(rowJ)
	basis.SetRow(i, rowI)

	coordJ := coordinates.GetRow(j).MulScalar(rRat)
	coordI := coordinates.GetRow(i)
	coordI.SubAssign(coordJ)
	coordinates.SetRow(i, coordI)

	newMu := mu.Get(i, j).Sub(rRat)
	mu.Set(i, j, newMu)

	for col := 0; col < j; col++ {
		newVal := mu.Get(i, col).Sub(mu.Get(j, col).Mul(rRat))
		mu.Set(i, col, newVal)
	}
}

func swapg(basis *matrix.Matrix, coordinates *matrix.Matrix, baseGSO *matrix.Matrix, mu *matrix.Matrix, norms *matrix.Vector, k, kmax int) {
	basis.SwapRows(k, k-1)
	coordinates.SwapRows(k, k-1)

	if k > 1 {
		for j := 0; j <= k-2; j++ {
			swapMuElements(mu, k, j, k-1, j)
		}
	}

	tmu := mu.Get(k, k-1)
	tb := norms.Get(k).Add(tmu.Mul(tmu).Mul(norms.Get(k - 1)))

	switch {
	case tb.IsZero():
		norms.Set(k, norms.Get(k-1))
		norms.Set(k-1, bigrat.Zero())
		baseGSO.SwapRows(k, k-1)
		for i := k + 1; i <= kmax; i++ {
			mu.Set(i, k, mu.Get(i, k-1))
			mu.Set(i, k-1, bigrat.Zero())
		}
	case norms.Get(k).IsZero() && !tmu.IsZero():
		norms.Set(k-1, tb)
		row := baseGSO.GetRow(k - 1).MulScalar(tmu)
		baseGSO.SetRow(k-1, row)
		mu.Set(k, k-1, bigrat.One().Div(tmu))
		for i := k + 1; i <= kmax; i++ {
			val := mu.Get(i, k-1).Div(tmu)
			mu.Set(i, k-1, val)
		}
	default:
		t := norms.Get(k - 1).Div(tb)
		mu.Set(k, k-1, tmu.Mul(t))

		b := baseGSO.GetRow(k - 1)
		gsoK := baseGSO.GetRow(k)

		newGSOKm1 := gsoK.Add(b.MulScalar(tmu))
		bkOverTB := norms.Get(k).Div(tb)
		newMuKK1 := mu.Get(k, k-1)
		newGSOK := b.MulScalar(bkOverTB).Sub(gsoK.MulScalar(newMuKK1))

		baseGSO.SetRow(k-1, newGSOKm1)
		baseGSO.SetRow(k, newGSOK)

		newBk := norms.Get(k).Mul(t)
		norms.Set(k, newBk)
		norms.Set(k-1, tb)

		for i := k + 1; i <= kmax; i++ {
			tVal := mu.Get(i, k)
			newIK := mu.Get(i, k-1).Sub(tmu.Mul(tVal))
			newIKm1 := tVal.Add(mu.Get(k, k-1).Mul(newIK))
			mu.Set(i, k, newIK)
			mu.Set(i, k-1, newIKm1)
		}
	}
}

func swapMuElements(mu *matrix.Matrix, r1, c1, r2, c2 int) {
	a, b := mu.Get(r1, c1), mu.Get(r2, c2)
	mu.Set(r1, c1, b)
	mu.Set(r2, c2, a)
}
