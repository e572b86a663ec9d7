// Package enumerate implements the depth-first lattice point search
// (component E's enumeration half) over a reduced basis: given a basis,
// an origin, and a bounding Optimize tableau, it walks dimensions
// narrowest-first, picking integer coordinates center-outward at each
// depth, and exposes the root-level branch count so callers can split
// work across workers (SPEC_FULL.md §5).
package enumerate

import (
	"math/big"

	"github.com/XMinty77/DungeonCracker/internal/bigrat"
	"github.com/XMinty77/DungeonCracker/internal/matrix"
	"github.com/XMinty77/DungeonCracker/internal/simplex"
)

// Bounds builds the box constraint tableau [lower[i], upper[i]] for
// every basis dimension, the shape every entry point below needs.
func Bounds(size int, lower, upper matrix.Vector) simplex.Optimize {
	b := simplex.OfSize(size)
	for i := 0; i < size; i++ {
		b = b.WithLowerBoundIdx(i, lower.Get(i)).WithUpperBoundIdx(i, upper.Get(i))
	}
	return b.Build()
}

// emptyBox reports whether some lower[i] exceeds upper[i], so the box holds no points.
func emptyBox(lower, upper matrix.Vector) bool {
	for i := 0; i < lower.Dimension(); i++ {
		if lower.Get(i).Cmp(upper.Get(i)) > 0 {
			return true
		}
	}
	return false
}

// EnumerateBounds is the common entry point for the random-call reverser:
// build the box constraints from lower/upper and enumerate basis around
// origin in one call.
func EnumerateBounds(basis matrix.Matrix, lower, upper, origin matrix.Vector) []matrix.Vector {
	if emptyBox(lower, upper) {
		return nil
	}
	constraints := Bounds(basis.RowCount(), lower, upper)
	return Enumerate(basis, origin, constraints)
}

// BranchCountBounds is BranchCount for the common lower/upper box-constraint case.
func BranchCountBounds(basis matrix.Matrix, lower, upper, origin matrix.Vector) int64 {
	if emptyBox(lower, upper) {
		return 0
	}
	constraints := Bounds(basis.RowCount(), lower, upper)
	return BranchCount(basis, origin, constraints)
}

// EnumeratePartialBounds is EnumeratePartial for the common lower/upper box-constraint case.
func EnumeratePartialBounds(basis matrix.Matrix, lower, upper, origin matrix.Vector, branchStart, branchEnd int64) []matrix.Vector {
	constraints := Bounds(basis.RowCount(), lower, upper)
	return EnumeratePartial(basis, origin, constraints, branchStart, branchEnd)
}

// searchNode mirrors the reference SearchNode: everything a recursive
// enumeration step needs to pick the next dimension and narrow into a
// child branch.
type searchNode struct {
	size         int
	depth        int
	inverse      matrix.Matrix
	origin       matrix.Vector
	fixed        matrix.Vector
	constraints  simplex.Optimize
	order        []int
}

func dimensionOrder(size int, inverse matrix.Matrix, constraints simplex.Optimize) []int {
	widths := make([]bigrat.Rat, size)
	order := make([]int, size)
	for i := 0; i < size; i++ {
		gradient := inverse.GetRow(i)
		minC := constraints.Clone()
		_, minVal := minC.Minimize(gradient)
		maxC := constraints.Clone()
		_, maxVal := maxC.Maximize(gradient)
		widths[i] = maxVal.Sub(minVal)
		order[i] = i
	}
	for i := 1; i < size; i++ {
		j := i
		for j > 0 && widths[order[j]].Cmp(widths[order[j-1]]) < 0 {
			order[j], order[j-1] = order[j-1], order[j]
			j--
		}
	}
	return order
}

// Enumerate runs the full depth-first search and returns every lattice
// point (mapped back into the caller's original coordinate space via
// basis*fixed + origin) inside the feasible region.
func Enumerate(basis matrix.Matrix, origin matrix.Vector, constraints simplex.Optimize) []matrix.Vector {
	rootInverse := basis.Inverse()
	rootOrigin := rootInverse.MultiplyVector(origin)
	return enumerateRT(basis, origin, constraints, rootInverse, rootOrigin)
}

func enumerateRT(basis matrix.Matrix, origin matrix.Vector, constraints simplex.Optimize, rootInverse matrix.Matrix, rootOrigin matrix.Vector) []matrix.Vector {
	rootSize := basis.RowCount()
	root := searchNode{
		size:        rootSize,
		depth:       0,
		inverse:     rootInverse,
		origin:      rootOrigin,
		fixed:       matrix.NewVector(rootSize),
		constraints: constraints,
		order:       dimensionOrder(rootSize, rootInverse, constraints),
	}

	var results []matrix.Vector
	collectSolutions(root, &results)

	out := make([]matrix.Vector, len(results))
	for i, fixed := range results {
		transformed := basis.MultiplyVector(fixed)
		out[i] = origin.Add(transformed)
	}
	return out
}

func collectSolutions(node searchNode, results *[]matrix.Vector) {
	if node.depth == node.size {
		*results = append(*results, node.fixed.Clone())
		return
	}

	index := node.order[node.depth]
	gradient := node.inverse.GetRow(index)
	offset := node.origin.Get(index)

	minC := node.constraints.Clone()
	_, minVal := minC.Minimize(gradient)
	maxC := node.constraints.Clone()
	_, maxVal := maxC.Maximize(gradient)

	minInt := minVal.Sub(offset).Ceil()
	maxInt := maxVal.Sub(offset).Floor()

	if minInt.Cmp(maxInt) > 0 {
		return
	}

	lowerStart := new(big.Int).Rsh(new(big.Int).Add(minInt, maxInt), 1)
	upperStart := new(big.Int).Add(lowerStart, big.NewInt(1))

	lower := new(big.Int).Set(lowerStart)
	upper := new(big.Int).Set(upperStart)
	either := true

	for either {
		either = false

		if lower.Cmp(minInt) >= 0 {
			child := createChild(node, index, lower)
			collectSolutions(child, results)
			lower = new(big.Int).Sub(lower, big.NewInt(1))
			either = true
		}

		if upper.Cmp(maxInt) <= 0 {
			child := createChild(node, index, upper)
			collectSolutions(child, results)
			upper = new(big.Int).Add(upper, big.NewInt(1))
			either = true
		}
	}
}

func createChild(parent searchNode, index int, i *big.Int) searchNode {
	gradient := parent.inverse.GetRow(index)
	offset := parent.origin.Get(index)
	value := bigrat.FromBigInt(i)

	nextConstraints := parent.constraints.WithStrictBound(gradient, value.Add(offset))
	basisVec := matrix.Basis(parent.size, index, value)
	nextFixed := parent.fixed.Add(basisVec)

	return searchNode{
		size:        parent.size,
		depth:       parent.depth + 1,
		inverse:     parent.inverse,
		origin:      parent.origin,
		fixed:       nextFixed,
		constraints: nextConstraints,
		order:       parent.order,
	}
}

// BranchCount returns the number of depth-0 branches the full
// enumeration would explore, without actually descending past depth 0.
// This is the "total_branches" metadata the Prepare entry point exposes
// for external parallelism.
func BranchCount(basis matrix.Matrix, origin matrix.Vector, constraints simplex.Optimize) int64 {
	rootInverse := basis.Inverse()
	rootOrigin := rootInverse.MultiplyVector(origin)
	order := dimensionOrder(basis.RowCount(), rootInverse, constraints)

	index := order[0]
	gradient := rootInverse.GetRow(index)
	offset := rootOrigin.Get(index)

	minC := constraints.Clone()
	_, minVal := minC.Minimize(gradient)
	maxC := constraints.Clone()
	_, maxVal := maxC.Maximize(gradient)

	minInt := minVal.Sub(offset).Ceil()
	maxInt := maxVal.Sub(offset).Floor()

	if minInt.Cmp(maxInt) > 0 {
		return 0
	}

	count := new(big.Int).Sub(maxInt, minInt)
	count.Add(count, big.NewInt(1))
	if !count.IsInt64() {
		return 1<<62 - 1
	}
	return count.Int64()
}

// EnumeratePartial enumerates only the depth-0 branches in the
// half-open interval [branchStart, branchEnd), using the same
// center-outward branch ordering BranchCount and Enumerate use, so that
// disjoint [start,end) windows partition the result set exactly.
func EnumeratePartial(basis matrix.Matrix, origin matrix.Vector, constraints simplex.Optimize, branchStart, branchEnd int64) []matrix.Vector {
	rootInverse := basis.Inverse()
	rootOrigin := rootInverse.MultiplyVector(origin)
	rootSize := basis.RowCount()

	root := searchNode{
		size:        rootSize,
		depth:       0,
		inverse:     rootInverse,
		origin:      rootOrigin,
		fixed:       matrix.NewVector(rootSize),
		constraints: constraints,
		order:       dimensionOrder(rootSize, rootInverse, constraints),
	}

	var results []matrix.Vector
	collectSolutionsDepth0Partial(root, &results, branchStart, branchEnd)

	out := make([]matrix.Vector, len(results))
	for i, fixed := range results {
		transformed := basis.MultiplyVector(fixed)
		out[i] = origin.Add(transformed)
	}
	return out
}

func collectSolutionsDepth0Partial(node searchNode, results *[]matrix.Vector, branchStart, branchEnd int64) {
	if node.depth != 0 {
		panic("enumerate: collectSolutionsDepth0Partial must start at depth 0")
	}

	index := node.order[0]
	gradient := node.inverse.GetRow(index)
	offset := node.origin.Get(index)

	minC := node.constraints.Clone()
	_, minVal := minC.Minimize(gradient)
	maxC := node.constraints.Clone()
	_, maxVal := maxC.Maximize(gradient)

	minInt := minVal.Sub(offset).Ceil()
	maxInt := maxVal.Sub(offset).Floor()

	if minInt.Cmp(maxInt) > 0 {
		return
	}

	center := new(big.Int).Rsh(new(big.Int).Add(minInt, maxInt), 1)
	var allValues []*big.Int

	lower := new(big.Int).Set(center)
	upper := new(big.Int).Add(center, big.NewInt(1))
	either := true

	for either {
		either = false
		if lower.Cmp(minInt) >= 0 {
			allValues = append(allValues, new(big.Int).Set(lower))
			lower = new(big.Int).Sub(lower, big.NewInt(1))
			either = true
		}
		if upper.Cmp(maxInt) <= 0 {
			allValues = append(allValues, new(big.Int).Set(upper))
			upper = new(big.Int).Add(upper, big.NewInt(1))
			either = true
		}
	}

	total := int64(len(allValues))
	start := branchStart
	if start < 0 {
		start = 0
	}
	end := branchEnd
	if end > total {
		end = total
	}
	if end > int64(len(allValues)) {
		end = int64(len(allValues))
	}

	for idx := start; idx < end; idx++ {
		child := createChild(node, index, allValues[idx])
		collectSolutions(child, results)
	}
}
