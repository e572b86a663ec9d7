package enumerate

import (
	"fmt"
	"testing"

	"github.com/XMinty77/DungeonCracker/internal/bigrat"
	"github.com/XMinty77/DungeonCracker/internal/matrix"
)

func box2D() (matrix.Matrix, matrix.Vector, matrix.Vector, matrix.Vector) {
	basis := matrix.Identity(2)
	origin := matrix.NewVector(2)
	lower := matrix.VectorFromData([]bigrat.Rat{bigrat.FromInt64(0), bigrat.FromInt64(0)})
	upper := matrix.VectorFromData([]bigrat.Rat{bigrat.FromInt64(2), bigrat.FromInt64(2)})
	return basis, lower, upper, origin
}

func pointKey(v matrix.Vector) string {
	return fmt.Sprintf("%s,%s", v.Get(0), v.Get(1))
}

func TestEnumerateBounds_CoversEveryIntegerPointInBox(t *testing.T) {
	basis, lower, upper, origin := box2D()

	points := EnumerateBounds(basis, lower, upper, origin)
	if len(points) != 9 {
		t.Fatalf("expected 9 points in a 3x3 integer box, got %d", len(points))
	}

	seen := make(map[string]bool)
	for _, p := range points {
		seen[pointKey(p)] = true
	}
	if len(seen) != 9 {
		t.Fatalf("expected 9 distinct points, got %d", len(seen))
	}
	for x := int64(0); x <= 2; x++ {
		for y := int64(0); y <= 2; y++ {
			key := fmt.Sprintf("%s,%s", bigrat.FromInt64(x), bigrat.FromInt64(y))
			if !seen[key] {
				t.Fatalf("missing expected point (%d,%d)", x, y)
			}
		}
	}
}

func TestBranchCountBounds_MatchesRootDimensionWidth(t *testing.T) {
	basis, lower, upper, origin := box2D()

	count := BranchCountBounds(basis, lower, upper, origin)
	if count != 3 {
		t.Fatalf("expected 3 branches (values 0,1,2 along the narrowest-first dimension), got %d", count)
	}
}

func TestEnumeratePartialBounds_PartitionsFullResult(t *testing.T) {
	basis, lower, upper, origin := box2D()

	full := EnumerateBounds(basis, lower, upper, origin)
	total := BranchCountBounds(basis, lower, upper, origin)

	first := EnumeratePartialBounds(basis, lower, upper, origin, 0, 1)
	rest := EnumeratePartialBounds(basis, lower, upper, origin, 1, total)

	if int64(len(first))+int64(len(rest)) != int64(len(full)) {
		t.Fatalf("partial windows did not sum to the full result: %d + %d != %d", len(first), len(rest), len(full))
	}

	seen := make(map[string]string)
	for _, p := range first {
		seen[pointKey(p)] = "first"
	}
	for _, p := range rest {
		if seen[pointKey(p)] != "" {
			t.Fatalf("point %s appeared in both partial windows", pointKey(p))
		}
		seen[pointKey(p)] = "rest"
	}
	for _, p := range full {
		if seen[pointKey(p)] == "" {
			t.Fatalf("point %s from the full enumeration is missing from the partial windows", pointKey(p))
		}
	}
}

func TestEnumerateBounds_EmptyBoxReturnsNoPoints(t *testing.T) {
	basis := matrix.Identity(1)
	origin := matrix.NewVector(1)
	lower := matrix.VectorFromData([]bigrat.Rat{bigrat.FromInt64(5)})
	upper := matrix.VectorFromData([]bigrat.Rat{bigrat.FromInt64(3)})

	points := EnumerateBounds(basis, lower, upper, origin)
	if len(points) != 0 {
		t.Fatalf("expected no points for an infeasible box, got %d", len(points))
	}
	if count := BranchCountBounds(basis, lower, upper, origin); count != 0 {
		t.Fatalf("expected 0 branches for an infeasible box, got %d", count)
	}
}
