package reverser

import (
	"testing"

	"github.com/XMinty77/DungeonCracker/internal/lcg"
)

func TestJavaRandomReverser_InitialState(t *testing.T) {
	rv := NewJavaRandomReverser(nil)
	if rv.Dimensions() != 0 {
		t.Fatalf("Dimensions() = %d, want 0 for a fresh reverser", rv.Dimensions())
	}
	if rv.SuccessChance() != 1.0 {
		t.Fatalf("SuccessChance() = %v, want 1.0 for a fresh reverser", rv.SuccessChance())
	}
	got, err := rv.GetBranchCount()
	if err != nil {
		t.Fatalf("GetBranchCount() returned error: %v", err)
	}
	if got != 1 {
		t.Fatalf("GetBranchCount() with no constraints = %d, want 1", got)
	}
}

func TestJavaRandomReverser_AddNextIntCallPanicsOnNonPositiveBound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("AddNextIntCall(0, ...) did not panic")
		}
	}()
	rv := NewJavaRandomReverser(nil)
	rv.AddNextIntCall(0, 0, 0)
}

func TestJavaRandomReverser_AddMeasuredSeedTracksDimensions(t *testing.T) {
	rv := NewJavaRandomReverser(nil)
	rv.AddMeasuredSeed(0, 100)
	if rv.Dimensions() != 1 {
		t.Fatalf("Dimensions() after one AddMeasuredSeed = %d, want 1", rv.Dimensions())
	}
	rv.AddMeasuredSeed(0, 100)
	if rv.Dimensions() != 2 {
		t.Fatalf("Dimensions() after two AddMeasuredSeed calls = %d, want 2", rv.Dimensions())
	}
}

func TestJavaRandomReverser_FindAllValidSeeds_SingleExactMeasurement(t *testing.T) {
	// Pinning the exact successor seed after one LCG step to a single value
	// (min == max) leaves no ambiguity: exactly one internal seed produces
	// it, and it must be the one we started from.
	const seed = int64(123456789)
	nextSeed := lcg.Java.NextSeed(seed)

	rv := NewJavaRandomReverser(nil)
	rv.AddMeasuredSeed(nextSeed, nextSeed)

	results, err := rv.FindAllValidSeeds()
	if err != nil {
		t.Fatalf("FindAllValidSeeds() returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("FindAllValidSeeds() = %v, want exactly one candidate", results)
	}
	if results[0] != seed {
		t.Fatalf("FindAllValidSeeds() = %v, want [%d]", results, seed)
	}
}

func TestJavaRandomReverser_FindSeedsForBranches_MatchesFindAllValidSeeds(t *testing.T) {
	const seed = int64(987654321)
	nextSeed := lcg.Java.NextSeed(seed)

	full := NewJavaRandomReverser(nil)
	full.AddMeasuredSeed(nextSeed, nextSeed)
	all, err := full.FindAllValidSeeds()
	if err != nil {
		t.Fatalf("FindAllValidSeeds() returned error: %v", err)
	}

	partial := NewJavaRandomReverser(nil)
	partial.AddMeasuredSeed(nextSeed, nextSeed)
	branches, err := partial.GetBranchCount()
	if err != nil {
		t.Fatalf("GetBranchCount() returned error: %v", err)
	}
	some, err := partial.FindSeedsForBranches(0, branches)
	if err != nil {
		t.Fatalf("FindSeedsForBranches() returned error: %v", err)
	}

	if len(some) != len(all) {
		t.Fatalf("FindSeedsForBranches(0, %d) returned %d results, FindAllValidSeeds returned %d", branches, len(some), len(all))
	}
}

func TestJavaRandomReverser_FilteredSkipExcludesNonMatchingCandidate(t *testing.T) {
	const seed = int64(42)
	nextSeed := lcg.Java.NextSeed(seed)

	// A filter that always rejects must drop every candidate, including the
	// otherwise-unique exact match.
	rejectAll := NewFilteredSkip(0, func(r *lcg.Rand) bool { return false })

	rv := NewJavaRandomReverser([]FilteredSkip{rejectAll})
	rv.AddMeasuredSeed(nextSeed, nextSeed)

	results, err := rv.FindAllValidSeeds()
	if err != nil {
		t.Fatalf("FindAllValidSeeds() returned error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("FindAllValidSeeds() with an always-false filter = %v, want none", results)
	}
}

func TestJavaRandomReverser_AddModuloMeasuredSeedFindsExactMatch(t *testing.T) {
	// A non-power-of-2 bound routes through AddModuloMeasuredSeed, which
	// grows the lattice by two dimensions (the residue-correction row plus
	// the measurement itself) instead of one.
	const seed = int64(55555)
	r := lcg.OfInternalSeed(lcg.Java, seed)
	roll := r.NextInt(37)

	rv := NewJavaRandomReverser(nil)
	rv.AddNextIntCall(37, roll, roll)

	results, err := rv.FindAllValidSeeds()
	if err != nil {
		t.Fatalf("FindAllValidSeeds() returned error: %v", err)
	}
	found := false
	for _, s := range results {
		if s == seed {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("FindAllValidSeeds() = %v, want it to contain %d", results, seed)
	}
}
