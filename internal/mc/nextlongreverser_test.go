package mc

import "testing"

func TestGetSeeds_RecoversInternalSeedFromItsOwnNextLong(t *testing.T) {
	for _, seed := range []int64{0, 1, 12345, -1, 0x123456789ABC, 0xFFFFFFFFFFFF} {
		internal := Mask(seed, 48)
		r := JRandOfInternalSeed(internal)
		structureSeed := r.NextLong()

		candidates := GetSeeds(structureSeed)
		if len(candidates) == 0 {
			t.Fatalf("GetSeeds(nextLong of internal seed %#x) returned no candidates", internal)
		}

		found := false
		for _, c := range candidates {
			if c == internal {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("GetSeeds(%#x) = %v, want a candidate equal to the source internal seed %#x", structureSeed, candidates, internal)
		}
	}
}

func TestGetSeeds_AtMostTwoCandidates(t *testing.T) {
	candidates := GetSeeds(0x1234567890AB)
	if len(candidates) > 2 {
		t.Fatalf("GetSeeds returned %d candidates, want at most 2", len(candidates))
	}
}

func TestGetNextLongEquivalents_MatchesStructureSeedBits(t *testing.T) {
	internal := Mask(98765, 48)
	r := JRandOfInternalSeed(internal)
	structureSeed := r.NextLong()

	equivalents := GetNextLongEquivalents(structureSeed)
	if len(equivalents) == 0 {
		t.Fatalf("GetNextLongEquivalents returned nothing for a solvable structure seed")
	}
	for _, eq := range equivalents {
		if eq != structureSeed {
			t.Fatalf("GetNextLongEquivalents() contains %d, want every entry == structureSeed %d", eq, structureSeed)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	cases := []struct{ x, y, want int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{0, 5, 0},
	}
	for _, c := range cases {
		if got := floorDiv(c.x, c.y); got != c.want {
			t.Fatalf("floorDiv(%d, %d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}
}
