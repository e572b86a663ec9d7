package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrJobNotFound,
		ErrJobBusy,
		ErrTooManyPossibilities,
		ErrNoValidInterpretations,
		ErrMutableSkipDuringSetup,
		ErrInsufficientInformation,
		ErrDegenerateLattice,
		ErrBadVersion,
		ErrBadBiome,
		ErrBadFloorSize,
		ErrBadGrid,
		ErrInvalidRange,
		ErrRateLimit,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}
