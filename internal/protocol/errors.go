package protocol

const (
	// Transport/request validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrBadRequest      = "E_BAD_REQUEST"

	// Job routing/state.
	ErrJobNotFound = "E_JOB_NOT_FOUND"
	ErrJobBusy     = "E_JOB_BUSY"

	// Search-space errors, mirroring internal/dungeon's sentinel errors.
	ErrTooManyPossibilities    = "E_TOO_MANY_POSSIBILITIES"
	ErrNoValidInterpretations  = "E_NO_VALID_INTERPRETATIONS"
	ErrMutableSkipDuringSetup  = "E_MUTABLE_SKIP_DURING_SETUP"
	ErrInsufficientInformation = "E_INSUFFICIENT_INFORMATION"
	ErrDegenerateLattice       = "E_DEGENERATE_LATTICE"

	// Request-field validation, mirroring internal/dungeon and internal/mc.
	ErrBadVersion   = "E_BAD_VERSION"
	ErrBadBiome     = "E_BAD_BIOME"
	ErrBadFloorSize = "E_BAD_FLOOR_SIZE"
	ErrBadGrid      = "E_BAD_GRID"

	ErrInvalidRange = "E_INVALID_RANGE"
	ErrRateLimit    = "E_RATE_LIMIT"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:         {},
	ErrBadRequest:              {},
	ErrJobNotFound:             {},
	ErrJobBusy:                 {},
	ErrTooManyPossibilities:    {},
	ErrNoValidInterpretations:  {},
	ErrMutableSkipDuringSetup:  {},
	ErrInsufficientInformation: {},
	ErrDegenerateLattice:       {},
	ErrBadVersion:              {},
	ErrBadBiome:                {},
	ErrBadFloorSize:            {},
	ErrBadGrid:                 {},
	ErrInvalidRange:            {},
	ErrRateLimit:               {},
	ErrInternal:                {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
