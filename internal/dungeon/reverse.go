package dungeon

import (
	"errors"
	"fmt"

	"github.com/XMinty77/DungeonCracker/internal/lcg"
	"github.com/XMinty77/DungeonCracker/internal/lll"
	"github.com/XMinty77/DungeonCracker/internal/mc"
	"github.com/XMinty77/DungeonCracker/internal/reverser"
)

// BiomeType narrows the decorator salt search space: deserts and
// everything else use different salts on 1.16+, so a known biome halves
// the candidate seed count for a dungeon cracked on that version.
type BiomeType int

const (
	BiomeUnknown BiomeType = iota
	BiomeDesert
	BiomeNotDesert
)

// FloorSize names the four spawner room footprints a dungeon can have;
// rooms narrower than 9 tiles on one axis are missing their outer ring on
// that axis.
type FloorSize int

const (
	Floor9x9 FloorSize = iota
	Floor7x9
	Floor9x7
	Floor7x7
)

// ParseBiomeType maps the wire biome string to a BiomeType.
func ParseBiomeType(s string) (BiomeType, error) {
	switch s {
	case "", "UNKNOWN":
		return BiomeUnknown, nil
	case "DESERT":
		return BiomeDesert, nil
	case "NOT_DESERT":
		return BiomeNotDesert, nil
	default:
		return BiomeUnknown, fmt.Errorf("dungeon: unknown biome %q", s)
	}
}

func (b BiomeType) String() string {
	switch b {
	case BiomeDesert:
		return "DESERT"
	case BiomeNotDesert:
		return "NOT_DESERT"
	default:
		return "UNKNOWN"
	}
}

func (f FloorSize) XMin() int {
	if f == Floor7x7 || f == Floor7x9 {
		return 1
	}
	return 0
}

func (f FloorSize) ZMin() int {
	if f == Floor7x7 || f == Floor9x7 {
		return 1
	}
	return 0
}

func (f FloorSize) XMax() int {
	if f == Floor7x7 || f == Floor7x9 {
		return 8
	}
	return 9
}

func (f FloorSize) ZMax() int {
	if f == Floor7x7 || f == Floor9x7 {
		return 8
	}
	return 9
}

// String returns the wire token for f, e.g. "9x7".
func (f FloorSize) String() string {
	switch f {
	case Floor7x9:
		return "7x9"
	case Floor9x7:
		return "9x7"
	case Floor7x7:
		return "7x7"
	default:
		return "9x9"
	}
}

// ParseFloorSize maps a wire/CLI token to a FloorSize, defaulting the
// empty string to the full 9x9 room.
func ParseFloorSize(s string) (FloorSize, error) {
	switch s {
	case "", "9x9":
		return Floor9x9, nil
	case "7x9":
		return Floor7x9, nil
	case "9x7":
		return Floor9x7, nil
	case "7x7":
		return Floor7x7, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadFloorSize, s)
	}
}

// FloorGrid is always the full 9x9 room, row-major (index = z*9+x), even
// when FloorSize narrows which cells are actually read: cells outside the
// declared size are present but ignored. Each byte is a tile code 0-4
// (mossy, cobble, air, unknown, unknown-solid), matching the client's
// Floor.tiles encoding.
type FloorGrid [81]byte

// ParseFloorGrid decodes the wire/CLI form of a grid: 81 ASCII digits '0'-'4'.
func ParseFloorGrid(s string) (FloorGrid, error) {
	var g FloorGrid
	if len(s) != len(g) {
		return FloorGrid{}, fmt.Errorf("%w: want %d bytes, got %d", ErrBadGrid, len(g), len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '4' {
			return FloorGrid{}, fmt.Errorf("%w: byte %d is %q, want a digit 0-4", ErrBadGrid, i, s[i:i+1])
		}
		g[i] = c - '0'
	}
	return g, nil
}

// String encodes g back into its 81-digit wire form.
func (g FloorGrid) String() string {
	b := make([]byte, len(g))
	for i, v := range g {
		b[i] = '0' + v
	}
	return string(b)
}

func (g FloorGrid) to2D() [9][9]byte {
	var out [9][9]byte
	for z := 0; z < 9; z++ {
		for x := 0; x < 9; x++ {
			out[z][x] = g[z*9+x]
		}
	}
	return out
}

// BuildFloorGrid assembles a FloorGrid from one row string per row (north
// to south, i.e. increasing z), each exactly size's X-extent wide. Cells
// outside size's window, including any row beyond the given ones, default
// to 4 (unknown-solid), matching how the client leaves the outer ring of
// a narrower floor unobserved rather than forcing it to air.
func BuildFloorGrid(size FloorSize, rows []string) (FloorGrid, error) {
	var grid FloorGrid
	for i := range grid {
		grid[i] = 4
	}

	zMin, zMax := size.ZMin(), size.ZMax()
	xMin, xMax := size.XMin(), size.XMax()
	width := xMax - xMin

	if len(rows) > zMax-zMin {
		return FloorGrid{}, fmt.Errorf("%w: floor size %s takes at most %d rows, got %d", ErrBadGrid, size, zMax-zMin, len(rows))
	}
	for i, row := range rows {
		if len(row) != width {
			return FloorGrid{}, fmt.Errorf("%w: row %d must be %d characters wide for floor size %s, got %d", ErrBadGrid, i, width, size, len(row))
		}
		z := zMin + i
		for j := 0; j < width; j++ {
			c := row[j]
			if c < '0' || c > '4' {
				return FloorGrid{}, fmt.Errorf("%w: row %d has non-digit byte %q", ErrBadGrid, i, row[j:j+1])
			}
			grid[z*9+xMin+j] = c - '0'
		}
	}
	return grid, nil
}

// GetSequence flattens a 9x9 row-major ([z][x]) floor grid into the
// column-major tile sequence the parser expects, matching the client's
// Floor.getSequence(): x varies slowest, z fastest.
func GetSequence(floor [9][9]byte, size FloorSize) string {
	seq := make([]byte, 0, 81)
	for x := size.XMin(); x < size.XMax(); x++ {
		for z := size.ZMin(); z < size.ZMax(); z++ {
			seq = append(seq, '0'+floor[z][x])
		}
	}
	return string(seq)
}

// SequenceFromGrid is GetSequence for the flat FloorGrid wire/CLI form.
func SequenceFromGrid(grid FloorGrid, size FloorSize) string {
	return GetSequence(grid.to2D(), size)
}

// CrackResult holds every candidate seed a crack produced, at each of the
// three granularities the game distinguishes: the dungeon's own internal
// seed, the structure seed it implies, and the 64-bit world seeds
// consistent with that structure seed.
type CrackResult struct {
	DungeonSeeds   []int64
	StructureSeeds []int64
	WorldSeeds     []int64
}

// PrepareResult describes the search space a crack would explore, without
// running it, so a caller can decide how many workers to split it across.
type PrepareResult struct {
	TotalBranches int64
	Possibilities int
	Dimensions    int
	InfoBits      float32
}

var (
	ErrTooManyPossibilities    = errors.New("dungeon: too many floor interpretations (>128 unknown permutations)")
	ErrNoValidInterpretations  = errors.New("dungeon: no valid floor interpretations")
	ErrMutableSkipDuringSetup  = errors.New("dungeon: mutable skip encountered during reverser setup")
	ErrInsufficientInformation = errors.New("dungeon: not enough information in the floor pattern")
	ErrBadFloorSize            = errors.New("dungeon: unknown floor size")
	ErrBadGrid                 = errors.New("dungeon: malformed floor grid")
	ErrDegenerateLattice       = errors.New("dungeon: degenerate lattice: spawner constraints are linearly dependent")
)

type callKind int

const (
	callNextInt callKind = iota
	callSkip
)

type callEntry struct {
	kind  callKind
	bound int32
	value int32
	count int64
}

// CrackDungeon runs the full search: every floor interpretation is tried
// in turn, and their candidate seeds are merged.
func CrackDungeon(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, biome BiomeType, floorSize FloorSize, grid FloorGrid) (CrackResult, error) {
	return crackDungeon(spawnerX, spawnerY, spawnerZ, version, biome, SequenceFromGrid(grid, floorSize))
}

// PrepareCrack parses the floor and builds the reverser for the first
// interpretation, returning the branch count a caller can split across
// workers without running the search itself.
func PrepareCrack(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, floorSize FloorSize, grid FloorGrid) (PrepareResult, error) {
	return prepareCrack(spawnerX, spawnerY, spawnerZ, version, SequenceFromGrid(grid, floorSize))
}

// CrackDungeonPartial runs the search over only the depth-0 branches in
// [branchStart, branchEnd), for one worker's share of a Prepare'd job.
func CrackDungeonPartial(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, biome BiomeType, floorSize FloorSize, grid FloorGrid, branchStart, branchEnd int64) (CrackResult, error) {
	return crackDungeonPartial(spawnerX, spawnerY, spawnerZ, version, biome, SequenceFromGrid(grid, floorSize), branchStart, branchEnd)
}

func crackDungeon(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, biome BiomeType, floorSequence string) (CrackResult, error) {
	salts := getSalts(version, biome)

	possibilities, ok := GetAllPossibilities(floorSequence)
	if !ok {
		return CrackResult{}, ErrTooManyPossibilities
	}

	structSeeds := make(map[int64]struct{})
	dungeonSeeds := make(map[int64]struct{})

	for _, program := range possibilities {
		rv, infoBits, err := buildReverser(spawnerX, spawnerY, spawnerZ, version, program)
		if err != nil {
			return CrackResult{}, err
		}
		if infoBits <= 32.0 {
			return CrackResult{}, ErrInsufficientInformation
		}

		dungeonSeedsXored, err := rv.FindAllValidSeeds()
		if err != nil {
			return CrackResult{}, wrapReverserError(err)
		}
		collectSeeds(dungeonSeedsXored, salts, spawnerX, spawnerZ, dungeonSeeds, structSeeds)
	}

	return finishResult(dungeonSeeds, structSeeds), nil
}

func prepareCrack(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, floorSequence string) (PrepareResult, error) {
	possibilities, ok := GetAllPossibilities(floorSequence)
	if !ok {
		return PrepareResult{}, ErrTooManyPossibilities
	}
	if len(possibilities) == 0 {
		return PrepareResult{}, ErrNoValidInterpretations
	}

	program := possibilities[0]
	rv, infoBits, err := buildReverser(spawnerX, spawnerY, spawnerZ, version, program)
	if err != nil {
		return PrepareResult{}, err
	}

	branchCount, err := rv.GetBranchCount()
	if err != nil {
		return PrepareResult{}, wrapReverserError(err)
	}

	return PrepareResult{
		TotalBranches: branchCount,
		Possibilities: len(possibilities),
		Dimensions:    rv.Dimensions(),
		InfoBits:      infoBits,
	}, nil
}

func crackDungeonPartial(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, biome BiomeType, floorSequence string, branchStart, branchEnd int64) (CrackResult, error) {
	salts := getSalts(version, biome)

	possibilities, ok := GetAllPossibilities(floorSequence)
	if !ok {
		return CrackResult{}, ErrTooManyPossibilities
	}

	structSeeds := make(map[int64]struct{})
	dungeonSeeds := make(map[int64]struct{})

	for _, program := range possibilities {
		rv, infoBits, err := buildReverser(spawnerX, spawnerY, spawnerZ, version, program)
		if err != nil {
			return CrackResult{}, err
		}
		if infoBits <= 32.0 {
			return CrackResult{}, ErrInsufficientInformation
		}

		dungeonSeedsXored, err := rv.FindSeedsForBranches(branchStart, branchEnd)
		if err != nil {
			return CrackResult{}, wrapReverserError(err)
		}
		collectSeeds(dungeonSeedsXored, salts, spawnerX, spawnerZ, dungeonSeeds, structSeeds)
	}

	return finishResult(dungeonSeeds, structSeeds), nil
}

// wrapReverserError maps a *lll.DegenerateLatticeError bubbling up from
// internal/reverser onto the package's own sentinel, so callers never
// need to import internal/lll just to compare errors.
func wrapReverserError(err error) error {
	var degenerate *lll.DegenerateLatticeError
	if errors.As(err, &degenerate) {
		return fmt.Errorf("%w: %v", ErrDegenerateLattice, degenerate)
	}
	return err
}

// collectSeeds replays each candidate dungeon seed back through the
// decorator-seed derivation (8 decoration attempts per salt, walking
// backwards 5 calls each time, matching the client's retry loop) and
// reverses every population seed it produces into structure seeds.
func collectSeeds(dungeonSeedsXored []int64, salts []int64, spawnerX, spawnerZ int32, dungeonSeeds, structSeeds map[int64]struct{}) {
	rand := mc.NewChunkRand()

	for _, seed := range dungeonSeedsXored {
		dungeonSeeds[seed] = struct{}{}

		for _, salt := range salts {
			rand.JRand.SetSeed(seed, false)

			for i := 0; i < 8; i++ {
				popSeed := (rand.JRand.GetSeed() ^ lcg.Java.Multiplier) - salt
				chunkX := (spawnerX >> 4) << 4
				chunkZ := (spawnerZ >> 4) << 4

				partialStructSeeds := mc.ReversePopulationSeed(popSeed, chunkX, chunkZ, mc.V1_14)
				for _, ss := range partialStructSeeds {
					structSeeds[ss&mc.Mask48] = struct{}{}
				}

				rand.JRand.Advance(-5)
			}
		}
	}
}

func finishResult(dungeonSeeds, structSeeds map[int64]struct{}) CrackResult {
	worldSeeds := make(map[int64]struct{})
	for structSeed := range structSeeds {
		for _, ws := range mc.GetNextLongEquivalents(structSeed) {
			worldSeeds[ws] = struct{}{}
		}
	}

	return CrackResult{
		DungeonSeeds:   keysOf(dungeonSeeds),
		StructureSeeds: keysOf(structSeeds),
		WorldSeeds:     keysOf(worldSeeds),
	}
}

func keysOf(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// buildReverser turns one floor interpretation into a JavaRandomReverser
// seeded with the spawner-position calls, the 2-call decoration skip, and
// the per-tile calls the program implies.
func buildReverser(spawnerX, spawnerY, spawnerZ int32, version mc.MCVersion, program []ReverserInstruction) (*reverser.JavaRandomReverser, float32, error) {
	offsetX := spawnerX & 15
	y := spawnerY
	offsetZ := spawnerZ & 15

	var filteredSkips []reverser.FilteredSkip
	var callSequence []callEntry
	currentIndex := int64(0)

	if version.IsBetween(mc.V1_8, mc.V1_14) {
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 16, value: offsetX})
		currentIndex++
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 256, value: y})
		currentIndex++
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 16, value: offsetZ})
		currentIndex++
	} else {
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 16, value: offsetX})
		currentIndex++
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 16, value: offsetZ})
		currentIndex++
		callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 256, value: y})
		currentIndex++
	}

	callSequence = append(callSequence, callEntry{kind: callSkip, count: 2})
	currentIndex += 2

	infoBits := float32(16.0)
	for _, instr := range program {
		switch instr.Type {
		case NextInt:
			callSequence = append(callSequence, callEntry{kind: callNextInt, bound: 4, value: 0})
			infoBits += 2.0
			currentIndex++
		case FilteredSkip:
			idx := currentIndex
			filteredSkips = append(filteredSkips, reverser.NewFilteredSkip(idx, func(r *lcg.Rand) bool {
				return r.NextInt(4) != 0
			}))
			callSequence = append(callSequence, callEntry{kind: callSkip, count: 1})
			infoBits += 0.4
			currentIndex++
		case Skip:
			count := int64(instr.MaxCallCount)
			callSequence = append(callSequence, callEntry{kind: callSkip, count: count})
			currentIndex += count
		case MutableSkip:
			return nil, 0, ErrMutableSkipDuringSetup
		default:
			return nil, 0, fmt.Errorf("dungeon: unknown instruction type %v", instr.Type)
		}
	}

	rv := reverser.NewJavaRandomReverser(filteredSkips)
	for _, entry := range callSequence {
		switch entry.kind {
		case callNextInt:
			rv.AddNextIntCall(entry.bound, entry.value, entry.value)
		case callSkip:
			rv.AddUnmeasuredSeeds(entry.count)
		}
	}

	return rv, infoBits, nil
}

func getSalts(version mc.MCVersion, biome BiomeType) []int64 {
	if version.IsNewerThan(mc.V1_15) {
		switch biome {
		case BiomeDesert:
			return []int64{30003}
		case BiomeNotDesert:
			return []int64{30002}
		default:
			return []int64{30002, 30003}
		}
	}
	return []int64{20003}
}
