// Package dungeon implements the dungeon floor model and the reverse-seed
// search that turns an observed floor layout into candidate world seeds:
// it parses the floor into a sequence of RNG call instructions, builds the
// lattice constraints those calls impose on the spawner roll, and drives
// the enumeration search (internal/enumerate) to recover seeds, replaying
// each candidate through internal/mc to confirm it actually places the
// floor that was observed.
package dungeon

// InstructionType names the kind of RNG interaction a floor tile implies
// during dungeon placement's per-tile generation loop.
type InstructionType int

const (
	NextInt InstructionType = iota
	FilteredSkip
	Skip
	MutableSkip
)

// ReverserInstruction is one step of the replayed RNG call sequence: most
// tiles call the RNG a fixed number of times (MinCallCount == MaxCallCount),
// but a run of Unknown tiles collapses into a single MutableSkip whose call
// count is only bounded, since the real tile underneath could be solid or
// air.
type ReverserInstruction struct {
	Type         InstructionType
	MinCallCount int32
	MaxCallCount int32
}

func NewInstruction(t InstructionType, minCalls, maxCalls int32) ReverserInstruction {
	return ReverserInstruction{Type: t, MinCallCount: minCalls, MaxCallCount: maxCalls}
}

func SingleInstruction(t InstructionType) ReverserInstruction {
	return NewInstruction(t, 1, 1)
}

// InstructionFromTileIndex maps a floor tile code to the instruction it
// contributes to the replay sequence: 0=mossy (FilteredSkip), 1=cobble
// (NextInt), 2=air (no instruction), 3=unknown (MutableSkip, 0 or 1 calls),
// 4=unknown-solid (Skip).
func InstructionFromTileIndex(index byte) (ReverserInstruction, bool) {
	switch index {
	case 0:
		return SingleInstruction(FilteredSkip), true
	case 1:
		return SingleInstruction(NextInt), true
	case 3:
		return NewInstruction(MutableSkip, 0, 1), true
	case 4:
		return SingleInstruction(Skip), true
	default:
		return ReverserInstruction{}, false
	}
}
