// Package reverser ports the Java-random constraint search (random_reverser
// in the original tool): given the sequence of RNG calls a dungeon roll
// implies, it builds the lattice constraints those calls place on the
// LCG's internal state and feeds them to internal/enumerate.
package reverser

import (
	"github.com/XMinty77/DungeonCracker/internal/lcg"
)

// FilteredSkip represents a NextInt-shaped call whose outcome can't be
// pinned to an exact interval (e.g. the cobble/mossy distinction), so
// instead of a lattice constraint it is checked after the fact by
// replaying the candidate state and testing a predicate.
type FilteredSkip struct {
	SkipLCG lcg.LCG
	Filter  func(r *lcg.Rand) bool
}

func NewFilteredSkip(currentIndex int64, filter func(r *lcg.Rand) bool) FilteredSkip {
	return FilteredSkip{SkipLCG: lcg.Java.Combine(currentIndex), Filter: filter}
}

// CheckState advances rand to this skip's position and applies the filter.
func (f FilteredSkip) CheckState(r *lcg.Rand) bool {
	r.AdvanceLCG(f.SkipLCG)
	return f.Filter(r)
}
