// Package mc replays and reverses the pieces of Minecraft world generation
// a dungeon crack needs: the java.util.Random-compatible stream decoration
// uses to roll spawner/chest placement, and the closed-form inversions
// (Hensel lifting, nextLong reversal, population seed recovery) that turn a
// dungeon's observed rolls back into candidate world seeds.
package mc

import "github.com/XMinty77/DungeonCracker/internal/lcg"

// JRand is a java.util.Random equivalent used for world-gen simulation. It
// is a thin wrapper over lcg.Java kept separate from lcg.Rand (which exists
// for the lattice constraint builder) so the two call sites can evolve
// independently even though the underlying math is identical.
type JRand struct {
	seed int64
}

func NewJRand(seed int64) JRand {
	return JRand{seed: lcg.Java.Modop(seed ^ lcg.Java.Multiplier)}
}

func JRandOfInternalSeed(seed int64) JRand {
	return JRand{seed: lcg.Java.Modop(seed)}
}

func (r *JRand) SetSeed(seed int64, scramble bool) {
	if scramble {
		r.seed = lcg.Java.Modop(seed ^ lcg.Java.Multiplier)
	} else {
		r.seed = lcg.Java.Modop(seed)
	}
}

func (r JRand) GetSeed() int64 { return r.seed }

func (r *JRand) Next(bits int) int32 {
	r.seed = lcg.Java.NextSeed(r.seed)
	return int32(r.seed >> (48 - bits))
}

func (r *JRand) NextInt(bound int32) int32 {
	if bound <= 0 {
		panic("mc: bound must be positive")
	}

	if bound&(-bound) == bound {
		return int32((int64(bound) * int64(r.Next(31))) >> 31)
	}

	for {
		bits := r.Next(31)
		value := bits % bound
		if bits-value+(bound-1) >= 0 {
			return value
		}
	}
}

func (r *JRand) NextLong() int64 {
	return (int64(r.Next(32)) << 32) + int64(r.Next(32))
}

func (r *JRand) NextFloat() float32 {
	return float32(r.Next(24)) / float32(int32(1)<<24)
}

func (r *JRand) NextDouble() float64 {
	hi := int64(r.Next(26)) << 27
	lo := int64(r.Next(27))
	return float64(hi+lo) * (1.0 / float64(int64(1)<<53))
}

func (r *JRand) Advance(calls int64) {
	skip := lcg.Java.Combine(calls)
	r.seed = skip.NextSeed(r.seed)
}
