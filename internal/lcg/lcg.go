// Package lcg implements the linear congruential generator underlying
// Java's java.util.Random, plus the combine/invert algebra the version
// layer (internal/mc) and constraint builder (internal/dungeon) use to
// jump an LCG state forward or backward by an arbitrary number of
// calls in O(log n) time instead of replaying each step.
package lcg

// LCG models seed_{n+1} = (seed_n*multiplier + addend) mod modulus.
type LCG struct {
	Multiplier int64
	Addend     int64
	Modulus    int64
}

// Java is java.util.Random's LCG: 48-bit state, multiplier 0x5DEECE66D,
// increment 0xB.
var Java = LCG{Multiplier: 0x5DEECE66D, Addend: 0xB, Modulus: 1 << 48}

func New(multiplier, addend, modulus int64) LCG {
	return LCG{Multiplier: multiplier, Addend: addend, Modulus: modulus}
}

func (l LCG) NextSeed(seed int64) int64 {
	return l.Modop(seed*l.Multiplier + l.Addend)
}

func (l LCG) Modop(n int64) int64 {
	if l.Modulus > 0 && (l.Modulus&(-l.Modulus)) == l.Modulus {
		return n & (l.Modulus - 1)
	}
	return int64(uint64(n) % uint64(l.Modulus))
}

// Combine returns the LCG equivalent to advancing by steps calls of l
// in a single step; steps may be negative (Invert is Combine(-1)).
func (l LCG) Combine(steps int64) LCG {
	var multiplier int64 = 1
	var addend int64 = 0

	im := l.Multiplier
	ia := l.Addend

	k := steps
	for k != 0 {
		if k&1 != 0 {
			multiplier = multiplier * im
			addend = im*addend + ia
		}
		ia = (im + 1) * ia
		im = im * im
		k = int64(uint64(k) >> 1)
	}

	multiplier = l.Modop(multiplier)
	addend = l.Modop(addend)

	return New(multiplier, addend, l.Modulus)
}

func (l LCG) Invert() LCG {
	return l.Combine(-1)
}
