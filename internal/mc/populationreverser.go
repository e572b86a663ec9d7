package mc

import (
	"math/bits"

	"github.com/XMinty77/DungeonCracker/internal/lcg"
)

// m1 is java.util.Random's LCG multiplier, used throughout the reversal
// algebra below as a short name matching the reference derivation.
const m1 = int64(0x5DEECE66D)

func lcgParams() (m2, a2, m4, a4 int64) {
	lcg2 := lcg.Java.Combine(2)
	lcg4 := lcg.Java.Combine(4)
	return lcg2.Multiplier, lcg2.Addend, lcg4.Multiplier, lcg4.Addend
}

// ReversePopulationSeed inverts ChunkRand.SetPopulationSeed: given the
// 48-bit population seed a dungeon's rolls were observed under and the
// chunk's block coordinates, it returns every 64-bit world seed that would
// have produced it.
func ReversePopulationSeed(populationSeed int64, x, z int32, version MCVersion) []int64 {
	popSeed := populationSeed & Mask48

	if version.IsOlderThan(V1_13) {
		return getSeedFromChunkseedPre13(popSeed, x, z)
	}
	return reversePopulation(popSeed, x, z, version)
}

func reversePopulation(populationSeed int64, x, z int32, version MCVersion) []int64 {
	m2, a2, m4, a4 := lcgParams()

	var worldSeeds []int64
	rand := NewChunkRand()

	e := populationSeed & Mask32
	f := populationSeed & Mask16

	freeBits := bits.TrailingZeros64(uint64(int64(x) | int64(z)))
	c := Mask(populationSeed, freeBits)
	var nextBit int64
	if freeBits != 64 {
		nextBit = (int64(x) ^ int64(z) ^ populationSeed) & GetPow2(freeBits)
	}
	c |= nextBit
	freeBits++
	increment := GetPow2(freeBits)

	firstMultiplier := (m2*int64(x) + m4*int64(z)) & Mask16
	multTrailingZeroes := bits.TrailingZeros64(uint64(firstMultiplier))

	if multTrailingZeroes >= 16 {
		popHash := func(value int64) int64 {
			r := NewChunkRand()
			return r.SetPopulationSeed(value, x, z, version)
		}

		if freeBits >= 16 {
			HenselLift(c, freeBits-16, populationSeed, 32, 16, popHash, &worldSeeds)
		} else {
			for cIter := c; cIter < (1 << 16); cIter += increment {
				HenselLift(cIter, 0, populationSeed, 32, 16, popHash, &worldSeeds)
			}
		}

		return worldSeeds
	}

	firstMultInv := ModInverse16(firstMultiplier >> multTrailingZeroes)
	offsets := getOffsets(x, z, version)

	for c < (1 << 16) {
		target := (c ^ f) & Mask16
		xTerm := int64(uint64(m2*((c^m1)&Mask16)+a2) >> 16)
		zTerm := int64(uint64(m4*((c^m1)&Mask16)+a4) >> 16)
		magic := int64(x)*xTerm + int64(z)*zTerm

		for offset := range offsets {
			addWorldSeeds(target-((magic+offset)&Mask16), multTrailingZeroes, firstMultInv, c, e, x, z,
				populationSeed, &worldSeeds, &rand, version)
		}

		c += increment
	}

	return worldSeeds
}

func addWorldSeeds(firstAddend int64, multTrailingZeroes int, firstMultInv, c, e int64, x, z int32,
	populationSeed int64, worldSeeds *[]int64, rand *ChunkRand, version MCVersion) {
	if bits.TrailingZeros64(uint64(firstAddend)) < multTrailingZeroes {
		return
	}

	mask := GetMask(16 - multTrailingZeroes)
	increment := GetPow2(16 - multTrailingZeroes)

	b := ((firstMultInv * firstAddend) >> multTrailingZeroes ^ (m1 >> 16)) & mask

	for b < (1 << 16) {
		k := (b << 16) + c
		target2 := (k ^ e) >> 16
		secondAddend := getPartialAddend(k, x, z, 32, version) & Mask16

		if bits.TrailingZeros64(uint64(target2-secondAddend)) < multTrailingZeroes {
			b += increment
			continue
		}

		a := ((firstMultInv * (target2 - secondAddend)) >> multTrailingZeroes ^ (m1 >> 32)) & mask

		for a < (1 << 16) {
			ws := (a << 32) + k
			if rand.SetPopulationSeed(ws, x, z, version) == populationSeed {
				*worldSeeds = append(*worldSeeds, ws)
			}
			a += increment
		}

		b += increment
	}
}

func getOffsets(x, z int32, version MCVersion) map[int64]struct{} {
	offsets := make(map[int64]struct{})

	if version.IsOlderThan(V1_13) {
		for i := int64(0); i < 3; i++ {
			for j := int64(0); j < 3; j++ {
				offsets[int64(x)*i+int64(z)*j] = struct{}{}
			}
		}
	} else {
		for i := int64(0); i < 2; i++ {
			for j := int64(0); j < 2; j++ {
				offsets[int64(x)*i+int64(z)*j] = struct{}{}
			}
		}
	}

	return offsets
}

func getPartialAddend(partialSeed int64, x, z int32, bitCount int, version MCVersion) int64 {
	m2, a2, m4, a4 := lcgParams()

	mask := GetMask(bitCount)
	a := ((m2*((partialSeed^m1)&mask) + a2) & Mask48) >> 16
	b := ((m4*((partialSeed^m1)&mask) + a4) & Mask48) >> 16

	if version.IsOlderThan(V1_13) {
		return int64(x)*(a/2*2+1) + int64(z)*(b/2*2+1)
	}

	return (int64(x)*(a|1) + int64(z)*(b|1)) >> 16
}

// ---- pre-1.13 reversal ----

func getChunkseedPre13(seed int64, x, z int32) int64 {
	r := NewJRand(seed)
	a := r.NextLong()/2*2 + 1
	b := r.NextLong()/2*2 + 1
	return (int64(x)*a+int64(z)*b ^ seed) & ((int64(1) << 48) - 1)
}

func getPartialAddendPre13(partialSeed int64, x, z int32, bitCount int) int64 {
	m2, a2, m4, a4 := lcgParams()
	mask := GetMask(bitCount)

	av := ((m2*((partialSeed^m1)&mask) + a2) & Mask48) >> 16
	bv := ((m4*((partialSeed^m1)&mask) + a4) & Mask48) >> 16

	return int64(x)*(int64(int32(av))/2*2+1) + int64(z)*(int64(int32(bv))/2*2+1)
}

func addWorldSeedPre13(firstAddend int64, multTrailingZeroes int, firstMultInv, c int64, x, z int32,
	chunkseed int64, worldSeeds *[]int64) {
	bottom32 := chunkseed & Mask32

	if bits.TrailingZeros64(uint64(firstAddend)) < multTrailingZeroes {
		return
	}

	b := ((firstMultInv*firstAddend)>>multTrailingZeroes ^ (m1 >> 16)) & GetMask(16-multTrailingZeroes)

	if multTrailingZeroes != 0 {
		smallMask := GetMask(multTrailingZeroes)
		smallMultInverse := smallMask & firstMultInv
		target := (((b ^ (bottom32 >> 16)) & smallMask) - (getPartialAddendPre13((b<<16)+c, x, z, 32-multTrailingZeroes) >> 16)) & smallMask
		b += ((target*smallMultInverse ^ (m1 >> (32 - multTrailingZeroes))) & smallMask) << (16 - multTrailingZeroes)
	}

	bottom32Seed := (b << 16) + c
	target2 := (bottom32Seed ^ bottom32) >> 16
	secondAddend := (getPartialAddendPre13(bottom32Seed, x, z, 32) >> 16) & Mask16

	topBits := ((firstMultInv*(target2-secondAddend))>>multTrailingZeroes ^ (m1 >> 32)) & GetMask(16-multTrailingZeroes)

	for topBits < (1 << 16) {
		ws := (topBits << 32) + bottom32Seed
		if getChunkseedPre13(ws, x, z) == chunkseed {
			*worldSeeds = append(*worldSeeds, ws)
		}
		topBits += int64(1) << (16 - multTrailingZeroes)
	}
}

func getSeedFromChunkseedPre13(chunkseed int64, x, z int32) []int64 {
	var worldSeeds []int64

	if x == 0 && z == 0 {
		worldSeeds = append(worldSeeds, chunkseed)
		return worldSeeds
	}

	f := chunkseed & Mask16

	m2, a2, m4, a4 := lcgParams()

	firstMultiplier := (m2*int64(x) + m4*int64(z)) & Mask16
	multTrailingZeroes := bits.TrailingZeros64(uint64(firstMultiplier))
	firstMultInv := ModInverse16(firstMultiplier >> multTrailingZeroes)

	xCount := bits.TrailingZeros64(uint64(x))
	zCount := bits.TrailingZeros64(uint64(z))
	totalCount := bits.TrailingZeros64(uint64(int64(x) | int64(z)))

	possibleOffsets := make(map[int64]struct{})
	for i := int64(0); i < 3; i++ {
		for j := int64(0); j < 3; j++ {
			possibleOffsets[int64(x)*i+j*int64(z)] = struct{}{}
		}
	}

	var c int64
	if xCount == zCount {
		c = chunkseed & ((int64(1) << uint(xCount+1)) - 1)
	} else {
		c = (chunkseed & ((int64(1) << uint(totalCount+1)) - 1)) ^ (int64(1) << uint(totalCount))
	}

	for c < (1 << 16) {
		target := (c ^ f) & Mask16
		xInner := int64(uint64(m2*((c^m1)&Mask16)+a2) >> 16)
		zInner := int64(uint64(m4*((c^m1)&Mask16)+a4) >> 16)
		magic := int64(x)*xInner + int64(z)*zInner

		for offset := range possibleOffsets {
			addWorldSeedPre13(target-((magic+offset)&Mask16), multTrailingZeroes, firstMultInv, c, x, z,
				chunkseed, &worldSeeds)
		}

		c += int64(1) << uint(totalCount+1)
	}

	return worldSeeds
}
