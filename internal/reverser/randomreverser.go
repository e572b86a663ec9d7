package reverser

import (
	"math/big"

	"github.com/XMinty77/DungeonCracker/internal/bigrat"
	"github.com/XMinty77/DungeonCracker/internal/enumerate"
	"github.com/XMinty77/DungeonCracker/internal/lcg"
	"github.com/XMinty77/DungeonCracker/internal/lll"
	"github.com/XMinty77/DungeonCracker/internal/matrix"
)

// JavaRandomReverser accumulates constraints from a sequence of observed
// java.util.Random calls (nextInt bounds, measured seed bits, unmeasured
// skips) into a lattice, then uses LLL reduction plus lattice-point
// enumeration to recover every internal seed consistent with them.
type JavaRandomReverser struct {
	modulus *big.Int
	mult    *big.Int
	lcg     lcg.LCG

	mins, maxes  []*big.Int
	callIndices  []int64
	filteredSkips []FilteredSkip

	lattice *matrix.Matrix

	currentCallIndex int64
	dimensions       int
	successChance    float64
}

func NewJavaRandomReverser(filteredSkips []FilteredSkip) *JavaRandomReverser {
	l := lcg.Java
	modulus := big.NewInt(l.Modulus)
	mult := new(big.Int).Mod(big.NewInt(l.Multiplier), modulus)
	return &JavaRandomReverser{
		modulus:       modulus,
		mult:          mult,
		lcg:           l,
		filteredSkips: filteredSkips,
		successChance: 1.0,
	}
}

func modBig(a, m *big.Int) *big.Int {
	r := new(big.Int).Mod(a, m)
	return r
}

// AddMeasuredSeed records that the 48-bit internal seed at the current
// call index is known to fall in [min, max].
func (j *JavaRandomReverser) AddMeasuredSeed(min, max int64) {
	j.AddMeasuredSeedBig(big.NewInt(min), big.NewInt(max))
}

func (j *JavaRandomReverser) AddMeasuredSeedBig(min, max *big.Int) {
	min = modBig(min, j.modulus)
	max = modBig(max, j.modulus)
	if max.Cmp(min) < 0 {
		max = new(big.Int).Add(max, j.modulus)
	}

	j.mins = append(j.mins, min)
	j.maxes = append(j.maxes, max)
	j.dimensions++
	j.currentCallIndex++
	j.callIndices = append(j.callIndices, j.currentCallIndex)

	dim := j.dimensions
	newLattice := matrix.New(dim+1, dim)

	if dim != 1 && j.lattice != nil {
		for row := 0; row < dim; row++ {
			for col := 0; col < dim-1; col++ {
				newLattice.Set(row, col, j.lattice.Get(row, col))
			}
		}
	}

	exp := big.NewInt(j.callIndices[dim-1] - j.callIndices[0])
	tempMult := new(big.Int).Exp(j.mult, exp, j.modulus)
	newLattice.Set(0, dim-1, bigrat.FromBigInt(tempMult))
	newLattice.Set(dim, dim-1, bigrat.FromBigInt(j.modulus))
	j.lattice = &newLattice
}

// AddModuloMeasuredSeed records a measurement of the seed modulo a
// different modulus than the LCG's own (e.g. a non-power-of-2 nextInt
// bound).
func (j *JavaRandomReverser) AddModuloMeasuredSeed(min, max, measuredMod int64) {
	j.AddModuloMeasuredSeedBig(big.NewInt(min), big.NewInt(max), big.NewInt(measuredMod))
}

func (j *JavaRandomReverser) AddModuloMeasuredSeedBig(min, max, measuredMod *big.Int) {
	min = modBig(min, measuredMod)
	max = modBig(max, measuredMod)
	if max.Cmp(min) < 0 {
		max = new(big.Int).Add(max, measuredMod)
	}

	residue := new(big.Int).Mod(j.modulus, measuredMod)
	if residue.Sign() != 0 {
		residueF, _ := new(big.Float).SetInt(residue).Float64()
		j.successChance *= 1.0 - residueF/float64(j.lcg.Modulus)

		j.mins = append(j.mins, big.NewInt(0))
		j.maxes = append(j.maxes, new(big.Int).Sub(j.modulus, residue))
		j.currentCallIndex++
		j.callIndices = append(j.callIndices, j.currentCallIndex)

		j.mins = append(j.mins, min)
		j.maxes = append(j.maxes, max)
		j.callIndices = append(j.callIndices, j.currentCallIndex)

		j.dimensions += 2

		dim := j.dimensions
		newLattice := matrix.New(dim+1, dim)

		if dim != 2 && j.lattice != nil {
			for row := 0; row < dim-1; row++ {
				for col := 0; col < dim-2; col++ {
					newLattice.Set(row, col, j.lattice.Get(row, col))
				}
			}
		}

		exp := big.NewInt(j.callIndices[dim-1] - j.callIndices[0])
		tempMult := new(big.Int).Exp(j.mult, exp, j.modulus)
		newLattice.Set(0, dim-2, bigrat.FromBigInt(tempMult))
		newLattice.Set(0, dim-1, bigrat.FromBigInt(tempMult))
		newLattice.Set(dim-1, dim-1, bigrat.FromBigInt(j.modulus))
		newLattice.Set(dim-1, dim-2, bigrat.FromBigInt(j.modulus))
		newLattice.Set(dim, dim-1, bigrat.FromBigInt(measuredMod))
		j.lattice = &newLattice
		return
	}

	j.mins = append(j.mins, min)
	j.maxes = append(j.maxes, max)
	j.dimensions++
	j.currentCallIndex++
	j.callIndices = append(j.callIndices, j.currentCallIndex)

	dim := j.dimensions
	newLattice := matrix.New(dim+1, dim)

	if dim != 1 && j.lattice != nil {
		for row := 0; row < dim; row++ {
			for col := 0; col < dim-1; col++ {
				newLattice.Set(row, col, j.lattice.Get(row, col))
			}
		}
	}

	exp := big.NewInt(j.callIndices[dim-1] - j.callIndices[0])
	tempMult := new(big.Int).Exp(j.mult, exp, j.modulus)
	newLattice.Set(0, dim-1, bigrat.FromBigInt(tempMult))
	newLattice.Set(dim, dim-1, bigrat.FromBigInt(measuredMod))
	j.lattice = &newLattice
}

// AddUnmeasuredSeeds advances the call index without adding any constraint.
func (j *JavaRandomReverser) AddUnmeasuredSeeds(numSeeds int64) {
	j.currentCallIndex += numSeeds
}

func (j *JavaRandomReverser) Dimensions() int { return j.dimensions }

func (j *JavaRandomReverser) SuccessChance() float64 { return j.successChance }

// AddNextIntCall records a nextInt(n) call whose result is known to lie in
// [min, max] (min == max for an exactly observed roll).
func (j *JavaRandomReverser) AddNextIntCall(n, min, max int32) {
	if n <= 0 {
		panic("reverser: nextInt bound must be positive")
	}

	if n&(-n) == n {
		log := int64(trailingZeros32(n))
		shift := int64(1) << uint(48-log)
		j.AddMeasuredSeed(int64(min)*shift, int64(max)*shift+shift-1)
		return
	}

	j.AddModuloMeasuredSeed(
		int64(min)<<17,
		(int64(max)<<17)|0x1ffff,
		int64(n)<<17,
	)
}

// AddNextIntUnboundedCall records an unbounded nextInt() call (the top 32
// bits of next(32)) known to lie in [min, max].
func (j *JavaRandomReverser) AddNextIntUnboundedCall(min, max int32) {
	j.AddMeasuredSeed(int64(min)<<16, int64(max)<<16+(1<<16)-1)
}

// ConsumeNextIntCalls skips numCalls nextInt(bound) calls without recording
// their outcome, discounting the estimated success chance for the modulus
// bias a non-power-of-2 bound introduces.
func (j *JavaRandomReverser) ConsumeNextIntCalls(numCalls, bound int32) {
	residue := (int64(1) << 48) % ((int64(1) << 17) * int64(bound))
	if residue != 0 {
		base := 1.0 - float64(residue)/float64(int64(1)<<48)
		j.successChance *= powInt(base, int(numCalls))
	}
	j.AddUnmeasuredSeeds(int64(numCalls))
}

func powInt(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func trailingZeros32(n int32) int {
	if n == 0 {
		return 32
	}
	count := 0
	for n&1 == 0 {
		n >>= 1
		count++
	}
	return count
}

// FindAllValidSeeds builds the lattice, LLL-reduces it, enumerates every
// lattice point in the feasible box, and filters by the filtered skips.
// Returns *lll.DegenerateLatticeError if the accumulated constraints are
// linearly dependent.
func (j *JavaRandomReverser) FindAllValidSeeds() ([]int64, error) {
	if j.dimensions == 0 {
		seeds := make([]int64, j.lcg.Modulus)
		for i := range seeds {
			seeds[i] = int64(i)
		}
		return seeds, nil
	}

	if err := j.createLattice(); err != nil {
		return nil, err
	}
	lattice, lower, upper, offset := j.prepareEnumerateParams()
	results := enumerate.EnumerateBounds(lattice, lower, upper, offset)
	return j.filterResults(results), nil
}

// GetBranchCount returns the number of depth-0 branches the enumeration
// would explore, for splitting work across workers.
func (j *JavaRandomReverser) GetBranchCount() (int64, error) {
	if j.dimensions == 0 {
		return 1, nil
	}
	if err := j.createLattice(); err != nil {
		return 0, err
	}
	lattice, lower, upper, offset := j.prepareEnumerateParams()
	return enumerate.BranchCountBounds(lattice, lower, upper, offset), nil
}

// FindSeedsForBranches enumerates only the depth-0 branches in
// [branchStart, branchEnd).
func (j *JavaRandomReverser) FindSeedsForBranches(branchStart, branchEnd int64) ([]int64, error) {
	if j.dimensions == 0 {
		if branchStart == 0 {
			seeds := make([]int64, j.lcg.Modulus)
			for i := range seeds {
				seeds[i] = int64(i)
			}
			return seeds, nil
		}
		return nil, nil
	}

	if err := j.createLattice(); err != nil {
		return nil, err
	}
	lattice, lower, upper, offset := j.prepareEnumerateParams()
	results := enumerate.EnumeratePartialBounds(lattice, lower, upper, offset, branchStart, branchEnd)
	return j.filterResults(results), nil
}

func (j *JavaRandomReverser) prepareEnumerateParams() (matrix.Matrix, matrix.Vector, matrix.Vector, matrix.Vector) {
	dims := j.dimensions
	lower := matrix.NewVector(dims)
	upper := matrix.NewVector(dims)
	offset := matrix.NewVector(dims)
	r := lcg.OfInternalSeed(j.lcg, 0)

	for i := 0; i < dims; i++ {
		lower.Set(i, bigrat.FromBigInt(j.mins[i]))
		upper.Set(i, bigrat.FromBigInt(j.maxes[i]))
		offset.Set(i, bigrat.FromInt64(r.GetSeed()))

		if i != dims-1 {
			r.Advance(j.callIndices[i+1] - j.callIndices[i])
		}
	}

	lattice := j.lattice.Transpose()
	return lattice, lower, upper, offset
}

func (j *JavaRandomReverser) filterResults(results []matrix.Vector) []int64 {
	r := j.lcg.Combine(-j.callIndices[0])

	seeds := make([]int64, 0, len(results))
	for _, vec := range results {
		n := vec.Get(0).Numerator()
		seeds = append(seeds, r.NextSeed(bigIntToInt64(n)))
	}

	if len(j.filteredSkips) > 0 {
		filtered := seeds[:0:0]
		for _, seed := range seeds {
			ok := true
			for _, skip := range j.filteredSkips {
				rr := lcg.OfInternalSeed(j.lcg, seed)
				if !skip.CheckState(&rr) {
					ok = false
					break
				}
			}
			if ok {
				filtered = append(filtered, seed)
			}
		}
		seeds = filtered
	}

	return seeds
}

// createLattice scales each constraint dimension to a common modulus,
// LLL-reduces the result, and unscales the reduced basis back.
//
// Until it is reduced, j.lattice carries one more row than column: AddMeasuredSeed and
// AddModuloMeasuredSeed each append a row for the LCG's own modulus, a
// deliberately redundant generator that lets LLL discover and drop the
// dependency it introduces. A healthy reduction therefore always trims
// exactly one zero row, leaving a square dims x dims basis. Any other
// count means the real constraints themselves were linearly dependent
// (e.g. a spawner measurement observed twice at the same call index),
// which is a genuine degenerate lattice: there isn't a well-defined
// square basis to enumerate against.
func (j *JavaRandomReverser) createLattice() error {
	dims := j.dimensions
	if j.lattice.RowCount() == dims {
		// An earlier call already reduced the lattice to its square basis.
		return nil
	}

	sideLengths := make([]*big.Int, dims)
	for i := 0; i < dims; i++ {
		sideLengths[i] = new(big.Int).Add(new(big.Int).Sub(j.maxes[i], j.mins[i]), big.NewInt(1))
	}

	lcm := big.NewInt(1)
	for _, sl := range sideLengths {
		lcm = lcmBigInt(lcm, sl)
	}

	scales := matrix.New(dims, dims)
	for i := 0; i < dims; i++ {
		quotient := new(big.Int).Div(lcm, sideLengths[i])
		scales.Set(i, i, bigrat.FromBigInt(quotient))
	}

	unscaled := j.lattice.Clone()
	scaled := unscaled.Multiply(scales)

	params := lll.Recommended()
	result := lll.Reduce(scaled, params)
	if result.NumDependentVectors != 1 {
		return &lll.DegenerateLatticeError{NumDependentVectors: result.NumDependentVectors}
	}

	scalesInv := scales.Inverse()
	reduced := result.ReducedBasis.Multiply(scalesInv)
	j.lattice = &reduced
	return nil
}

func lcmBigInt(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	product := new(big.Int).Mul(a, b)
	product.Abs(product)
	return new(big.Int).Div(product, gcd)
}

// bigIntToInt64 extracts the low 64 bits of n's two's-complement
// representation, matching java.util.Random's seed arithmetic which is
// always implicitly modulo 2^64 even though only 48 bits are significant.
func bigIntToInt64(n *big.Int) int64 {
	mod := new(big.Int).Lsh(big.NewInt(1), 64)
	r := new(big.Int).Mod(n, mod)
	return int64(r.Uint64())
}
