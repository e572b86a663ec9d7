// Package bigrat provides the exact-arithmetic building blocks the
// lattice-reduction and enumeration layers depend on: a canonicalizing
// rational wrapper over math/big.Rat, plus the handful of rounding
// modes the LLL routine needs that math/big does not expose directly.
package bigrat

import "math/big"

// Rat is an exact rational number. The zero value is not valid; use
// Zero, One, or one of the constructors.
//
// Invariants (enforced by every constructor and arithmetic method):
// denominator > 0, numerator/denominator are coprime, and a zero value
// always carries denominator 1. math/big.Rat already maintains these
// invariants internally, so Rat is a thin wrapper that exists to give
// the lattice code a stable, game-specific API (Floor, Round, Half)
// rather than to reimplement canonicalization.
type Rat struct {
	r *big.Rat
}

func Zero() Rat { return Rat{r: new(big.Rat)} }

func One() Rat { return Rat{r: big.NewRat(1, 1)} }

func MinusOne() Rat { return Rat{r: big.NewRat(-1, 1)} }

func Half() Rat { return Rat{r: big.NewRat(1, 2)} }

// FromInt64 builds an integral rational from a signed 64-bit value.
func FromInt64(n int64) Rat { return Rat{r: new(big.Rat).SetInt64(n)} }

// FromBigInt builds an integral rational from an arbitrary-precision integer.
func FromBigInt(n *big.Int) Rat { return Rat{r: new(big.Rat).SetInt(n)} }

// New builds numerator/denominator, panicking if the denominator is zero.
func New(num, den *big.Int) Rat {
	if den.Sign() == 0 {
		panic("bigrat: division by zero")
	}
	r := new(big.Rat).SetFrac(num, den)
	return Rat{r: r}
}

func (a Rat) clone() *big.Rat { return new(big.Rat).Set(a.r) }

func (a Rat) Add(b Rat) Rat { return Rat{r: a.clone().Add(a.r, b.r)} }
func (a Rat) Sub(b Rat) Rat { return Rat{r: a.clone().Sub(a.r, b.r)} }
func (a Rat) Mul(b Rat) Rat { return Rat{r: a.clone().Mul(a.r, b.r)} }

// Div performs exact division; panics if b is zero.
func (a Rat) Div(b Rat) Rat {
	if b.IsZero() {
		panic("bigrat: division by zero")
	}
	return Rat{r: a.clone().Quo(a.r, b.r)}
}

func (a Rat) Neg() Rat { return Rat{r: a.clone().Neg(a.r)} }

func (a Rat) Abs() Rat {
	if a.Sign() < 0 {
		return a.Neg()
	}
	return a
}

func (a Rat) Sign() int { return a.r.Sign() }

func (a Rat) IsZero() bool { return a.r.Sign() == 0 }

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Rat) Cmp(b Rat) int { return a.r.Cmp(b.r) }

func (a Rat) Equal(b Rat) bool { return a.r.Cmp(b.r) == 0 }

func (a Rat) Less(b Rat) bool { return a.r.Cmp(b.r) < 0 }

func (a Rat) Numerator() *big.Int { return new(big.Int).Set(a.r.Num()) }

func (a Rat) Denominator() *big.Int { return new(big.Int).Set(a.r.Denom()) }

// Floor returns the largest integer k such that k <= a.
func (a Rat) Floor() *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(a.r.Num(), a.r.Denom(), m)
	return q
}

// Ceil returns the smallest integer k such that k >= a.
func (a Rat) Ceil() *big.Int {
	f := a.Floor()
	if a.Sub(FromBigInt(f)).IsZero() {
		return f
	}
	return new(big.Int).Add(f, big.NewInt(1))
}

// Round returns the nearest integer, rounding exact halves towards +inf,
// matching the reference implementation's BigFraction::round.
func (a Rat) Round() *big.Int {
	return a.Add(Half()).Floor()
}

func (a Rat) String() string {
	if a.r.IsInt() {
		return a.r.Num().String()
	}
	return a.r.RatString()
}

// Float64 returns an approximate value; nothing on a correctness-bearing
// path calls it.
func (a Rat) Float64() float64 {
	f, _ := a.r.Float64()
	return f
}
