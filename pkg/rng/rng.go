// Package rng provides the seeded pseudo-random source used by sprite
// generation.
//
// Every generation entry point takes an explicit [*Rand]; there is no
// package-level generator. Two values created with the same seed produce the
// same sequence for the same sequence of calls, which is what makes a
// (seed, operations) pair reproduce byte-identical pixel output.
//
// A Rand is not safe for concurrent use. Parallel generation tasks should each
// own a Rand, typically obtained with [Rand.Derive].
package rng

// LCG constants (Numerical Recipes). Arithmetic wraps modulo 2^32.
const (
	multiplier = 1664525
	increment  = 1013904223

	// DeriveStride is the seed distance between derived generators.
	DeriveStride = 1000
)

// Rand is a 32-bit linear congruential generator.
type Rand struct {
	seed  uint32
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Rand {
	return &Rand{seed: seed, state: seed}
}

// Seed returns the seed the generator was created with.
func (r *Rand) Seed() uint32 { return r.seed }

// Derive returns an independent generator seeded with seed + index*DeriveStride.
// The receiver's state is not advanced.
func (r *Rand) Derive(index int) *Rand {
	return New(r.seed + uint32(index)*DeriveStride)
}

func (r *Rand) next() uint32 {
	r.state = r.state*multiplier + increment
	return r.state
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.next()) / (1 << 32)
}

// Intn returns a value in [0, n). It returns 0 when n <= 0 without advancing
// the generator.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Range returns a value in [lo, hi]. The bounds are swapped if reversed.
func (r *Rand) Range(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Between returns a float in [lo, hi).
func (r *Rand) Between(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Signed returns a float in [-amount, amount).
func (r *Rand) Signed(amount float64) float64 {
	return (r.Float64()*2 - 1) * amount
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float64) bool {
	return r.Float64() < p
}

// Weighted returns an index chosen with probability proportional to its
// weight. Negative weights count as zero. It returns -1 when no weight is
// positive, in which case the generator is not advanced.
func (r *Rand) Weighted(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	return last
}

// Pick returns a uniformly chosen element of items. The zero value is
// returned for an empty slice.
func Pick[T any](r *Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.Intn(len(items))]
}
