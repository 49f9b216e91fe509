// Package synth generates deterministic, plausible place data used when live
// results are thin or unavailable.
package synth

import (
	"hash/fnv"
	"math"
)

// prng is a splitmix64 generator. Seeded purely from the inputs, it makes
// the determinism contract explicit: identical (lat, lng, category, index)
// tuples always reproduce identical output.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// seedFor derives the generator seed from a coordinate quantized to 1e-5
// degrees (~1m), a category key, and a sequence index.
func seedFor(lat, lng float64, categoryKey string, index int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(categoryKey))

	qLat := uint64(int64(math.Round(lat * 1e5)))
	qLng := uint64(int64(math.Round(lng * 1e5)))

	seed := h.Sum64()
	seed = seed*31 + qLat
	seed = seed*31 + qLng
	seed = seed*31 + uint64(index)
	return seed
}

func (p *prng) next() uint64 {
	p.state += 0x9e3779b97f4a7c15
	z := p.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// float64 returns a uniform value in [0, 1).
func (p *prng) float64() float64 {
	return float64(p.next()>>11) / (1 << 53)
}

// intn returns a uniform value in [0, n).
func (p *prng) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(p.next() % uint64(n))
}

// RatingFor derives a stable rating in [3.0, 5.0] from an opaque identifier.
// Live places have no rating of their own, so the same element gets the same
// rating on every search.
func RatingFor(id string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	p := newPRNG(h.Sum64())
	return math.Round((3.0+p.float64()*2.0)*10) / 10
}
