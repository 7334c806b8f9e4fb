package deepdream

import (
	"math/rand/v2"
	"sync"
)

// ShiftSource draws the circular tile shift used by one tiled gradient
// evaluation. Both offsets must lie in [0, tileSize).
type ShiftSource interface {
	Shift(tileSize int) (sx, sy int)
}

// RandomShift draws independent uniform offsets from a seeded generator.
type RandomShift struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomShift(seed uint64) *RandomShift {
	return &RandomShift{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomShift) Shift(tileSize int) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(tileSize), r.rng.IntN(tileSize)
}

// FixedShift always returns the same offsets, reduced modulo the tile size.
type FixedShift struct {
	X, Y int
}

func (f FixedShift) Shift(tileSize int) (int, int) {
	return mod(f.X, tileSize), mod(f.Y, tileSize)
}
