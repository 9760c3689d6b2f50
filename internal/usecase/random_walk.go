package usecase

import (
	"math/rand/v2"
	"sync"
)

// RandomWalk generates bounded random steps for synthetic series:
// next = max(0, prev + U(-delta, delta)).
type RandomWalk struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWalk seeds the generator. Seed 0 picks a random seed.
func NewRandomWalk(seed uint64) *RandomWalk {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomWalk{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (w *RandomWalk) Next(prev, delta float64) float64 {
	w.mu.Lock()
	step := (w.rng.Float64()*2 - 1) * delta
	w.mu.Unlock()
	return max(0, prev+step)
}
