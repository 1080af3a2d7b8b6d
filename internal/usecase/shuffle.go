package usecase

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Shuffler is a seedable source of uniform permutations.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler returns a shuffler seeded with seed; zero picks a time based seed.
func NewShuffler(seed uint64) *Shuffler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Shuffler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a uniform integer in [0, n).
func (s *Shuffler) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Bool returns a fair coin flip.
func (s *Shuffler) Bool() bool {
	return s.IntN(2) == 1
}

// Permute shuffles items in place with Fisher-Yates.
func Permute[T any](s *Shuffler, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](s *Shuffler, items []T) []T {
	out := append([]T(nil), items...)
	Permute(s, out)
	return out
}
