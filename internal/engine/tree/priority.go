package tree

import "math/rand/v2"

// Priorities is a deterministic source of treap priorities.
//
// Every factory owns one, so two trees built from the same seed and the
// same sequence of operations have the same shape.
type Priorities struct {
	rng *rand.Rand
}

// NewPriorities returns a priority source seeded with seed.
func NewPriorities(seed uint64) *Priorities {
	return &Priorities{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns the next priority.
func (p *Priorities) Next() uint32 {
	return p.rng.Uint32()
}
