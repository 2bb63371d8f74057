// Package rng holds the simulation's deterministic random source.
package rng

// Rng is xorshift64* seeded from a zero state. The draw sequence is part of
// the trace format; do not change the constants.
type Rng struct {
	state uint64
}

func New() *Rng { return &Rng{} }

func NewWithState(state uint64) *Rng { return &Rng{state: state} }

func (r *Rng) State() uint64 { return r.state }

func (r *Rng) NextU64() uint64 {
	x := r.state + 0x9E3779B97F4A7C15
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x
	return x * 0x2545F4914F6CDD1D
}

// Float64 returns a value in [0, 1) built from the top 53 bits of one draw.
func (r *Rng) Float64() float64 {
	return float64(r.NextU64()>>11) / (1 << 53)
}
