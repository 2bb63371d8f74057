package gameevent

import (
	"time"

	"eventsim.ai/internal/sim/graph"
)

type Trigger interface {
	ShouldFire() bool
}

type Resolver interface {
	Resolve()
}

// PoissonSampler returns how many occurrences happened within dt at the given
// rate. The scheduler only cares whether the count is zero.
type PoissonSampler interface {
	Sample(dt time.Duration, rate float64) uint64
}

type NopTrigger struct{}

func (NopTrigger) ShouldFire() bool { return false }

type NopResolver struct{}

func (NopResolver) Resolve() {}

type TriggerFunc func() bool

func (f TriggerFunc) ShouldFire() bool { return f() }

type ResolverFunc func()

func (f ResolverFunc) Resolve() { f() }

type SamplerFunc func(dt time.Duration, rate float64) uint64

func (f SamplerFunc) Sample(dt time.Duration, rate float64) uint64 { return f(dt, rate) }

// Proximity fires when its configured node pair has an edge in the owned graph.
type Proximity[T any] struct {
	graph   *graph.Graph[T]
	pair    [2]int
	hasPair bool
}

// NewProximity snapshots g; later edits to g are not seen by the trigger.
func NewProximity[T any](g *graph.Graph[T]) *Proximity[T] {
	if g == nil {
		return &Proximity[T]{graph: graph.New[T]()}
	}
	return &Proximity[T]{graph: g.Clone()}
}

func (p *Proximity[T]) WithPair(a, b int) *Proximity[T] {
	p.pair = [2]int{a, b}
	p.hasPair = true
	return p
}

func (p *Proximity[T]) ShouldFire() bool {
	if !p.hasPair {
		return false
	}
	_, ok := p.graph.Weight(p.pair[0], p.pair[1])
	return ok
}
