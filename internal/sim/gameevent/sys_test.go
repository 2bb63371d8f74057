package gameevent

import (
	"sync/atomic"
	"testing"
	"time"

	"eventsim.ai/internal/sim/graph"
)

type alwaysTrue struct{ calls int }

func (a *alwaysTrue) ShouldFire() bool { a.calls++; return true }

type alwaysFalse struct{ calls int }

func (a *alwaysFalse) ShouldFire() bool { a.calls++; return false }

type increment struct{ n *atomic.Int64 }

func (r increment) Resolve() { r.n.Add(1) }

type fixedSampler struct {
	k     uint64
	calls int
}

func (s *fixedSampler) Sample(time.Duration, float64) uint64 { s.calls++; return s.k }

func TestNew_BuilderAcceptsNopTrigger(t *testing.T) {
	s := New().WithTrigger(NopTrigger{})
	if s.Triggers() != 1 || s.Resolvers() != 0 {
		t.Fatalf("unexpected counts: triggers=%d resolvers=%d", s.Triggers(), s.Resolvers())
	}
}

func TestRunOnce_AllTriggersFire(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithTrigger(&alwaysTrue{}).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n}).
		WithResolver(increment{&n})
	if !s.RunOnce() {
		t.Fatalf("expected fire")
	}
	if got := n.Load(); got != 2 {
		t.Fatalf("counter=%d want 2", got)
	}
}

func TestRunOnce_AnyTriggerFalse(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithTrigger(&alwaysTrue{}).
		WithTrigger(&alwaysFalse{}).
		WithResolver(increment{&n}).
		WithResolver(increment{&n})
	if s.RunOnce() {
		t.Fatalf("expected no fire")
	}
	if got := n.Load(); got != 0 {
		t.Fatalf("counter=%d want 0", got)
	}
}

func TestRunOnce_ResolverOrder(t *testing.T) {
	var order []int
	s := New().WithTrigger(TriggerFunc(func() bool { return true }))
	for i := 0; i < 3; i++ {
		i := i
		s.WithResolver(ResolverFunc(func() { order = append(order, i) }))
	}
	s.RunOnce()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected resolver order: %v", order)
	}
}

func TestRunOnce_EmptyListsGuard(t *testing.T) {
	tr := &alwaysTrue{}
	if New().WithTrigger(tr).RunOnce() {
		t.Fatalf("no resolvers should not fire")
	}
	if tr.calls != 0 {
		t.Fatalf("trigger evaluated without resolvers: %d", tr.calls)
	}
	called := false
	if New().WithResolver(ResolverFunc(func() { called = true })).RunOnce() {
		t.Fatalf("no triggers should not fire")
	}
	if called {
		t.Fatalf("resolver ran without triggers")
	}
}

func TestRunOnce_NopTriggerNeverFires(t *testing.T) {
	called := false
	s := New().WithTrigger(NopTrigger{}).WithResolver(ResolverFunc(func() { called = true }))
	if s.RunOnce() || called {
		t.Fatalf("nop trigger should hold")
	}
	New().WithTrigger(&alwaysTrue{}).WithResolver(NopResolver{}).RunOnce()
}

func TestTick_NoGate(t *testing.T) {
	var n atomic.Int64
	s := New().WithTrigger(&alwaysTrue{}).WithResolver(increment{&n})
	for i := 0; i < 3; i++ {
		if !s.Tick(time.Millisecond) {
			t.Fatalf("tick %d should fire", i)
		}
	}
	if n.Load() != 3 {
		t.Fatalf("counter=%d want 3", n.Load())
	}
}

func TestTick_FrequencyAccumulates(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithFreq(60 * time.Second).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n})
	if s.Tick(30 * time.Second) {
		t.Fatalf("first half tick should not fire")
	}
	if n.Load() != 0 || s.Elapsed() != 30*time.Second {
		t.Fatalf("counter=%d elapsed=%s", n.Load(), s.Elapsed())
	}
	if !s.Tick(30 * time.Second) {
		t.Fatalf("second half tick should fire")
	}
	if n.Load() != 1 {
		t.Fatalf("counter=%d want 1", n.Load())
	}
	if s.Elapsed() != 0 {
		t.Fatalf("elapsed=%s want 0", s.Elapsed())
	}
}

func TestTick_FrequencyResetsOnHeldTrigger(t *testing.T) {
	tr := &alwaysFalse{}
	s := New().WithFreq(time.Second).WithTrigger(tr).WithResolver(NopResolver{})
	if s.Tick(2 * time.Second) {
		t.Fatalf("false trigger should not fire")
	}
	if tr.calls != 1 {
		t.Fatalf("trigger calls=%d want 1", tr.calls)
	}
	if s.Elapsed() != 0 {
		t.Fatalf("accumulated time should be forfeited, elapsed=%s", s.Elapsed())
	}
}

func TestTick_FrequencyLastCallWins(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithFreq(time.Hour).
		WithFreq(10 * time.Millisecond).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n})
	if !s.Tick(10 * time.Millisecond) {
		t.Fatalf("expected the later threshold to apply")
	}
}

func TestTick_ZeroFrequencyFiresEveryTick(t *testing.T) {
	var n atomic.Int64
	s := New().WithFreq(0).WithTrigger(&alwaysTrue{}).WithResolver(increment{&n})
	if !s.Tick(0) || !s.Tick(0) {
		t.Fatalf("zero threshold should fire every tick")
	}
	if n.Load() != 2 {
		t.Fatalf("counter=%d want 2", n.Load())
	}
}

func TestTick_PoissonNonPositiveRateDisables(t *testing.T) {
	for _, rate := range []float64{0, -1} {
		sampler := &fixedSampler{k: 5}
		tr := &alwaysTrue{}
		s := New().
			WithPoissonRate(rate).
			WithPoissonSampler(sampler).
			WithFreq(0).
			WithTrigger(tr).
			WithResolver(NopResolver{})
		for i := 0; i < 3; i++ {
			if s.Tick(time.Second) {
				t.Fatalf("rate %v should never fire", rate)
			}
		}
		if sampler.calls != 0 || tr.calls != 0 {
			t.Fatalf("rate %v: sampler=%d trigger=%d calls", rate, sampler.calls, tr.calls)
		}
	}
}

func TestTick_PoissonZeroSample(t *testing.T) {
	var n atomic.Int64
	tr := &alwaysTrue{}
	s := New().
		WithPoissonRate(1).
		WithPoissonSampler(&fixedSampler{k: 0}).
		WithFreq(0).
		WithTrigger(tr).
		WithResolver(increment{&n})
	if s.Tick(time.Second) {
		t.Fatalf("zero sample should not fire")
	}
	if n.Load() != 0 || tr.calls != 0 {
		t.Fatalf("counter=%d trigger calls=%d", n.Load(), tr.calls)
	}
}

func TestTick_PoissonFiresAtMostOnce(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithPoissonRate(1).
		WithPoissonSampler(&fixedSampler{k: 7}).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n})
	if !s.Tick(time.Second) {
		t.Fatalf("non-zero sample should fire")
	}
	if n.Load() != 1 {
		t.Fatalf("counter=%d want 1", n.Load())
	}
}

func TestTick_PoissonBypassesFrequency(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithFreq(time.Hour).
		WithPoissonRate(2).
		WithPoissonSampler(&fixedSampler{k: 1}).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n})
	if !s.Tick(time.Millisecond) {
		t.Fatalf("poisson gate should take precedence")
	}
	if s.Elapsed() != 0 {
		t.Fatalf("frequency accumulator advanced: %s", s.Elapsed())
	}
}

func TestTick_PoissonWithoutSamplerFallsThrough(t *testing.T) {
	var n atomic.Int64
	s := New().
		WithPoissonRate(3).
		WithFreq(2 * time.Second).
		WithTrigger(&alwaysTrue{}).
		WithResolver(increment{&n})
	if s.Tick(time.Second) {
		t.Fatalf("frequency gate should hold")
	}
	if !s.Tick(time.Second) {
		t.Fatalf("frequency gate should release")
	}

	ungated := New().WithPoissonRate(3).WithTrigger(&alwaysTrue{}).WithResolver(increment{&n})
	if !ungated.Tick(0) {
		t.Fatalf("rate without sampler or freq should behave ungated")
	}
}

func TestTick_SamplerFuncSeesDtAndRate(t *testing.T) {
	var gotDt time.Duration
	var gotRate float64
	s := New().
		WithPoissonRate(0.5).
		WithPoissonSampler(SamplerFunc(func(dt time.Duration, rate float64) uint64 {
			gotDt, gotRate = dt, rate
			return 0
		})).
		WithTrigger(&alwaysTrue{}).
		WithResolver(NopResolver{})
	s.Tick(250 * time.Millisecond)
	if gotDt != 250*time.Millisecond || gotRate != 0.5 {
		t.Fatalf("sampler saw dt=%s rate=%v", gotDt, gotRate)
	}
}

func TestProximity_FiresWithZeroFrequency(t *testing.T) {
	g := graph.New[int]()
	g.AddEdge(1, 2, 1)
	var n atomic.Int64
	s := New().
		WithTrigger(NewProximity(g).WithPair(1, 2)).
		WithFreq(0).
		WithResolver(increment{&n})
	if !s.RunOnce() {
		t.Fatalf("expected proximity fire")
	}
	if n.Load() != 1 {
		t.Fatalf("counter=%d want 1", n.Load())
	}
}
