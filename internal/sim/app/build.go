package app

import (
	"log/slog"
	"sync/atomic"

	"eventsim.ai/internal/sim/gameevent"
	"eventsim.ai/internal/sim/gamespeed"
	"eventsim.ai/internal/sim/graph"
	"eventsim.ai/internal/sim/rng"
	"eventsim.ai/internal/sim/tuning"
)

// Build wires every tuning event into a scheduler on a fresh MainApp. Each
// event gets a CountResolver (returned by name) and a LogResolver. Poisson
// events share the app's Rng resource.
func Build(t tuning.Tuning, logger *slog.Logger) (*App, map[string]*atomic.Uint64) {
	a := MainApp()
	a.SetLogger(logger)
	Insert(a, gamespeed.GameSpeed(t.GameSpeed))
	Insert(a, *rng.NewWithState(t.RngState))
	r, _ := Resource[rng.Rng](a)
	sampler := rng.NewPoisson(r)

	counts := make(map[string]*atomic.Uint64, len(t.Events))
	for _, ev := range t.Events {
		s := gameevent.New().WithLogger(a.logger.With("event", ev.Name))
		if ev.Always {
			s.WithTrigger(gameevent.TriggerFunc(func() bool { return true }))
		}
		if p := ev.Proximity; p != nil && len(p.Pair) == 2 {
			g := graph.New[float64]()
			for _, e := range p.Edges {
				g.AddEdge(e.A, e.B, e.Weight)
			}
			s.WithTrigger(gameevent.NewProximity(g).WithPair(p.Pair[0], p.Pair[1]))
		}
		if f, ok := ev.Freq(); ok {
			s.WithFreq(f)
		}
		if ev.PoissonRate != nil {
			s.WithPoissonRate(*ev.PoissonRate).WithPoissonSampler(sampler)
		}

		c := counts[ev.Name]
		if c == nil {
			c = new(atomic.Uint64)
			counts[ev.Name] = c
		}
		s.WithResolver(CountResolver{N: c}).WithResolver(LogResolver{Logger: a.logger, Event: ev.Name})
		a.AddEvent(ev.Name, s)
	}
	return a, counts
}
