// Package gameevent decides, once per simulated tick, whether a set of
// triggers all hold and, if so, runs every registered resolver.
//
// A Sys has at most two gates. A Poisson rate takes precedence over a
// frequency threshold; with neither configured every Tick is a firing attempt.
package gameevent

import (
	"log/slog"
	"time"
)

type Sys struct {
	triggers  []Trigger
	resolvers []Resolver

	freq    *time.Duration
	elapsed time.Duration

	poissonRate    *float64
	poissonSampler PoissonSampler

	logger *slog.Logger
}

func New() *Sys {
	return &Sys{}
}

func (s *Sys) WithTrigger(t Trigger) *Sys {
	s.triggers = append(s.triggers, t)
	return s
}

func (s *Sys) WithResolver(r Resolver) *Sys {
	s.resolvers = append(s.resolvers, r)
	return s
}

func (s *Sys) WithFreq(freq time.Duration) *Sys {
	s.freq = &freq
	return s
}

func (s *Sys) WithPoissonRate(rate float64) *Sys {
	s.poissonRate = &rate
	return s
}

func (s *Sys) WithPoissonSampler(sampler PoissonSampler) *Sys {
	s.poissonSampler = sampler
	return s
}

func (s *Sys) WithLogger(l *slog.Logger) *Sys {
	s.logger = l
	return s
}

// Elapsed is the time accumulated toward the frequency threshold.
func (s *Sys) Elapsed() time.Duration { return s.elapsed }
func (s *Sys) Triggers() int          { return len(s.triggers) }
func (s *Sys) Resolvers() int         { return len(s.resolvers) }

func (s *Sys) RunOnce() bool {
	if len(s.triggers) == 0 || len(s.resolvers) == 0 {
		return false
	}
	for i, t := range s.triggers {
		if !t.ShouldFire() {
			s.debug("trigger held", "trigger", i)
			return false
		}
	}
	for _, r := range s.resolvers {
		r.Resolve()
	}
	s.debug("fired", "resolvers", len(s.resolvers))
	return true
}

func (s *Sys) Tick(dt time.Duration) bool {
	if s.poissonRate != nil {
		rate := *s.poissonRate
		if rate <= 0 {
			return false
		}
		if s.poissonSampler != nil {
			k := s.poissonSampler.Sample(dt, rate)
			if k == 0 {
				return false
			}
			// k > 1 still fires once.
			return s.RunOnce()
		}
	}
	if s.freq != nil {
		s.elapsed += dt
		if s.elapsed < *s.freq {
			return false
		}
		// Accumulated time is spent even if a trigger holds the fire.
		s.elapsed = 0
	}
	return s.RunOnce()
}

func (s *Sys) debug(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, args...)
}
