// Package app is the host around the event schedulers: a type-keyed resource
// container plus a deterministic stepping loop.
package app

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"eventsim.ai/internal/logging"
	"eventsim.ai/internal/sim/gameevent"
	"eventsim.ai/internal/sim/gamespeed"
	"eventsim.ai/internal/sim/rng"
	"eventsim.ai/internal/sim/trace"
)

type TickLogger interface {
	WriteTick(e trace.Entry) error
}

type namedEvent struct {
	name string
	sys  *gameevent.Sys
}

type App struct {
	resources map[reflect.Type]any
	events    []namedEvent

	tick       uint64
	tickLogger TickLogger
	logger     *slog.Logger
}

type StepResult struct {
	Tick   uint64
	Frame  time.Duration
	Scaled time.Duration
	Fired  []string
}

func New() *App {
	return &App{
		resources: map[reflect.Type]any{},
		logger:    logging.Discard(),
	}
}

// MainApp returns an app with the default game speed and a zero-state Rng.
func MainApp() *App {
	a := New()
	Insert(a, gamespeed.Default())
	Insert(a, rng.Rng{})
	return a
}

// Insert stores v as the resource of type T. An existing resource is
// overwritten in place so pointers handed out earlier stay valid.
func Insert[T any](a *App, v T) {
	k := reflect.TypeOf((*T)(nil)).Elem()
	if p, ok := a.resources[k].(*T); ok {
		*p = v
		return
	}
	p := new(T)
	*p = v
	a.resources[k] = p
}

func Resource[T any](a *App) (*T, bool) {
	p, ok := a.resources[reflect.TypeOf((*T)(nil)).Elem()].(*T)
	return p, ok
}

func (a *App) SetTickLogger(l TickLogger) { a.tickLogger = l }

func (a *App) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.Discard()
	}
	a.logger = l
}

func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) CurrentTick() uint64 { return a.tick }

// AddEvent registers s under name. Events tick in registration order; a
// repeated name replaces the earlier scheduler in its original slot.
func (a *App) AddEvent(name string, s *gameevent.Sys) {
	for i := range a.events {
		if a.events[i].name == name {
			a.events[i].sys = s
			return
		}
	}
	a.events = append(a.events, namedEvent{name: name, sys: s})
}

func (a *App) EventNames() []string {
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.name)
	}
	return out
}

func (a *App) Step(frame time.Duration) StepResult {
	speed := gamespeed.Default()
	if gs, ok := Resource[gamespeed.GameSpeed](a); ok {
		speed = *gs
	}
	a.tick++
	res := StepResult{
		Tick:   a.tick,
		Frame:  frame,
		Scaled: speed.Scale(frame),
	}
	for _, ev := range a.events {
		if ev.sys.Tick(res.Scaled) {
			res.Fired = append(res.Fired, ev.name)
		}
	}

	if a.tickLogger != nil {
		e := trace.Entry{
			Tick:     res.Tick,
			FrameNs:  int64(res.Frame),
			ScaledNs: int64(res.Scaled),
			Fired:    res.Fired,
		}
		if r, ok := Resource[rng.Rng](a); ok {
			e.RngState = r.State()
		}
		if err := a.tickLogger.WriteTick(e); err != nil {
			a.logger.Warn("trace write failed", "tick", res.Tick, "err", err)
		}
	}
	return res
}

// Run steps the app once per frame of wall time until ctx is done or maxTicks
// steps have run (0 means no limit).
func (a *App) Run(ctx context.Context, frame time.Duration, maxTicks uint64) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	var n uint64
	for maxTicks == 0 || n < maxTicks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Step(frame)
			n++
		}
	}
	return nil
}
