package app

import (
	"log/slog"
	"sync/atomic"
)

// CountResolver bumps a counter that may be shared by several resolvers.
type CountResolver struct {
	N *atomic.Uint64
}

func (r CountResolver) Resolve() { r.N.Add(1) }

type LogResolver struct {
	Logger *slog.Logger
	Event  string
}

func (r LogResolver) Resolve() {
	if r.Logger == nil {
		return
	}
	r.Logger.Debug("event resolved", "event", r.Event)
}
