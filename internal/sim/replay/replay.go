// Package replay re-steps a freshly built app against a recorded fire trace.
package replay

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"eventsim.ai/internal/sim/app"
	"eventsim.ai/internal/sim/rng"
	"eventsim.ai/internal/sim/trace"
)

var errStop = errors.New("replay: stop")

// Verify steps a with each recorded frame and compares the outcome tick by
// tick. toTick of 0 checks every entry. a must be built from the same tuning
// as the recorded run and must not have been stepped yet.
func Verify(a *app.App, dir, prefix string, toTick uint64) (uint64, error) {
	files, err := trace.ListFiles(dir, prefix)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no %s trace files in %s", prefix, dir)
	}

	var checked uint64
	for _, path := range files {
		err := trace.ReadFile(path, func(e trace.Entry) error {
			if toTick != 0 && e.Tick > toTick {
				return errStop
			}
			if err := Step(a, e); err != nil {
				return err
			}
			checked++
			return nil
		})
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return checked, err
		}
	}
	return checked, nil
}

// Step advances a by one recorded entry and reports the first difference.
func Step(a *app.App, e trace.Entry) error {
	res := a.Step(time.Duration(e.FrameNs))
	if res.Tick != e.Tick {
		return fmt.Errorf("tick mismatch: replay=%d trace=%d", res.Tick, e.Tick)
	}
	if int64(res.Scaled) != e.ScaledNs {
		return fmt.Errorf("tick %d: scaled dt mismatch: replay=%d trace=%d", e.Tick, int64(res.Scaled), e.ScaledNs)
	}
	if !slices.Equal(res.Fired, e.Fired) {
		return fmt.Errorf("tick %d: fired mismatch: replay=%v trace=%v", e.Tick, res.Fired, e.Fired)
	}
	if r, ok := app.Resource[rng.Rng](a); ok && r.State() != e.RngState {
		return fmt.Errorf("tick %d: rng state mismatch: replay=%#x trace=%#x", e.Tick, r.State(), e.RngState)
	}
	return nil
}
