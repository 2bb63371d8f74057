// Package gamespeed holds the simulation time-scale resource.
package gamespeed

import "time"

// GameSpeed multiplies host frame time into simulated time.
type GameSpeed float32

func Default() GameSpeed { return 1.0 }

func (g GameSpeed) Scale(dt time.Duration) time.Duration {
	if g <= 0 {
		return 0
	}
	if g == 1 {
		return dt
	}
	return time.Duration(float64(dt) * float64(g))
}
