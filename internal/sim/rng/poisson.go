package rng

import (
	"math"
	"time"
)

const (
	knuthChunk   = 30.0
	normalCutoff = 1000.0
)

// Poisson samples occurrence counts from a shared Rng. It satisfies
// gameevent.PoissonSampler.
type Poisson struct {
	r *Rng
}

func NewPoisson(r *Rng) *Poisson {
	if r == nil {
		r = New()
	}
	return &Poisson{r: r}
}

func (p *Poisson) Sample(dt time.Duration, rate float64) uint64 {
	lambda := rate * dt.Seconds()
	if math.IsNaN(lambda) || lambda <= 0 {
		return 0
	}
	if math.IsInf(lambda, 1) {
		return math.MaxUint64
	}
	if lambda > normalCutoff {
		return p.normal(lambda)
	}
	var k uint64
	for lambda > 0 {
		step := math.Min(lambda, knuthChunk)
		lambda -= step
		k += p.knuth(step)
	}
	return k
}

func (p *Poisson) knuth(lambda float64) uint64 {
	limit := math.Exp(-lambda)
	prod := p.r.Float64()
	var n uint64
	for prod > limit {
		n++
		prod *= p.r.Float64()
	}
	return n
}

// normal approximates large rates with a Box-Muller draw.
func (p *Poisson) normal(lambda float64) uint64 {
	u1 := p.r.Float64()
	u2 := p.r.Float64()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	v := math.Round(lambda + math.Sqrt(lambda)*z)
	if v <= 0 {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}
