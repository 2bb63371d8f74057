package tuning

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tuning.schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("tuning.schema.json", schemaJSON)

type Tuning struct {
	TickDurationMs    int     `yaml:"tick_duration_ms"`
	Ticks             int     `yaml:"ticks"`
	GameSpeed         float64 `yaml:"game_speed"`
	RngState          uint64  `yaml:"rng_state"`
	TraceTicksPerFile int     `yaml:"trace_ticks_per_file"`

	Events []Event `yaml:"events"`
}

type Event struct {
	Name        string     `yaml:"name"`
	FreqMs      *int       `yaml:"freq_ms,omitempty"`
	PoissonRate *float64   `yaml:"poisson_rate,omitempty"`
	Always      bool       `yaml:"always,omitempty"`
	Proximity   *Proximity `yaml:"proximity,omitempty"`
}

type Proximity struct {
	Pair  []int  `yaml:"pair"`
	Edges []Edge `yaml:"edges,omitempty"`
}

type Edge struct {
	A      int     `yaml:"a"`
	B      int     `yaml:"b"`
	Weight float64 `yaml:"weight"`
}

func (t Tuning) TickDuration() time.Duration {
	return time.Duration(t.TickDurationMs) * time.Millisecond
}

func (e Event) Freq() (time.Duration, bool) {
	if e.FreqMs == nil {
		return 0, false
	}
	return time.Duration(*e.FreqMs) * time.Millisecond, true
}

func Defaults() Tuning {
	freq := 1000
	rate := 0.5
	return Tuning{
		TickDurationMs: 200,
		Ticks:          300,
		GameSpeed:      1.0,
		Events: []Event{
			{Name: "harvest", FreqMs: &freq, Always: true},
			{Name: "storm", PoissonRate: &rate, Always: true},
			{
				Name: "encounter",
				Proximity: &Proximity{
					Pair:  []int{1, 2},
					Edges: []Edge{{A: 1, B: 2, Weight: 1}},
				},
			},
		},
	}
}

func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	t, err := Parse(raw)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse validates raw YAML against the tuning schema and decodes it on top of
// Defaults. A present "events" list replaces the default events.
func Parse(raw []byte) (Tuning, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return Tuning{}, errors.New("tuning: empty document")
	}
	if err := validate(raw); err != nil {
		return Tuning{}, err
	}
	t := Defaults()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("tuning: %w", err)
	}
	return t, nil
}

func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	// Round trip through JSON so the validator sees JSON-shaped values.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}
