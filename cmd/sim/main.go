package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"eventsim.ai/internal/logging"
	"eventsim.ai/internal/sim/app"
	"eventsim.ai/internal/sim/trace"
	"eventsim.ai/internal/sim/tuning"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		tuningPath = fs.String("tuning", "", "path to tuning.yaml (default: built-in scenario)")
		ticks      = fs.Int("ticks", -1, "number of ticks to step (default: tuning value)")
		traceDir   = fs.String("trace", "", "directory for fires-*.jsonl.zst traces (empty to disable)")
		logLevel   = fs.String("log_level", "info", "debug|info|warn|error")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := logging.NewLogger(*logLevel, stderr)

	tune := tuning.Defaults()
	if tp := strings.TrimSpace(*tuningPath); tp != "" {
		var err error
		tune, err = tuning.Load(tp)
		if err != nil {
			fmt.Fprintln(stderr, "load tuning:", err)
			return 1
		}
	}
	if *ticks >= 0 {
		tune.Ticks = *ticks
	}

	a, counts := app.Build(tune, logger)

	var tw *trace.Writer
	if dir := strings.TrimSpace(*traceDir); dir != "" {
		tw = trace.NewWriter(dir, "fires", uint64(tune.TraceTicksPerFile))
		a.SetTickLogger(tw)
	}

	logger.Info("sim start", "ticks", tune.Ticks, "tick_duration", tune.TickDuration(), "events", len(tune.Events))
	frame := tune.TickDuration()
	for i := 0; i < tune.Ticks; i++ {
		a.Step(frame)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			fmt.Fprintln(stderr, "close trace:", err)
			return 1
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(stdout, "%s fired=%d\n", name, counts[name].Load())
	}
	logger.Info("sim done", "tick", a.CurrentTick())
	return 0
}
