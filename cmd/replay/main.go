package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"eventsim.ai/internal/logging"
	"eventsim.ai/internal/sim/app"
	"eventsim.ai/internal/sim/replay"
	"eventsim.ai/internal/sim/tuning"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		tuningPath = fs.String("tuning", "", "path to the tuning.yaml used for the recorded run (default: built-in scenario)")
		traceDir   = fs.String("trace", "", "directory containing fires-*.jsonl.zst")
		toTick     = fs.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *traceDir == "" {
		fmt.Fprintln(stderr, "missing -trace")
		return 2
	}

	tune := tuning.Defaults()
	if tp := strings.TrimSpace(*tuningPath); tp != "" {
		var err error
		tune, err = tuning.Load(tp)
		if err != nil {
			fmt.Fprintln(stderr, "load tuning:", err)
			return 1
		}
	}

	a, _ := app.Build(tune, logging.Discard())
	checked, err := replay.Verify(a, *traceDir, "fires", *toTick)
	if err != nil {
		fmt.Fprintln(stderr, "replay:", err)
		return 1
	}
	fmt.Fprintf(stdout, "replay ok: checked=%d ticks\n", checked)
	return 0
}
