// actionlab-bench measures per-run analysis latency over one clip.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"time"

	"github.com/actionlab/actionlab/internal/analysis"
	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
	"github.com/actionlab/actionlab/internal/pose/posetest"
)

func main() {
	cfgPath := flag.String("config", "actionlab.yaml", "path to config yaml")
	clipPath := flag.String("clip", "", "clip file to analyze (default: built-in synthetic delivery)")
	n := flag.Int("n", 200, "number of iterations")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// Keep per-run info lines out of the timings.
	logging.Init(slog.LevelWarn, cfg.Logging.Format)

	clip := posetest.Delivery()
	source := "synthetic"
	if *clipPath != "" {
		if clip, err = pose.LoadFile(*clipPath); err != nil {
			log.Fatalf("load clip: %v", err)
		}
		source = *clipPath
	}

	a := analysis.New(cfg.Analysis)
	in := analysis.Input{Frames: clip.Frames, Hand: clip.Hand, FPS: clip.FPS}
	ctx := context.Background()

	// Warmup
	for i := 0; i < 5; i++ {
		a.Analyze(ctx, in)
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		a.Analyze(ctx, in)
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))
	p50 := float64(durations[len(durations)/2].Microseconds()) / 1000.0
	p95 := float64(durations[int(float64(len(durations))*0.95)].Microseconds()) / 1000.0

	fmt.Printf("bench: n=%d avg_ms=%.3f p50_ms=%.3f p95_ms=%.3f frames=%d clip=%s\n",
		len(durations),
		avg,
		p50,
		p95,
		len(clip.Frames),
		source,
	)
}
