package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/presets"
)

var (
	width       = flag.Float64("width", 1000, "Viewport width in pixels.")
	height      = flag.Float64("height", 800, "Viewport height in pixels.")
	balls       = flag.Int("balls", 1000, "Number of balls to drop.")
	speed       = flag.Int("speed", game.DefaultBallSpeed, "Ball speed (1-20).")
	rows        = flag.Int("rows", game.DefaultPegRows, "Number of peg rows.")
	buckets     = flag.Int("buckets", game.DefaultBucketCount, "Number of buckets.")
	seed        = flag.Int64("seed", 0, "Random seed (0 uses the clock).")
	maxTicks    = flag.Int("ticks", 200000, "Give up after this many frames.")
	presetKey   = flag.String("preset", "", "Start from a named preset.")
	presetsFile = flag.String("presets", "presets.yaml", "Presets file used with -preset.")
	asJSON      = flag.Bool("json", false, "Print the summary as JSON.")
)

func main() {
	flag.Parse()

	var preset *game.Controls
	if *presetKey != "" {
		store, err := presets.Load(*presetsFile)
		if err != nil {
			log.Fatalf("Failed to load presets: %v", err)
		}
		p, err := store.Get(*presetKey)
		if err != nil {
			log.Fatalf("Preset %q: %v", *presetKey, err)
		}
		preset = &p.Controls
	}

	// Explicit flags win over the preset
	var overrides game.Controls
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "balls":
			overrides.BallCount = balls
		case "speed":
			overrides.BallSpeed = speed
		case "rows":
			overrides.PegRows = rows
		case "buckets":
			overrides.BucketCount = buckets
		}
	})
	if preset == nil {
		overrides.BallCount = balls
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	sim := newSimulation(*width, *height, *seed, preset, overrides)
	target := sim.Settings().BallCount

	started := time.Now()
	sim.Start()
	for sim.TickCount() < *maxTicks {
		sim.Tick()
		if len(sim.Balls()) >= target && sim.SettledCount() == len(sim.Balls()) {
			break
		}
	}
	sim.Pause()

	summary := sim.Summary()
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatalf("Failed to encode summary: %v", err)
		}
		return
	}

	fmt.Printf("seed=%d ticks=%d settled=%d/%d elapsed=%s\n",
		*seed, summary.Tick, summary.Settled, summary.Population, time.Since(started).Round(time.Millisecond))
	mean, sd := moments(summary.Counts)
	fmt.Printf("mean bucket=%.2f stddev=%.2f\n\n", mean, sd)
	printHistogram(summary.Counts, 60)
}

// newSimulation builds a board at the default settings, then layers the preset and
// the command line overrides on top.
func newSimulation(width, height float64, seed int64, preset *game.Controls, overrides game.Controls) *game.Simulation {
	sim := game.NewSimulation(game.DefaultSettings(width, height), rand.New(rand.NewSource(seed)))
	if preset != nil {
		sim.Apply(*preset)
	}
	sim.Apply(overrides)
	return sim
}

// moments returns the mean and standard deviation of the bucket index.
func moments(counts []int) (float64, float64) {
	total, sum := 0, 0
	for i, c := range counts {
		total += c
		sum += i * c
	}
	if total == 0 {
		return 0, 0
	}
	mean := float64(sum) / float64(total)
	var v float64
	for i, c := range counts {
		d := float64(i) - mean
		v += d * d * float64(c)
	}
	return mean, math.Sqrt(v / float64(total))
}

func printHistogram(counts []int, barWidth int) {
	top := 1
	for _, c := range counts {
		top = max(top, c)
	}
	for i, c := range counts {
		n := c * barWidth / top
		fmt.Printf("%3d %6d %s\n", i, c, strings.Repeat("#", n))
	}
}
