// Package main is a minimal headless driver that builds a world and runs
// its tick loop, with no rendering or interactive control plane: it exists
// only to exercise world.World.Step end-to-end.
package main

import (
	"flag"
	"log"

	"github.com/fluidlife/biosim/config"
	"github.com/fluidlife/biosim/telemetry"
	"github.com/fluidlife/biosim/world"
)

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", 1, "Random seed")
	ticks := flag.Int("ticks", 1000, "Number of ticks to simulate")
	outputDir := flag.String("output", "", "Directory for per-tick CSV telemetry (empty = disabled)")
	logEvery := flag.Int("log-every", 100, "Log a progress line every N ticks (0 = never)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	rec, err := telemetry.NewRecorder(*outputDir)
	if err != nil {
		log.Fatalf("failed to create telemetry recorder: %v", err)
	}
	defer rec.Close()

	w := world.New(cfg, *seed)
	dt := float32(cfg.World.DT)

	for i := 0; i < *ticks; i++ {
		stats := w.Step(dt)

		if err := rec.Write(telemetry.FromTickStats(stats)); err != nil {
			log.Fatalf("tick %d: failed to write telemetry: %v", stats.Tick, err)
		}

		if *logEvery > 0 && stats.Tick%*logEvery == 0 {
			log.Printf("tick %d: population=%d particles=%d offspring=%d culled=%d",
				stats.Tick, stats.Population, stats.ParticleCount, stats.OffspringBorn, stats.CreaturesCulled)
		}
	}
}
