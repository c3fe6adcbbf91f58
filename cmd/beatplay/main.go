// Command beatplay plays a drum preset through the local speakers.
// It is a quick way to audition the synth voices without running beatd.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/upaura/music-app/internal/patterns"
	"github.com/upaura/music-app/internal/preset"
	"github.com/upaura/music-app/internal/sequencer"
	"github.com/upaura/music-app/internal/speaker"
)

func main() {
	name := flag.String("preset", "four on the floor", "Preset to play.")
	tempo := flag.Int("tempo", 0, "Override the preset tempo (BPM). 0 keeps the preset's own.")
	bars := flag.Int("bars", 4, "Number of 16-step bars to play before exiting.")
	presetDir := flag.String("presets", "", "Directory with extra preset .yaml files.")
	list := flag.Bool("list", false, "List available presets and exit.")
	flag.Parse()

	library, err := preset.Load(*presetDir)
	if err != nil {
		log.Fatalf("Preset library: %v", err)
	}

	if *list {
		for _, p := range library.All() {
			fmt.Printf("%-24s %d BPM\n", p.Name, p.Tempo)
		}
		return
	}

	p, ok := library.Find(*name)
	if !ok {
		log.Fatalf("Unknown preset %q (try -list)", *name)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := sequencer.NewEngine(sequencer.EngineConfig{Store: patterns.NewMemStore()})
	if err := engine.LoadPattern(p.Pattern()); err != nil {
		log.Fatalf("Load preset: %v", err)
	}
	if *tempo > 0 {
		engine.SetTempo(*tempo)
	}

	go engine.Run(ctx)

	spk, err := speaker.Open(engine.Frames())
	if err != nil {
		log.Fatalf("Audio output: %v", err)
	}
	defer spk.Close()

	bpm := engine.Tempo()
	stepDur := time.Minute / time.Duration(bpm*4)
	total := time.Duration(*bars*sequencer.StepCount) * stepDur

	log.Printf("Playing %q at %d BPM for %d bars...", p.Name, bpm, *bars)
	engine.Play()

	select {
	case <-time.After(total):
	case <-ctx.Done():
		log.Println("Interrupted")
	}

	engine.Stop()
	// let the last voices ring out before tearing the player down
	time.Sleep(500 * time.Millisecond)
	cancel()
}
