// Command seqsim steps a show program without hardware and logs what the
// conductor would do.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/sequence"
)

func main() {
	var (
		programPath = flag.String("program", "", "path to a program JSON (seq.v1)")
		fps         = flag.Int("fps", 60, "simulation frames per second")
		realtime    = flag.Bool("realtime", false, "sleep between frames")
		maxS        = flag.Float64("max", 600, "stop after this many simulated seconds")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if *programPath == "" {
		log.Fatal().Msg("provide -program path to a program JSON")
	}
	prog, err := sequence.LoadProgram(*programPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load program")
	}
	if *fps <= 0 {
		*fps = 60
	}

	var simT float64
	lastAlpha := -1.0
	h := sequence.Hooks{
		Show: func(c sequence.Clip) {
			log.Info().Float64("t", simT).Str("clip", c.Name).Str("animation", c.Animation).Str("effect", c.Effect.Name).Msg("show")
		},
		Arm: func(c sequence.Clip) {
			log.Info().Float64("t", simT).Str("clip", c.Name).Str("animation", c.Animation).Msg("arm")
		},
		SetCrossfade: func(a float64) {
			// log in tenths
			if a == 0 || a == 1 || int(a*10) != int(lastAlpha*10) {
				log.Debug().Float64("t", simT).Float64("alpha", a).Msg("crossfade")
			}
			lastAlpha = a
		},
		SetParam: func(name string, v float64) {
			log.Trace().Float64("t", simT).Str("param", name).Float64("v", v).Msg("param")
		},
	}
	player := sequence.NewPlayer(h)
	if err := player.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("load")
	}
	player.Start()

	dt := time.Second / time.Duration(*fps)
	for player.State == sequence.Running && simT < *maxS {
		player.Tick(dt.Seconds())
		simT += dt.Seconds()
		if *realtime {
			time.Sleep(dt)
		}
	}
	log.Info().Float64("t", simT).Str("state", string(player.State)).Msg("done")
}
