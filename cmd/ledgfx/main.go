package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/app"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/config"
	"github.com/coreman2200/ledgfx/internal/overlay"
)

func main() {
	// ---- Flags (config.yaml overrides where it sets a value) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		fps        = flag.Int("fps", 60, "compositor frames per second")
		overlayFPS = flag.Int("overlay-fps", 30, "text overlay frames per second")
		addr       = flag.String("addr", "", "preview listen address (enables the preview)")
		fontPath   = flag.String("font", "", "bitmap font for text overlays (empty = builtin 7x13)")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		text       = flag.String("text", "", "scroll this text on the first matrix device")
		textColor  = flag.String("text-color", "white", "text color, #RRGGBB or a name")
		image      = flag.String("image", "", "show this png/gif/bmp on the first device")
		sequence   = flag.String("sequence", "", "play this show program (json)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Default()
		cfg.FPS = *fps
		cfg.OverlayFPS = *overlayFPS
		cfg.Font.Path = *fontPath
	}
	if cfg.Font.Path == "" {
		cfg.Font.Path = *fontPath
	}
	if *addr != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.Addr = *addr
	}
	if *sequence != "" {
		cfg.Sequence = *sequence
	}
	if *simOnly {
		for i := range cfg.Devices {
			cfg.Devices[i].Driver.Kind = "sim"
		}
	}

	core, err := app.Build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine setup failed")
	}

	if *image != "" {
		if err := core.ShowImage(cfg.Devices[0].Name, *image); err != nil {
			log.Warn().Err(err).Str("image", *image).Msg("image not shown")
		}
	}
	if *text != "" {
		startText(core, cfg, *text, *textColor)
	}

	// ---- Run until signalled ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := core.Run(ctx); err != nil {
		log.Error().Err(err).Msg("engine stopped")
	}
	log.Info().Msg("shutting down")
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
}

func startText(core *app.Core, cfg *config.Config, text, col string) {
	c, err := color.Parse(col)
	if err != nil {
		log.Warn().Err(err).Str("color", col).Msg("text color ignored")
		c = color.White
	}
	for _, d := range cfg.Devices {
		if !strings.EqualFold(d.Layout, "matrix") {
			continue
		}
		err := core.ShowText(d.Name, overlay.Config{
			Text:            text,
			Color:           c,
			Scroll:          overlay.ScrollLeft,
			Speed:           60,
			Loop:            true,
			InvertOnOverlap: true,
		})
		if err != nil {
			log.Warn().Err(err).Str("device", d.Name).Msg("text not shown")
		}
		return
	}
	log.Warn().Msg("no matrix device for text")
}
