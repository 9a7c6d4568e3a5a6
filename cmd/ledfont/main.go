// Command ledfont compiles the builtin 7x13 face or a TTF/OTF face into the
// engine's bitmap font format.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	xfont "golang.org/x/image/font"

	"github.com/coreman2200/ledgfx/internal/font"
	"github.com/coreman2200/ledgfx/internal/font/fontgen"
)

func main() {
	var (
		out       = flag.String("out", "font.lgf", "output file")
		src       = flag.String("face", "", "TTF/OTF file (empty = builtin 7x13)")
		size      = flag.Float64("size", 8, "pixel size for -face")
		runes     = flag.String("runes", "", "characters to include (default printable ASCII)")
		threshold = flag.Int("threshold", 128, "alpha 0..255 that lights a pixel")
		show      = flag.String("show", "", "print these characters from the result")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var face xfont.Face = fontgen.Basic()
	if *src != "" {
		f, err := fontgen.OpenType(*src, *size)
		if err != nil {
			log.Fatal().Err(err).Str("face", *src).Msg("load face")
		}
		defer f.Close()
		face = f
	}
	if *threshold < 1 || *threshold > 255 {
		log.Fatal().Int("threshold", *threshold).Msg("threshold must be 1..255")
	}
	opts := fontgen.Options{Runes: []rune(*runes), Threshold: uint8(*threshold)}

	fh, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	if err := fontgen.Write(fh, face, opts); err != nil {
		_ = fh.Close()
		log.Fatal().Err(err).Msg("compile font")
	}
	if err := fh.Close(); err != nil {
		log.Fatal().Err(err).Msg("close output")
	}

	fnt, err := font.Load(*out, font.CacheConfig{})
	if err != nil {
		log.Fatal().Err(err).Msg("compiled font does not load")
	}
	defer fnt.Close()
	w, h := fnt.Size()
	log.Info().Str("out", *out).Int("glyphs", fnt.GlyphCount()).Int("w", w).Int("h", h).Msg("font written")

	for _, r := range *show {
		b, err := fnt.Glyph(r)
		if err != nil {
			log.Warn().Err(err).Msg("show")
			continue
		}
		fmt.Printf("%q\n", r)
		for y := 0; y < b.Height; y++ {
			var sb strings.Builder
			for x := 0; x < b.Width; x++ {
				if b.Lit(x, y) {
					sb.WriteByte('#')
				} else {
					sb.WriteByte('.')
				}
			}
			fmt.Println(sb.String())
		}
	}
}
