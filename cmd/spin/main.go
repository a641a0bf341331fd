// Command spin plays one round of the prize wheel in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/spin-wheel-promo/internal/catalog"
	"github.com/fairyhunter13/spin-wheel-promo/internal/clipboard"
	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
	"github.com/fairyhunter13/spin-wheel-promo/internal/validator"
	"github.com/fairyhunter13/spin-wheel-promo/internal/wheel"
)

func main() {
	name := flag.String("name", "", "display name (required)")
	seed := flag.Uint64("seed", 0, "random seed, 0 for a random draw")
	catalogFile := flag.String("catalog", "", "YAML prize catalog, default catalog when empty")
	copyCode := flag.Bool("copy", true, "copy the won code to the clipboard")
	svgFile := flag.String("svg", "", "write the settled wheel face to this SVG file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	req := model.SubmitNameRequest{Name: strings.TrimSpace(*name)}
	if err := validator.New().Struct(req); err != nil {
		fmt.Fprintln(os.Stderr, "spin: -name is required (at most 64 characters)")
		flag.Usage()
		os.Exit(2)
	}

	prizes, err := catalog.Load(*catalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prize catalog")
	}

	settled := make(chan wheel.SpinState, 1)
	w, err := wheel.New(prizes,
		wheel.WithRand(wheel.NewRand(*seed)),
		wheel.OnTransition(func(from, to wheel.Phase) {
			log.Debug().Str("from", string(from)).Str("phase", string(to)).Msg("wheel transition")
			switch to {
			case wheel.PhaseAnticipating:
				fmt.Printf("Ready %s?\n", req.Name)
			case wheel.PhaseSpinning:
				fmt.Println("Spinning...")
			}
		}),
		wheel.OnSettle(func(_ model.PrizeEntry, st wheel.SpinState) {
			settled <- st
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build wheel")
	}
	defer w.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	w.Spin()

	var st wheel.SpinState
	select {
	case st = <-settled:
	case <-quit:
		fmt.Println("\nbye")
		return
	}

	fmt.Printf("Congratulations %s! You won %s: %s\n", req.Name, st.Winner.Code, st.Winner.DiscountLabel)
	log.Debug().
		Float64("rotation", st.RotationDegrees).
		Float64("face_rotation", st.FaceRotation).
		Float64("extra_rotations", st.ExtraRotations).
		Int("index", st.TargetIndex).
		Msg("spin settled")

	if *copyCode {
		res := clipboard.NewCopier(os.Stdout).Copy(st.Winner.Code)
		fmt.Println(res.Notice)
	}

	if *svgFile != "" {
		if err := writeSVG(*svgFile, w.Entries(), st.FaceRotation); err != nil {
			log.Error().Err(err).Str("file", *svgFile).Msg("failed to write wheel face")
			return
		}
		fmt.Printf("Wheel face written to %s\n", *svgFile)
	}
}

func writeSVG(path string, entries []model.PrizeEntry, faceRotation float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	wheel.RenderSVG(f, entries, wheel.DefaultLayout, faceRotation)
	return f.Close()
}
