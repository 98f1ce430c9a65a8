package main

import (
	"errors"
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Rescue-Sense/internal/game"
	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

func main() {
	var layoutPath string
	var mode string
	var seed int64
	var verbose bool

	flag.StringVar(&layoutPath, "layout", "", "YAML world layout (default: built-in maze)")
	flag.StringVar(&mode, "mode", "", "navigation mode: grid or continuous (overrides the layout)")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.BoolVar(&verbose, "verbose", false, "log every simulation event")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "rescue",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	l, err := layout.LoadWithMode(layoutPath, mode)
	if err != nil {
		logger.Fatal("cannot start", "err", err)
	}

	g := game.New(l, logger, game.WithSeed(seed), game.WithVerbose(verbose))
	ebiten.SetWindowTitle("Rescue Sense")
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("game exited", "err", err)
	}
	logger.Info("session finished", "summary", g.Sim().Report().Format())
}
