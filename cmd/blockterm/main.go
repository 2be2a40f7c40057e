package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/qnkhuat/blockterm/pkg/config"
	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/gui"
	"github.com/qnkhuat/blockterm/pkg/logging"
	"github.com/qnkhuat/blockterm/pkg/mino"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Shape used for blocks pre-filled with -matrix.
const prefillShape = mino.ShapeSquare

func main() {
	cfg, err := config.Load("blockterm", os.Args[1:], false)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "failed to start blockterm: non-interactive terminals are not supported")
		os.Exit(1)
	}

	closer, err := logging.Init(cfg.LogFile, "client", cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	st, err := store.Open(cfg.StoreDriver, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.Close()

	g := game.NewGame(cfg.GameOptions()...)
	points, _ := config.ParseMatrix(cfg.Matrix)
	for _, p := range points {
		if !g.SetBlock(p.X, p.Y, prefillShape) {
			log.Warn().Int("x", p.X).Int("y", p.Y).Msg("pre-filled block outside matrix")
		}
	}

	d := game.NewDriver(g, cfg.TickInterval, log.Logger)
	ui := gui.New(d, st, cfg.Slot)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("slot", cfg.Slot).Int("width", cfg.Width).Int("height", cfg.Height).Msg("game started")
	if err := ui.Run(ctx); err != nil {
		log.Error().Err(err).Msg("ui stopped")
	}
	ui.RecordScore()

	printSummary(d)
}

func printSummary(d *game.Driver) {
	var (
		board  string
		score  int
		ended  bool
		events = d.Events().Events()
	)
	d.View(func(g *game.Game) {
		board, score, ended = g.Render(), g.Score(), g.Ended()
	})

	timeColor := color.New(color.FgHiBlack)
	for _, e := range events {
		fmt.Printf("%s %s\n", timeColor.Sprint(e.Time.Format(event.TimeFormat)), e.Message)
	}

	fmt.Println(board)

	result := color.New(color.FgGreen, color.Bold)
	if ended {
		result = color.New(color.FgRed, color.Bold)
	}
	result.Printf("Lines cleared: %d\n", score)
}
