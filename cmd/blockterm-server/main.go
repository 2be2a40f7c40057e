package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/qnkhuat/blockterm/pkg/config"
	"github.com/qnkhuat/blockterm/pkg/logging"
	"github.com/qnkhuat/blockterm/pkg/server"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load("blockterm-server", os.Args[1:], true)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Console(os.Stderr, "server", cfg.LogLevel)

	st, err := store.Open(cfg.StoreDriver, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer st.Close()

	signer, err := server.HostSigner(cfg.HostKeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load host key")
	}
	if cfg.HostKeyFile == "" {
		log.Warn().Msg("no host key configured, generated a temporary one")
	}

	s := server.NewServer(cfg.ListenSSH, signer, st)
	s.HTTPAddress = cfg.ListenHTTP
	s.ClientBinary = cfg.ClientBinary
	s.ClientArgs = clientArgs(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.ListenAndServe(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		st.Close()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// clientArgs forwards the game and store settings to each session's client.
func clientArgs(cfg *config.Config) []string {
	args := []string{
		"-width", fmt.Sprint(cfg.Width),
		"-height", fmt.Sprint(cfg.Height),
		"-fall-period", fmt.Sprint(cfg.FallPeriod),
		"-tick", cfg.TickInterval.String(),
		"-store", cfg.StoreDriver,
		"-dsn", cfg.DSN(),
		"-log", cfg.LogFile,
		"-log-level", cfg.LogLevel,
	}
	if cfg.Matrix != "" {
		args = append(args, "-matrix", cfg.Matrix)
	}

	return args
}
