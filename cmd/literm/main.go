//go:build !windows

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/StarsInDmajor/literm/internal/config"
	"github.com/StarsInDmajor/literm/internal/ptyexec"
	"github.com/StarsInDmajor/literm/internal/sandbox"
	"github.com/StarsInDmajor/literm/internal/server"
	"github.com/StarsInDmajor/literm/internal/session"
)

func main() {
	configureLogger()

	configPath := os.Getenv("LITERM_CONFIG")
	if configPath == "" {
		configPath = "config/config.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}

	resolver, err := sandbox.New(cfg.Server.RootDir)
	if err != nil {
		log.Fatal().Err(err).Str("root", cfg.Server.RootDir).Msg("failed to initialize sandbox")
	}

	state := &server.AppState{
		Config:   cfg,
		Sandbox:  resolver,
		PTY:      ptyexec.NewManager(),
		Sessions: session.New(cfg.SessionTTL()),
	}

	srv := server.New(state)

	addr := cfg.Addr()
	log.Info().
		Str("addr", addr).
		Str("root", resolver.Root()).
		Bool("watch_enabled", cfg.Features.EnableWatch).
		Bool("hdf5_enabled", cfg.Features.EnableHDF5).
		Msg("literm listening")

	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// configureLogger sets up zerolog's console writer with a level read from
// LITERM_LOG (debug, info, warn, error); defaults to debug.
func configureLogger() {
	level := os.Getenv("LITERM_LOG")
	if level == "" {
		level = "debug"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(parsed)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
