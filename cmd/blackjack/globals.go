package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack-trainer/internal/config"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/gameid"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/store"
)

// Globals are the flags shared by every command
type Globals struct {
	Config   string           `short:"c" default:"${config_file}" help:"Config file" type:"path"`
	Data     string           `help:"Data file, overrides the config" type:"path"`
	LogLevel string           `help:"Log level (debug, info, warn, error), overrides the config"`
	NoColor  bool             `help:"Disable colored output"`
	Version  kong.VersionFlag `short:"v" help:"Show version"`
}

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// env is resolved configuration plus the collaborators built from it
type env struct {
	config *config.Config
	clock  quartz.Clock
	logger *log.Logger
}

// setup loads .env, the config file and environment overrides, applies the
// flags on top and builds a logger writing to logOut.
func (g *Globals) setup(logOut io.Writer) (*env, error) {
	if g.NoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if g.Data != "" {
		cfg.Trainer.DataFile = g.Data
	}
	if g.LogLevel != "" {
		cfg.Trainer.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &env{
		config: cfg,
		clock:  quartz.NewReal(),
		logger: newLogger(logOut, cfg.Trainer.LogLevel),
	}, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           lvl,
	})
}

// openStore opens the data file. A new file starts with the configured
// hint and sound settings.
func (e *env) openStore() (*store.FileStore, error) {
	path := e.config.Trainer.DataFile
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	st, err := store.OpenFileStore(path, e.clock, e.logger)
	if err != nil {
		return nil, err
	}

	if isNew {
		hints, sound := e.config.Trainer.Hints, e.config.Trainer.Sound
		if _, err := st.UpdateSettings(func(s *store.Settings) {
			s.HintsEnabled = hints
			s.SoundEnabled = sound
		}); err != nil {
			return nil, fmt.Errorf("failed to initialise %s: %w", path, err)
		}
	}
	return st, nil
}

// sessionFactory returns a constructor for sessions over st. Each session
// gets its own engine seeded from the next derived seed.
func (e *env) sessionFactory(st store.Store) func() *session.Session {
	base := randutil.Seed(e.config.Trainer.Seed, e.clock.Now())
	ids := gameid.NewGenerator(e.clock, nil)
	e.logger.Debug("Session seed", "seed", base)

	n := 0
	return func() *session.Session {
		seed := randutil.Derive(base, n)
		n++
		engine := game.NewEngine(e.config.Rules, randutil.New(seed), e.logger)
		return session.New(engine, st, ids, e.logger)
	}
}

// logFile opens the trainer log beside the data file
func (e *env) logFile() (*os.File, error) {
	path := filepath.Join(filepath.Dir(e.config.Trainer.DataFile), "blackjack.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
