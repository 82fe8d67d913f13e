package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/blackjack-trainer/internal/store"
	"github.com/lox/blackjack-trainer/internal/tui"
)

type PlayCmd struct {
	Ephemeral bool `help:"Play with a fresh in-memory bankroll that is not saved"`
}

func (c *PlayCmd) Run(g *Globals, out io.Writer) error {
	// The TUI owns the terminal, so logs go to a file beside the data file.
	e, err := g.setup(io.Discard)
	if err != nil {
		return err
	}
	logFile, err := e.logFile()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	e.logger = newLogger(logFile, e.config.Trainer.LogLevel)

	var st store.Store
	if c.Ephemeral {
		st = store.NewMemoryStore(e.clock)
		e.logger.Info("Starting trainer", "ephemeral", true, "decks", e.config.Rules.NumDecks)
	} else {
		fs, err := e.openStore()
		if err != nil {
			return err
		}
		st = fs
		e.logger.Info("Starting trainer", "data", fs.Path(), "decks", e.config.Rules.NumDecks)
	}
	sess := e.sessionFactory(st)()

	p := tea.NewProgram(tui.New(sess, e.logger), tea.WithAltScreen(), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("trainer exited: %w", err)
	}
	return nil
}
