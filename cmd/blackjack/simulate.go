package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/simulator"
)

type SimulateCmd struct {
	Rounds  int   `short:"n" default:"100000" help:"Number of rounds to play"`
	Workers int   `short:"w" help:"Parallel workers (default: number of CPUs, at most 8)"`
	Seed    int64 `help:"Random seed, overrides the config (0 picks one)"`
}

func (c *SimulateCmd) Run(g *Globals, out io.Writer) error {
	e, err := g.setup(os.Stderr)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = e.config.Trainer.Seed
	}
	seed = randutil.Seed(seed, e.clock.Now())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Seed:    seed,
		Rules:   e.config.Rules,
		Logger:  e.logger,
	})

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, titleStyle.Render("Basic strategy simulation"))
	_, _ = fmt.Fprintf(out, "Seed: %d  Elapsed: %s\n\n", seed, time.Since(start).Round(time.Millisecond))
	simulator.PrintSummary(out, stats)
	return nil
}
