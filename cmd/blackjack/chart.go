package main

import (
	"fmt"
	"io"

	"github.com/lox/blackjack-trainer/internal/strategy"
)

type ChartCmd struct{}

func (c *ChartCmd) Run(g *Globals, out io.Writer) error {
	if _, err := g.setup(io.Discard); err != nil {
		return err
	}
	_, err := fmt.Fprint(out, strategy.NewChart().Render(nil))
	return err
}
