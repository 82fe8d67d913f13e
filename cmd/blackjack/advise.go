package main

import (
	"fmt"
	"io"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

type AdviseCmd struct {
	Cards  string `arg:"" help:"Player cards, e.g. AsKh or \"8s 8d\""`
	Dealer string `arg:"" help:"Dealer upcard, e.g. Td"`
}

func (c *AdviseCmd) Run(g *Globals, out io.Writer) error {
	if _, err := g.setup(io.Discard); err != nil {
		return err
	}

	cards, err := deck.ParseCards(c.Cards)
	if err != nil {
		return fmt.Errorf("invalid player cards: %w", err)
	}
	if len(cards) < 2 {
		return fmt.Errorf("need at least two player cards, got %d", len(cards))
	}
	up, err := deck.ParseCard(c.Dealer)
	if err != nil {
		return fmt.Errorf("invalid dealer card: %w", err)
	}

	player := hand.Evaluate(cards)
	rec := strategy.Recommend(player, up)

	_, _ = fmt.Fprintf(out, "%s vs %s\n", player.Describe(), up)
	_, err = fmt.Fprintf(out, "%s: %s\n", titleStyle.Render(rec.Action.String()), rec.Reason)
	return err
}
