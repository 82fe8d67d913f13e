package main

import (
	"fmt"
	"io"

	"github.com/lox/blackjack-trainer/internal/currency"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(g *Globals, out io.Writer) error {
	e, err := g.setup(io.Discard)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}

	balance, err := st.Balance()
	if err != nil {
		return err
	}
	stats, err := st.Stats()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, titleStyle.Render("Blackjack trainer"))
	_, _ = fmt.Fprintf(out, "Balance:      %s\n", currency.FormatChips(balance))
	_, _ = fmt.Fprintf(out, "Games:        %d\n", stats.GamesPlayed)
	_, _ = fmt.Fprintf(out, "Wins:         %d\n", stats.Wins)
	_, _ = fmt.Fprintf(out, "Losses:       %d\n", stats.Losses)
	_, _ = fmt.Fprintf(out, "Pushes:       %d\n", stats.Pushes)
	_, _ = fmt.Fprintf(out, "Blackjacks:   %d\n", stats.Blackjacks)
	_, _ = fmt.Fprintf(out, "Accuracy:     %.1f%%\n", stats.Accuracy()*100)
	_, err = fmt.Fprintf(out, "Next bonus:   %s\n", currency.FormatBonusCountdown(st.TimeUntilNextBonus()))
	return err
}
