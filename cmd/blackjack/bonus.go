package main

import (
	"fmt"
	"io"

	"github.com/lox/blackjack-trainer/internal/currency"
)

type BonusCmd struct{}

func (c *BonusCmd) Run(g *Globals, out io.Writer) error {
	e, err := g.setup(io.Discard)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}

	claimed, err := st.ClaimDailyBonus()
	if err != nil {
		return err
	}
	if !claimed {
		_, err = fmt.Fprintf(out, "Bonus already claimed. Next bonus in %s\n", currency.FormatBonusCountdown(st.TimeUntilNextBonus()))
		return err
	}

	balance, err := st.Balance()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Claimed %s. Balance: %s\n", currency.FormatChips(currency.DailyBonusAmount), currency.FormatChips(balance))
	return err
}
