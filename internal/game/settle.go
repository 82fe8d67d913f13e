package game

import (
	"math"

	"github.com/lox/blackjack-trainer/internal/hand"
)

// HandOutcome is the settled result of one player hand.
type HandOutcome struct {
	Result Result
	Net    int
}

// SettleHand settles one player hand against the dealer. Checks run in a
// fixed order: player bust, player natural, dealer bust, dealer natural,
// then totals.
func SettleHand(player, dealer hand.Hand, bet int, payout float64) HandOutcome {
	switch {
	case player.IsBust:
		return HandOutcome{Result: ResultLoss, Net: -bet}
	case player.IsBlackjack && !dealer.IsBlackjack:
		return HandOutcome{Result: ResultBlackjack, Net: int(math.Floor(float64(bet) * payout))}
	case dealer.IsBust:
		return HandOutcome{Result: ResultWin, Net: bet}
	case dealer.IsBlackjack && !player.IsBlackjack:
		return HandOutcome{Result: ResultLoss, Net: -bet}
	case player.Total > dealer.Total:
		return HandOutcome{Result: ResultWin, Net: bet}
	case player.Total < dealer.Total:
		return HandOutcome{Result: ResultLoss, Net: -bet}
	default:
		return HandOutcome{Result: ResultPush}
	}
}

// AggregateResult labels a round from its per-hand outcomes. Any natural
// makes the round a blackjack; otherwise only wins is a win and only losses
// is a loss. Everything else, including a win and a loss across split hands,
// is a push even when the chips do not net to zero.
func AggregateResult(outcomes []HandOutcome) Result {
	var hasWin, hasLoss, hasBlackjack bool
	for _, o := range outcomes {
		switch o.Result {
		case ResultBlackjack:
			hasBlackjack = true
			hasWin = true
		case ResultWin:
			hasWin = true
		case ResultLoss:
			hasLoss = true
		}
	}

	switch {
	case hasBlackjack:
		return ResultBlackjack
	case hasWin && !hasLoss:
		return ResultWin
	case hasLoss && !hasWin:
		return ResultLoss
	case len(outcomes) == 0:
		return ResultNone
	default:
		return ResultPush
	}
}

// Outcomes settles every player hand of a state against its dealer hand.
func (e *Engine) Outcomes(state State) []HandOutcome {
	outcomes := make([]HandOutcome, len(state.PlayerHands))
	for i, player := range state.PlayerHands {
		outcomes[i] = SettleHand(player, state.DealerHand, state.betFor(i), e.payout())
	}
	return outcomes
}

// settle fills in the result and winnings and ends the round.
func (e *Engine) settle(next State) State {
	outcomes := e.Outcomes(next)

	winnings := 0
	for _, o := range outcomes {
		winnings += o.Net
	}

	next.Winnings = winnings
	next.Result = AggregateResult(outcomes)
	next.Phase = PhaseGameOver

	e.logger.Debug("Round settled",
		"result", next.Result,
		"winnings", winnings,
		"dealer", next.DealerHand.String(),
		"hands", len(next.PlayerHands))
	return next
}

func (e *Engine) payout() float64 {
	if e.rules.BlackjackPayout <= 0 {
		return 1.5
	}
	return e.rules.BlackjackPayout
}
