package simulator

import (
	"slices"

	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Decide returns the basic-strategy action for the active hand, restricted to
// what the engine will accept right now.
func Decide(engine *game.Engine, state game.State) game.Action {
	legal := engine.LegalActions(state)
	active := state.ActiveHand()

	rec := strategy.Recommend(active, state.DealerUpCard)
	if rec.Action == game.Split && !slices.Contains(legal, game.Split) {
		// Out of splits: play the pair as an ordinary total.
		unsplittable := active
		unsplittable.CanSplit = false
		rec = strategy.Recommend(unsplittable, state.DealerUpCard)
	}
	if rec.Action == game.Double && !slices.Contains(legal, game.Double) {
		return fallbackForDouble(active)
	}
	return rec.Action
}

// fallbackForDouble is the play when a double is advised after the first
// two cards. Soft 18 stands, everything else draws.
func fallbackForDouble(h hand.Hand) game.Action {
	if h.IsSoft && h.Total >= 18 {
		return game.Stand
	}
	return game.Hit
}
