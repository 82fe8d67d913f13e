package game

import (
	"slices"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
)

// State is everything about one round. Engine methods take a State and
// return a new one; the slices of a State handed out are never written again.
type State struct {
	Phase Phase

	// PlayerHands holds more than one hand after a split.
	PlayerHands     []hand.Hand
	ActiveHandIndex int

	DealerHand hand.Hand
	// DealerUpCard is the dealer's first card. The zero Card means no round
	// has been dealt.
	DealerUpCard deck.Card

	// CurrentBet is the original stake.
	CurrentBet int
	// HandBets is the stake on each hand, parallel to PlayerHands.
	HandBets []int
	TotalBet int

	Result Result
	// Winnings is the signed net chip change for the whole round.
	Winnings int

	Shoe deck.Shoe
}

// ActiveHand returns the hand currently receiving actions.
func (s State) ActiveHand() hand.Hand {
	if s.ActiveHandIndex < 0 || s.ActiveHandIndex >= len(s.PlayerHands) {
		return hand.Hand{}
	}
	return s.PlayerHands[s.ActiveHandIndex]
}

// ActiveBet returns the stake on the active hand, falling back to the
// original bet if HandBets is short.
func (s State) ActiveBet() int {
	return s.betFor(s.ActiveHandIndex)
}

func (s State) betFor(i int) int {
	if i >= 0 && i < len(s.HandBets) && s.HandBets[i] != 0 {
		return s.HandBets[i]
	}
	return s.CurrentBet
}

// DeckIndex returns the shoe cursor
func (s State) DeckIndex() int {
	return s.Shoe.Position()
}

// IsOver reports whether the round has been settled
func (s State) IsOver() bool {
	return s.Phase == PhaseGameOver
}

// clone returns a copy whose slices can be modified without affecting s.
func (s State) clone() State {
	c := s
	c.PlayerHands = slices.Clone(s.PlayerHands)
	c.HandBets = slices.Clone(s.HandBets)
	return c
}
