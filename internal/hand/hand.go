// Package hand evaluates blackjack hands.
package hand

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lox/blackjack-trainer/internal/deck"
)

// Hand is a set of cards plus everything derived from them. A Hand is never
// edited in place; Evaluate builds a new one whenever the cards change.
type Hand struct {
	Cards []deck.Card

	// Total is the best total, counting aces as 11 where that does not bust.
	Total int
	// SoftTotal counts every ace as 1.
	SoftTotal int

	IsSoft      bool
	IsBlackjack bool
	IsBust      bool
	CanSplit    bool
	CanDouble   bool
}

// Evaluate computes totals and flags for cards. Non-ace values are summed
// first, then each ace adds 11 if that keeps the running total (with one
// point held back for every ace still to come) at or below 21, and 1 otherwise.
func Evaluate(cards []deck.Card) Hand {
	total := 0
	softTotal := 0
	aces := 0

	for _, card := range cards {
		if card.IsAce() {
			aces++
			continue
		}
		total += card.Value()
		softTotal += card.Value()
	}

	for i := range aces {
		// Aces still to come need at least one point each.
		if total+11+(aces-i-1) <= 21 {
			total += 11
		} else {
			total++
		}
		softTotal++
	}

	return Hand{
		Cards:       slices.Clone(cards),
		Total:       total,
		SoftTotal:   softTotal,
		IsSoft:      aces > 0 && total != softTotal && total <= 21,
		IsBlackjack: len(cards) == 2 && total == 21,
		IsBust:      total > 21,
		CanSplit:    len(cards) == 2 && cards[0].Rank == cards[1].Rank,
		CanDouble:   len(cards) == 2,
	}
}

// With returns a new hand holding h's cards plus card.
func (h Hand) With(card deck.Card) Hand {
	cards := make([]deck.Card, 0, len(h.Cards)+1)
	cards = append(cards, h.Cards...)
	cards = append(cards, card)
	return Evaluate(cards)
}

// IsPair reports whether the hand is exactly two cards of the same rank.
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// Describe returns a short label such as "soft 18", "hard 16", "blackjack" or "bust (24)".
func (h Hand) Describe() string {
	switch {
	case h.IsBlackjack:
		return "blackjack"
	case h.IsBust:
		return "bust (" + strconv.Itoa(h.Total) + ")"
	case h.IsSoft:
		return "soft " + strconv.Itoa(h.Total)
	default:
		return "hard " + strconv.Itoa(h.Total)
	}
}

// String renders the cards followed by the description, e.g. "[A♠ 7♥] soft 18".
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "] " + h.Describe()
}
