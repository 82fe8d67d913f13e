// Package strategy recommends basic-strategy plays for a player hand against
// a dealer upcard.
package strategy

import (
	"fmt"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/hand"
)

// Recommendation is the advised action for a hand and a short explanation.
type Recommendation struct {
	Action    game.Action `json:"action"`
	Reason    string      `json:"reason"`
	IsOptimal bool        `json:"isOptimal"`
}

// Recommend returns the basic-strategy action for player against the dealer's
// upcard. A splittable pair is read from the pair table even when its total
// would also appear in the soft or hard table.
func Recommend(player hand.Hand, upCard deck.Card) Recommendation {
	dealer := upCard.Value()

	var action game.Action
	var reason string
	switch {
	case player.IsPair() && player.CanSplit:
		action, reason = pairStrategy(player.Cards[0].Rank, dealer)
	case player.IsSoft:
		action, reason = softStrategy(player.Total, dealer)
	default:
		action, reason = hardStrategy(player.Total, dealer)
	}

	return Recommendation{Action: action, Reason: reason, IsOptimal: true}
}

// IsActionOptimal reports whether action is exactly the recommended one.
// Hitting when a double is advised is still a mistake.
func IsActionOptimal(action game.Action, rec Recommendation) bool {
	return action == rec.Action
}

func pairStrategy(rank deck.Rank, dealer int) (game.Action, string) {
	switch {
	case rank == deck.Ace:
		return game.Split, "Always split Aces. This reduces losses and maximizes winning potential."
	case rank == deck.Eight:
		return game.Split, "Always split 8s. This reduces losses and maximizes winning potential."
	case rank >= deck.Ten:
		return game.Stand, "Never split 10-value pairs. A 20 is a strong hand."
	}

	switch rank {
	case deck.Nine:
		if dealer == 7 || dealer == 10 || dealer == 11 {
			return game.Stand, "Stand with 9s vs dealer 7, 10, or Ace. Your 18 is strong enough."
		}
		return game.Split, "Split 9s vs dealer 2-6, 8, or 9. Two 9s have better value than one 18."
	case deck.Seven:
		if between(dealer, 2, 7) {
			return game.Split, "Split 7s vs dealer 2-7. This improves your chances."
		}
		return game.Hit, "Hit 7s vs dealer 8-Ace. Your 14 is too weak to split."
	case deck.Six:
		if between(dealer, 2, 6) {
			return game.Split, "Split 6s vs dealer 2-6. This reduces losses."
		}
		return game.Hit, "Hit 6s vs dealer 7-Ace. Your 12 is too weak to split."
	case deck.Five:
		// Played as a hard 10, never split.
		if between(dealer, 2, 9) {
			return game.Double, "Double 5s vs dealer 2-9 (treat as 10). This maximizes value."
		}
		return game.Hit, "Hit 5s vs dealer 10 or Ace. Your 10 is not strong enough to double."
	case deck.Four:
		if dealer == 5 || dealer == 6 {
			return game.Split, "Split 4s vs dealer 5-6. This improves your position."
		}
		return game.Hit, "Hit 4s vs dealer 2-4, 7-Ace. Your 8 is too weak to split."
	case deck.Three, deck.Two:
		if between(dealer, 2, 7) {
			return game.Split, fmt.Sprintf("Split %ss vs dealer 2-7. This improves your chances.", rank)
		}
		return game.Hit, fmt.Sprintf("Hit %ss vs dealer 8-Ace. Your low total is too weak to split.", rank)
	default:
		return game.Stand, "Stand with this pair."
	}
}

func softStrategy(total, dealer int) (game.Action, string) {
	switch total {
	case 13, 14:
		if dealer == 5 || dealer == 6 {
			return game.Double, fmt.Sprintf("Double soft %d vs dealer %d. This maximizes value.", total, dealer)
		}
		return game.Hit, fmt.Sprintf("Hit soft %d. You need to improve your hand.", total)
	case 15, 16:
		if between(dealer, 4, 6) {
			return game.Double, fmt.Sprintf("Double soft %d vs dealer 4-6. This maximizes value.", total)
		}
		return game.Hit, fmt.Sprintf("Hit soft %d. You need to improve your hand.", total)
	case 17:
		switch {
		case between(dealer, 3, 6):
			return game.Double, "Double soft 17 vs dealer 3-6. This maximizes value."
		case dealer == 7 || dealer == 8:
			return game.Stand, "Stand on soft 17 vs dealer 7-8. Your 17 is adequate."
		default:
			return game.Hit, "Hit soft 17 vs dealer 9-Ace. You need to improve."
		}
	case 18:
		switch {
		case between(dealer, 3, 6):
			return game.Double, "Double soft 18 vs dealer 3-6. This maximizes value."
		case dealer == 2 || dealer == 7 || dealer == 8:
			return game.Stand, "Stand on soft 18 vs dealer 2, 7-8. Your 18 is strong."
		default:
			return game.Hit, "Hit soft 18 vs dealer 9-Ace. You need to improve."
		}
	case 19, 20:
		return game.Stand, fmt.Sprintf("Always stand on soft %d. This is a strong hand.", total)
	default:
		return game.Stand, "Stand on this soft hand."
	}
}

func hardStrategy(total, dealer int) (game.Action, string) {
	switch {
	case total <= 8:
		return game.Hit, fmt.Sprintf("Always hit %d or less. You need to improve your hand.", total)
	case total == 9:
		if between(dealer, 3, 6) {
			return game.Double, "Double 9 vs dealer 3-6. This maximizes value."
		}
		return game.Hit, "Hit 9 vs dealer 2, 7-Ace. You need to improve."
	case total == 10:
		if between(dealer, 2, 9) {
			return game.Double, "Double 10 vs dealer 2-9. This maximizes value."
		}
		return game.Hit, "Hit 10 vs dealer 10 or Ace. Your 10 is not strong enough to double."
	case total == 11:
		if between(dealer, 2, 10) {
			return game.Double, "Double 11 vs dealer 2-10. This maximizes value."
		}
		return game.Hit, "Hit 11 vs dealer Ace. Your 11 is not strong enough to double."
	case total == 12:
		if between(dealer, 4, 6) {
			return game.Stand, "Stand on 12 vs dealer 4-6. Dealer is likely to bust."
		}
		return game.Hit, "Hit 12 vs dealer 2-3, 7-Ace. You need to improve."
	case total <= 16:
		if between(dealer, 2, 6) {
			return game.Stand, fmt.Sprintf("Stand on %d vs dealer 2-6. Dealer is likely to bust.", total)
		}
		return game.Hit, fmt.Sprintf("Hit %d vs dealer 7-Ace. Dealer is likely to beat you.", total)
	default:
		return game.Stand, fmt.Sprintf("Always stand on %d or higher. This is a strong hand.", total)
	}
}

func between(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
