package game

import "fmt"

// Rules holds the table rules a round is played under.
type Rules struct {
	NumDecks             int
	DealerStandsOnSoft17 bool

	// DoubleAfterSplit is recorded but not enforced: doubling a split hand
	// is always allowed.
	DoubleAfterSplit bool

	// MaxSplits caps the number of player hands, not the number of splits.
	MaxSplits int

	// BlackjackPayout is the natural payout ratio (1.5 for 3:2).
	BlackjackPayout float64

	// InsuranceAvailable is recorded only. Insurance is not offered.
	InsuranceAvailable bool

	// SurrenderAvailable is checked by the session layer. The engine honours
	// a surrender whenever one is applied.
	SurrenderAvailable bool
}

// DefaultRules returns the standard six-deck trainer table.
func DefaultRules() Rules {
	return Rules{
		NumDecks:             6,
		DealerStandsOnSoft17: true,
		DoubleAfterSplit:     true,
		MaxSplits:            4,
		BlackjackPayout:      1.5,
		InsuranceAvailable:   true,
		SurrenderAvailable:   true,
	}
}

// Validate checks the rules are playable
func (r Rules) Validate() error {
	if r.NumDecks < 1 || r.NumDecks > 8 {
		return fmt.Errorf("decks must be between 1 and 8, got %d", r.NumDecks)
	}
	if r.MaxSplits < 1 {
		return fmt.Errorf("max splits must be at least 1, got %d", r.MaxSplits)
	}
	if r.BlackjackPayout <= 0 {
		return fmt.Errorf("blackjack payout must be positive, got %v", r.BlackjackPayout)
	}
	return nil
}
