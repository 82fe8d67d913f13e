// Package store persists the player's bankroll, lifetime counters and
// settings between sessions.
package store

//go:generate mockgen -source=store.go -destination=mock/mock_store.go -package=mock_store

import (
	"time"

	"github.com/lox/blackjack-trainer/internal/currency"
)

// Store is the persistence collaborator used by the session. Balances never
// go below zero.
type Store interface {
	Balance() (int, error)
	// UpdateBalance adds delta to the balance, clamping at zero, and returns
	// the new balance.
	UpdateBalance(delta int) (int, error)

	Stats() (Stats, error)
	// UpdateStats applies fn to the counters under the store lock.
	UpdateStats(fn func(*Stats)) (Stats, error)

	Settings() (Settings, error)
	UpdateSettings(fn func(*Settings)) (Settings, error)

	IsDailyBonusAvailable() bool
	// ClaimDailyBonus credits the bonus. It returns false when the
	// cooldown has not elapsed.
	ClaimDailyBonus() (bool, error)
	TimeUntilNextBonus() time.Duration
}

// Stats are the lifetime counters
type Stats struct {
	GamesPlayed      int `toml:"games_played" json:"gamesPlayed"`
	Wins             int `toml:"wins" json:"wins"`
	Losses           int `toml:"losses" json:"losses"`
	Pushes           int `toml:"pushes" json:"pushes"`
	Blackjacks       int `toml:"blackjacks" json:"blackjacks"`
	StrategyFollowed int `toml:"strategy_followed" json:"strategyFollowed"`
	StrategyDeviated int `toml:"strategy_deviated" json:"strategyDeviated"`
}

// Accuracy returns the share of decisions that matched the advisor, or 0
// when no decision has been recorded.
func (s Stats) Accuracy() float64 {
	total := s.StrategyFollowed + s.StrategyDeviated
	if total == 0 {
		return 0
	}
	return float64(s.StrategyFollowed) / float64(total)
}

// Settings are user preferences
type Settings struct {
	HintsEnabled bool `toml:"hints_enabled" json:"hintsEnabled"`
	SoundEnabled bool `toml:"sound_enabled" json:"soundEnabled"`
}

// Wallet is the chip balance and the last bonus claim
type Wallet struct {
	Balance        int        `toml:"balance"`
	LastDailyBonus *time.Time `toml:"last_daily_bonus,omitempty"`
}

// Data is the whole persisted document
type Data struct {
	Currency Wallet   `toml:"currency"`
	Stats    Stats    `toml:"stats"`
	Settings Settings `toml:"settings"`
}

// DefaultData is a new player: the starting bankroll, no bonus claimed yet,
// hints on and sound off.
func DefaultData() Data {
	return Data{
		Currency: Wallet{Balance: currency.DefaultBalance},
		Settings: Settings{HintsEnabled: true},
	}
}
