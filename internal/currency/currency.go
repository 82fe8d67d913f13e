// Package currency holds the chip economy: bet limits, the starting bankroll,
// the daily bonus and display formatting.
package currency

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lox/blackjack-trainer/internal/game"
)

const (
	MinBet           = 10
	MaxBet           = 5000
	DefaultBalance   = 10000
	DailyBonusAmount = 1000

	// BonusCooldown is the wait between daily bonus claims.
	BonusCooldown = 24 * time.Hour
)

var printer = message.NewPrinter(language.English)

// IsValidBet reports whether bet is inside the table limits and covered by balance.
func IsValidBet(bet, balance int) bool {
	return bet >= MinBet && bet <= MaxBet && bet <= balance
}

// MaxBetFor returns the largest bet the balance allows
func MaxBetFor(balance int) int {
	return min(MaxBet, balance)
}

// MinBetFor returns the smallest bet the balance allows. Below MinBet this is
// the whole balance, which IsValidBet still rejects.
func MinBetFor(balance int) int {
	return min(MinBet, balance)
}

// FormatAmount renders n with thousands separators, e.g. 12,500
func FormatAmount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatChips renders n as a chip count, e.g. "12,500 chips"
func FormatChips(n int) string {
	return FormatAmount(n) + " chips"
}

// FormatSigned renders a chip change with an explicit sign, e.g. "+150" or "-50".
func FormatSigned(n int) string {
	if n > 0 {
		return "+" + FormatAmount(n)
	}
	return FormatAmount(n)
}

// FormatBonusCountdown renders the wait until the next bonus as "3h 12m",
// "45m" or "Available now".
func FormatBonusCountdown(d time.Duration) string {
	if d <= 0 {
		return "Available now"
	}

	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// PayoutFor returns the net chips for a single hand settled with result,
// paying naturals at 3:2 rounded down.
func PayoutFor(bet int, result game.Result) int {
	switch result {
	case game.ResultBlackjack:
		return int(math.Floor(float64(bet) * 1.5))
	case game.ResultWin:
		return bet
	case game.ResultLoss:
		return -bet
	default:
		return 0
	}
}
