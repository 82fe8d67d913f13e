package game

import (
	"fmt"
	"strings"
)

// Phase is the stage a round is in.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhasePlayerTurn
	PhaseDealerTurn
	// PhaseResult is only held while the dealer's hand is being settled and
	// is never returned to callers.
	PhaseResult
	PhaseGameOver
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhasePlayerTurn:
		return "player-turn"
	case PhaseDealerTurn:
		return "dealer-turn"
	case PhaseResult:
		return "result"
	case PhaseGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Action is a player decision
type Action int

const (
	Hit Action = iota + 1
	Stand
	Double
	Split
	Surrender
	// Insurance is recognised but never has any effect.
	Insurance
)

// Actions lists every action in display order
var Actions = []Action{Hit, Stand, Double, Split, Surrender, Insurance}

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	case Double:
		return "double"
	case Split:
		return "split"
	case Surrender:
		return "surrender"
	case Insurance:
		return "insurance"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts a user-supplied string to an Action. Single letter
// shortcuts (h, s, d, p, r) are accepted.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s", "stay":
		return Stand, nil
	case "double", "d", "double-down":
		return Double, nil
	case "split", "p":
		return Split, nil
	case "surrender", "r":
		return Surrender, nil
	case "insurance", "i":
		return Insurance, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// Result is the outcome of a round
type Result int

const (
	ResultNone Result = iota
	ResultWin
	ResultLoss
	ResultPush
	ResultBlackjack
)

// String returns the string representation of a result
func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	case ResultPush:
		return "push"
	case ResultBlackjack:
		return "blackjack"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
