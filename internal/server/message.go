package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/store"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeStart      MessageType = "start"
	MessageTypeAction     MessageType = "action"
	MessageTypeEnd        MessageType = "end"
	MessageTypeState      MessageType = "state"
	MessageTypeClaimBonus MessageType = "claim_bonus"
	MessageTypeAdvise     MessageType = "advise"
	MessageTypeSettings   MessageType = "settings"

	// Server to client messages. State replies reuse MessageTypeState.
	MessageTypeAdvice MessageType = "advice"
	MessageTypeBonus  MessageType = "bonus"
	MessageTypeError  MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// Client → Server Messages

type StartData struct {
	Bet int `json:"bet"`
}

type ActionData struct {
	Action game.Action `json:"action"`
}

type AdviseData struct {
	Cards  string `json:"cards"`
	Dealer string `json:"dealer"`
}

// SettingsData changes the settings that are present
type SettingsData struct {
	Hints *bool `json:"hints,omitempty"`
	Sound *bool `json:"sound,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AdviceData struct {
	strategy.Recommendation
	Hand   HandView `json:"hand"`
	Dealer string   `json:"dealer"`
}

type BonusData struct {
	Claimed          bool   `json:"claimed"`
	Available        bool   `json:"available"`
	NextBonusSeconds int64  `json:"nextBonusSeconds"`
	Countdown        string `json:"countdown"`
	Balance          int    `json:"balance"`
}

// HandView is a hand as the client sees it
type HandView struct {
	Cards     []string `json:"cards"`
	Total     int      `json:"total"`
	Soft      bool     `json:"soft"`
	Blackjack bool     `json:"blackjack"`
	Bust      bool     `json:"bust"`
	Bet       int      `json:"bet,omitempty"`
}

// StateData is a session snapshot with the shoe left out and the dealer's
// hole card hidden while the player acts.
type StateData struct {
	RoundID      string                   `json:"roundId,omitempty"`
	InRound      bool                     `json:"inRound"`
	Phase        string                   `json:"phase,omitempty"`
	PlayerHands  []HandView               `json:"playerHands,omitempty"`
	ActiveHand   int                      `json:"activeHand"`
	Dealer       *HandView                `json:"dealer,omitempty"`
	DealerUpCard string                   `json:"dealerUpCard,omitempty"`
	Bet          int                      `json:"bet,omitempty"`
	TotalBet     int                      `json:"totalBet,omitempty"`
	Result       string                   `json:"result,omitempty"`
	Winnings     int                      `json:"winnings"`
	CardsDealt   int                      `json:"cardsDealt,omitempty"`
	Hint         *strategy.Recommendation `json:"hint,omitempty"`
	LastDecision *session.Decision        `json:"lastDecision,omitempty"`
	Available    []game.Action            `json:"available"`

	Balance          int            `json:"balance"`
	Stats            store.Stats    `json:"stats"`
	Accuracy         float64        `json:"accuracy"`
	Settings         store.Settings `json:"settings"`
	NextBonusSeconds int64          `json:"nextBonusSeconds"`
}

func handView(h hand.Hand, bet int) HandView {
	cards := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		cards[i] = c.String()
	}
	return HandView{
		Cards:     cards,
		Total:     h.Total,
		Soft:      h.IsSoft,
		Blackjack: h.IsBlackjack,
		Bust:      h.IsBust,
		Bet:       bet,
	}
}

// StateFromSnapshot converts a session snapshot for the wire
func StateFromSnapshot(snap session.Snapshot) StateData {
	data := StateData{
		RoundID:          snap.RoundID,
		InRound:          snap.InRound,
		Hint:             snap.Hint,
		LastDecision:     snap.LastDecision,
		Available:        snap.Available,
		Balance:          snap.Balance,
		Stats:            snap.Stats,
		Accuracy:         snap.Stats.Accuracy(),
		Settings:         snap.Settings,
		NextBonusSeconds: int64(snap.NextBonus / time.Second),
	}
	if data.Available == nil {
		data.Available = []game.Action{}
	}
	if !snap.InRound {
		return data
	}

	state := snap.State
	data.Phase = state.Phase.String()
	data.ActiveHand = state.ActiveHandIndex
	data.DealerUpCard = state.DealerUpCard.String()
	data.Bet = state.CurrentBet
	data.TotalBet = state.TotalBet
	data.Result = state.Result.String()
	data.Winnings = state.Winnings
	data.CardsDealt = state.DeckIndex()

	for i, h := range state.PlayerHands {
		bet := state.CurrentBet
		if i < len(state.HandBets) && state.HandBets[i] > 0 {
			bet = state.HandBets[i]
		}
		data.PlayerHands = append(data.PlayerHands, handView(h, bet))
	}

	if state.Phase == game.PhasePlayerTurn {
		up := hand.Evaluate([]deck.Card{state.DealerUpCard})
		dealer := handView(up, 0)
		data.Dealer = &dealer
	} else {
		dealer := handView(state.DealerHand, 0)
		data.Dealer = &dealer
	}
	return data
}
