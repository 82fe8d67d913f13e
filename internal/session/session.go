// Package session runs one player's table: it starts rounds against the
// bankroll in the store, applies actions, coaches against basic strategy and
// books the result once a round settles.
package session

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-trainer/internal/currency"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/gameid"
	"github.com/lox/blackjack-trainer/internal/store"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

var (
	ErrInvalidBet        = errors.New("invalid bet")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoActiveRound     = errors.New("no active round")
	ErrRoundInProgress   = errors.New("round in progress")
	ErrActionUnavailable = errors.New("action unavailable")
)

// Decision records one player action against the advice shown for it
type Decision struct {
	Action      game.Action             `json:"action"`
	Recommended strategy.Recommendation `json:"recommended"`
	Optimal     bool                    `json:"optimal"`
}

// Snapshot is a read-only view of the session for display
type Snapshot struct {
	RoundID string
	// InRound is false between End and the next Start.
	InRound bool
	State   game.State
	// Hint is the advice for the active hand, nil outside the player's turn.
	Hint         *strategy.Recommendation
	LastDecision *Decision
	Available    []game.Action

	Balance   int
	Stats     store.Stats
	Settings  store.Settings
	NextBonus time.Duration
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	engine *game.Engine
	store  store.Store
	ids    *gameid.Generator
	logger *log.Logger

	// newShoe, when set, replaces the engine's fresh shoe for each round.
	newShoe func() deck.Shoe

	roundID  string
	inRound  bool
	state    game.State
	hint     *strategy.Recommendation
	decision *Decision
}

// New creates a session. A nil ids uses a wall clock generator; a nil
// logger discards output.
func New(engine *game.Engine, st store.Store, ids *gameid.Generator, logger *log.Logger) *Session {
	if ids == nil {
		ids = gameid.NewGenerator(nil, nil)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		engine: engine,
		store:  st,
		ids:    ids,
		logger: logger.WithPrefix("session"),
	}
}

// Rules returns the table rules
func (s *Session) Rules() game.Rules {
	return s.engine.Rules()
}

// Start deals a new round for bet. A finished round still on the table is
// cleared first.
func (s *Session) Start(bet int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inRound && !s.state.IsOver() {
		return s.snapshot(), ErrRoundInProgress
	}
	if bet < currency.MinBet || bet > currency.MaxBet {
		return s.snapshot(), fmt.Errorf("%w: %d, bets are %d to %d", ErrInvalidBet, bet, currency.MinBet, currency.MaxBet)
	}
	if balance := s.balance(); bet > balance {
		return s.snapshot(), fmt.Errorf("%w: bet %d, balance %d", ErrInsufficientFunds, bet, balance)
	}

	var state game.State
	var err error
	if s.newShoe != nil {
		state, err = s.engine.StartRoundWithShoe(bet, s.newShoe())
	} else {
		state, err = s.engine.StartRound(bet)
	}
	if err != nil {
		return s.snapshot(), fmt.Errorf("%w: %v", ErrInvalidBet, err)
	}

	s.roundID = s.ids.Generate()
	s.inRound = true
	s.state = state
	s.decision = nil
	s.refreshHint()

	s.logger.Info("Round started",
		"round", s.roundID,
		"bet", bet,
		"player", state.ActiveHand().String(),
		"dealerUp", state.DealerUpCard.String())

	if state.IsOver() {
		s.settle()
	}
	return s.snapshot(), nil
}

// Act applies action to the active hand. The choice is scored against the
// current advice before it is played.
func (s *Session) Act(action game.Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRound || s.state.Phase != game.PhasePlayerTurn {
		return s.snapshot(), ErrNoActiveRound
	}
	if !slices.Contains(s.engine.LegalActions(s.state), action) {
		return s.snapshot(), fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}
	if !s.canCover(action) {
		return s.snapshot(), fmt.Errorf("%w: %s needs %d more", ErrInsufficientFunds, action, s.state.ActiveBet())
	}

	s.recordDecision(action)
	s.state = s.engine.Apply(s.state, action)
	s.refreshHint()

	if s.state.IsOver() {
		s.settle()
	}
	return s.snapshot(), nil
}

// End clears a finished round from the table.
func (s *Session) End() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRound {
		return s.snapshot(), ErrNoActiveRound
	}
	if !s.state.IsOver() {
		return s.snapshot(), ErrRoundInProgress
	}

	s.inRound = false
	s.state = game.State{}
	s.hint = nil
	s.decision = nil
	s.roundID = ""
	return s.snapshot(), nil
}

// Available lists the actions the player can take now
func (s *Session) Available() []game.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available()
}

// Snapshot returns the current view
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ClaimBonus credits the daily bonus when it is due
func (s *Session) ClaimBonus() (bool, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.ClaimDailyBonus()
	if err != nil {
		s.logger.Warn("Failed to save bonus claim", "error", err)
	}
	if ok {
		s.logger.Info("Daily bonus claimed", "amount", currency.DailyBonusAmount)
	}
	return ok, s.snapshot(), err
}

// SetHints turns the hint display on or off
func (s *Session) SetHints(enabled bool) (store.Settings, error) {
	return s.store.UpdateSettings(func(st *store.Settings) { st.HintsEnabled = enabled })
}

// SetSound turns the round-end bell on or off
func (s *Session) SetSound(enabled bool) (store.Settings, error) {
	return s.store.UpdateSettings(func(st *store.Settings) { st.SoundEnabled = enabled })
}

// UseShoe makes every following round deal from a shoe built by fn instead
// of a fresh shuffle. Passing nil restores shuffled shoes.
func (s *Session) UseShoe(fn func() deck.Shoe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newShoe = fn
}

func (s *Session) available() []game.Action {
	if !s.inRound {
		return nil
	}
	var actions []game.Action
	for _, a := range s.engine.LegalActions(s.state) {
		if s.canCover(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

// canCover reports whether the bankroll can back the extra stake a double
// or split puts out. Stakes are only booked at settlement, so everything
// already on the table counts against the balance.
func (s *Session) canCover(action game.Action) bool {
	if action != game.Double && action != game.Split {
		return true
	}
	return s.balance() >= s.state.TotalBet+s.state.ActiveBet()
}

func (s *Session) refreshHint() {
	if s.state.Phase != game.PhasePlayerTurn {
		s.hint = nil
		return
	}
	rec := strategy.Recommend(s.state.ActiveHand(), s.state.DealerUpCard)
	s.hint = &rec
}

func (s *Session) recordDecision(action game.Action) {
	if s.hint == nil {
		return
	}

	optimal := strategy.IsActionOptimal(action, *s.hint)
	s.decision = &Decision{Action: action, Recommended: *s.hint, Optimal: optimal}

	_, err := s.store.UpdateStats(func(st *store.Stats) {
		if optimal {
			st.StrategyFollowed++
		} else {
			st.StrategyDeviated++
		}
	})
	if err != nil {
		s.logger.Warn("Failed to save strategy stats", "error", err)
	}

	s.logger.Debug("Decision",
		"round", s.roundID,
		"action", action,
		"recommended", s.hint.Action,
		"optimal", optimal)
}

// settle books a finished round: the net winnings go to the balance once
// and the result counters move. A blackjack counts as a win as well.
func (s *Session) settle() {
	balance, err := s.store.UpdateBalance(s.state.Winnings)
	if err != nil {
		s.logger.Warn("Failed to save balance", "error", err)
	}

	result := s.state.Result
	_, err = s.store.UpdateStats(func(st *store.Stats) {
		st.GamesPlayed++
		switch result {
		case game.ResultWin:
			st.Wins++
		case game.ResultLoss:
			st.Losses++
		case game.ResultPush:
			st.Pushes++
		case game.ResultBlackjack:
			st.Blackjacks++
			st.Wins++
		}
	})
	if err != nil {
		s.logger.Warn("Failed to save stats", "error", err)
	}

	s.logger.Info("Round settled",
		"round", s.roundID,
		"result", result,
		"winnings", s.state.Winnings,
		"dealer", s.state.DealerHand.String(),
		"balance", balance)
}

// balance reads the bankroll, falling back to the starting balance when the
// store cannot be read.
func (s *Session) balance() int {
	b, err := s.store.Balance()
	if err != nil {
		s.logger.Warn("Failed to read balance, using default", "error", err)
		return currency.DefaultBalance
	}
	return b
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		RoundID:      s.roundID,
		InRound:      s.inRound,
		State:        s.state,
		Hint:         s.hint,
		LastDecision: s.decision,
		Available:    s.available(),
		Balance:      s.balance(),
		NextBonus:    s.store.TimeUntilNextBonus(),
	}

	var err error
	if snap.Stats, err = s.store.Stats(); err != nil {
		s.logger.Warn("Failed to read stats", "error", err)
	}
	if snap.Settings, err = s.store.Settings(); err != nil {
		s.logger.Warn("Failed to read settings", "error", err)
		snap.Settings = store.DefaultData().Settings
	}
	return snap
}
