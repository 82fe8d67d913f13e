package game

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/randutil"
)

// ErrInvalidBet is returned when a round is started with a bet that is not positive.
var ErrInvalidBet = errors.New("invalid bet")

// Engine creates rounds and applies actions to them under a fixed set of rules.
type Engine struct {
	rules  Rules
	rng    randutil.Source
	logger *log.Logger
}

// NewEngine creates an engine. rng supplies every shuffle; a nil logger discards output.
func NewEngine(rules Rules, rng randutil.Source, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		rules:  rules,
		rng:    rng,
		logger: logger.WithPrefix("engine"),
	}
}

// Rules returns the rules the engine plays under
func (e *Engine) Rules() Rules {
	return e.rules
}

// StartRound builds a fresh shoe and deals a new round.
func (e *Engine) StartRound(bet int) (State, error) {
	if bet <= 0 {
		return State{}, fmt.Errorf("%w: %d, bet must be positive", ErrInvalidBet, bet)
	}
	return e.StartRoundWithShoe(bet, deck.NewShoe(e.rules.NumDecks, e.rng))
}

// StartRoundWithShoe deals a new round from shoe, starting at its cursor.
// Cards go player, dealer, player, dealer. A natural on either side settles
// the round immediately with no player action.
func (e *Engine) StartRoundWithShoe(bet int, shoe deck.Shoe) (State, error) {
	if bet <= 0 {
		return State{}, fmt.Errorf("%w: %d, bet must be positive", ErrInvalidBet, bet)
	}

	var p1, d1, p2, d2 deck.Card
	p1, shoe = shoe.Deal(e.rng)
	d1, shoe = shoe.Deal(e.rng)
	p2, shoe = shoe.Deal(e.rng)
	d2, shoe = shoe.Deal(e.rng)

	player := hand.Evaluate([]deck.Card{p1, p2})
	dealer := hand.Evaluate([]deck.Card{d1, d2})

	state := State{
		Phase:           PhasePlayerTurn,
		PlayerHands:     []hand.Hand{player},
		ActiveHandIndex: 0,
		DealerHand:      dealer,
		DealerUpCard:    d1,
		CurrentBet:      bet,
		HandBets:        []int{bet},
		TotalBet:        bet,
		Shoe:            shoe,
	}

	e.logger.Debug("Round dealt",
		"bet", bet,
		"player", player.String(),
		"dealerUp", d1.String(),
		"deckIndex", shoe.Position())

	if player.IsBlackjack || dealer.IsBlackjack {
		e.logger.Debug("Natural on deal", "player", player.IsBlackjack, "dealer", dealer.IsBlackjack)
		return e.settle(state), nil
	}

	return state, nil
}

// Apply performs action on the active hand and returns the resulting state.
// It never fails: an action that does not apply returns state unchanged.
func (e *Engine) Apply(state State, action Action) State {
	if state.Phase != PhasePlayerTurn {
		return state
	}
	if state.ActiveHandIndex < 0 || state.ActiveHandIndex >= len(state.PlayerHands) {
		return state
	}

	switch action {
	case Hit:
		return e.hit(state)
	case Stand:
		return e.stand(state)
	case Double:
		return e.double(state)
	case Split:
		return e.split(state)
	case Surrender:
		return e.surrender(state)
	default:
		return state
	}
}

// LegalActions lists the actions worth offering for the active hand.
// Surrender is listed only when the rules allow it.
func (e *Engine) LegalActions(state State) []Action {
	if state.Phase != PhasePlayerTurn {
		return nil
	}
	active := state.ActiveHand()

	actions := []Action{Hit, Stand}
	if active.CanDouble {
		actions = append(actions, Double)
	}
	if active.CanSplit && len(state.PlayerHands) < e.rules.MaxSplits {
		actions = append(actions, Split)
	}
	if e.rules.SurrenderAvailable {
		actions = append(actions, Surrender)
	}
	return actions
}

func (e *Engine) hit(state State) State {
	next := state.clone()

	var card deck.Card
	card, next.Shoe = state.Shoe.Deal(e.rng)
	active := state.ActiveHand().With(card)
	next.PlayerHands[next.ActiveHandIndex] = active

	e.logger.Debug("Hit", "hand", next.ActiveHandIndex, "card", card.String(), "total", active.Total)

	if active.IsBust {
		return e.advance(next)
	}
	return next
}

func (e *Engine) stand(state State) State {
	return e.advance(state.clone())
}

func (e *Engine) double(state State) State {
	active := state.ActiveHand()
	if !active.CanDouble {
		return state
	}

	next := state.clone()
	stake := state.ActiveBet()
	next.HandBets[next.ActiveHandIndex] = stake * 2
	next.TotalBet += stake

	var card deck.Card
	card, next.Shoe = state.Shoe.Deal(e.rng)
	next.PlayerHands[next.ActiveHandIndex] = active.With(card)

	e.logger.Debug("Double", "hand", next.ActiveHandIndex, "card", card.String(), "stake", stake*2)

	// One card only, busted or not.
	return e.advance(next)
}

func (e *Engine) split(state State) State {
	active := state.ActiveHand()
	if !active.CanSplit || len(state.PlayerHands) >= e.rules.MaxSplits {
		return state
	}

	shoe := state.Shoe
	var first, second deck.Card
	first, shoe = shoe.Deal(e.rng)
	second, shoe = shoe.Deal(e.rng)

	left := hand.Evaluate([]deck.Card{active.Cards[0], first})
	right := hand.Evaluate([]deck.Card{active.Cards[1], second})
	stake := state.ActiveBet()
	i := state.ActiveHandIndex

	hands := make([]hand.Hand, 0, len(state.PlayerHands)+1)
	hands = append(hands, state.PlayerHands[:i]...)
	hands = append(hands, left, right)
	hands = append(hands, state.PlayerHands[i+1:]...)

	bets := make([]int, 0, len(state.PlayerHands)+1)
	for j := range state.PlayerHands {
		if j == i {
			bets = append(bets, stake, stake)
			continue
		}
		bets = append(bets, state.betFor(j))
	}

	next := state.clone()
	next.PlayerHands = hands
	next.HandBets = bets
	next.TotalBet = state.TotalBet + stake
	next.Shoe = shoe

	e.logger.Debug("Split", "hand", i, "hands", len(hands), "left", left.String(), "right", right.String())
	return next
}

// surrender forfeits half the active hand's stake and ends the whole round,
// whatever the other split hands hold.
func (e *Engine) surrender(state State) State {
	next := state.clone()
	next.Phase = PhaseGameOver
	next.Result = ResultLoss
	next.Winnings = -(state.ActiveBet() / 2)

	e.logger.Debug("Surrender", "hand", state.ActiveHandIndex, "winnings", next.Winnings)
	return next
}

// advance moves to the next hand, or to the dealer once the last hand is done.
// next must already be a private copy.
func (e *Engine) advance(next State) State {
	if next.ActiveHandIndex < len(next.PlayerHands)-1 {
		next.ActiveHandIndex++
		return next
	}
	return e.playDealer(next)
}

// playDealer draws to 17, hitting soft 17 unless the rules say otherwise,
// then settles the round.
func (e *Engine) playDealer(next State) State {
	next.Phase = PhaseDealerTurn
	dealer := next.DealerHand
	shoe := next.Shoe

	for dealer.Total < 17 || (dealer.Total == 17 && dealer.IsSoft && !e.rules.DealerStandsOnSoft17) {
		var card deck.Card
		card, shoe = shoe.Deal(e.rng)
		dealer = dealer.With(card)
		e.logger.Debug("Dealer draws", "card", card.String(), "total", dealer.Total)
	}

	next.DealerHand = dealer
	next.Shoe = shoe
	next.Phase = PhaseResult
	return e.settle(next)
}
