// Package game implements the blackjack round engine.
//
// The main types are State, a single round's complete state, and Engine,
// which creates rounds and applies player actions to them.
//
// # Basic Usage
//
//	engine := game.NewEngine(game.DefaultRules(), randutil.New(42), logger)
//	state, err := engine.StartRound(100)
//	if err != nil {
//	    return err // only game.ErrInvalidBet
//	}
//	for state.Phase == game.PhasePlayerTurn {
//	    state = engine.Apply(state, game.Stand)
//	}
//	fmt.Println(state.Result, state.Winnings)
//
// # State Handling
//
// State is immutable by replacement. Apply always returns a new State and
// never modifies the slices of the State passed in. Actions that make no sense
// in the current phase, or for the active hand, return the input unchanged.
//
// # Deterministic Testing
//
// The Engine draws all randomness from the randutil.Source it is given, so a
// fixed seed replays the same shoe. StartRoundWithShoe accepts a pre-arranged
// shoe for complete control:
//
//	shoe := deck.NewStackedShoe(deck.MustParseCards("AsTh7dKc")...)
//	state, _ := engine.StartRoundWithShoe(100, shoe)
//
// An Engine holds its random source, so it must not be shared between
// goroutines. Each simulator worker owns its own Engine.
package game
