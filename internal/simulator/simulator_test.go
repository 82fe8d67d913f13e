package simulator

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestNewAppliesDefaults(t *testing.T) {
	sim := New(Config{Rounds: 10})

	assert.Positive(t, sim.config.Workers)
	assert.LessOrEqual(t, sim.config.Workers, 8)
	assert.Equal(t, DefaultMaxSteps, sim.config.MaxSteps)
	assert.Equal(t, game.DefaultRules(), sim.config.Rules)
}

func TestRun(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 500, 4, 12345, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, 500, stats.Rounds)
	assert.NoError(t, stats.Validate())
	assert.Positive(t, stats.Wins)
	assert.Positive(t, stats.Losses)
	assert.Zero(t, stats.Surrenders, "basic strategy never surrenders")
	// Basic strategy keeps the edge small; over 500 rounds the mean stays well
	// inside one unit either way.
	assert.InDelta(t, 0, stats.Mean(), 0.5)
}

func TestRunIsReproducibleAcrossWorkerCounts(t *testing.T) {
	one, err := RunSimulation(context.Background(), 200, 1, 99, quietLogger())
	require.NoError(t, err)
	many, err := RunSimulation(context.Background(), 200, 7, 99, quietLogger())
	require.NoError(t, err)

	assert.InDelta(t, one.Sum, many.Sum, 1e-9)
	assert.Equal(t, one.Wins, many.Wins)
	assert.Equal(t, one.ByUpcard, many.ByUpcard)
	assert.ElementsMatch(t, one.Values, many.Values)
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Rounds: 0}).Run(context.Background())
	assert.Error(t, err)

	rules := game.DefaultRules()
	rules.NumDecks = 0
	_, err = New(Config{Rounds: 1, Rules: rules}).Run(context.Background())
	assert.ErrorContains(t, err, "invalid rules")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Rounds: 1000, Workers: 2, Seed: 1, Logger: quietLogger()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsStepLimit(t *testing.T) {
	// One step cannot finish any round that needs a decision.
	_, err := New(Config{Rounds: 50, Workers: 1, Seed: 3, MaxSteps: 1, Logger: quietLogger()}).Run(context.Background())
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestPlayRoundMatchesSeed(t *testing.T) {
	sim := New(Config{Rounds: 1, Logger: quietLogger()})
	seed := randutil.Derive(5, 0)

	a, err := sim.playRound(seed)
	require.NoError(t, err)
	b, err := sim.playRound(seed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, seed, a.Seed)
	assert.GreaterOrEqual(t, a.DealerUp, 2)
	assert.LessOrEqual(t, a.DealerUp, 11)
}

func deal(t *testing.T, engine *game.Engine, cards string) game.State {
	t.Helper()
	state, err := engine.StartRoundWithShoe(Bet, deck.NewStackedShoe(deck.MustParseCards(cards)...))
	require.NoError(t, err)
	return state
}

func TestDecide(t *testing.T) {
	engine := game.NewEngine(game.DefaultRules(), randutil.New(1), quietLogger())

	// Player 6,5 vs dealer 6: double.
	state := deal(t, engine, "6s6h5dTc")
	assert.Equal(t, game.Double, Decide(engine, state))

	// Player 8,8 vs dealer 10: split.
	state = deal(t, engine, "8sTh8d7c")
	assert.Equal(t, game.Split, Decide(engine, state))

	// Player T,6 vs dealer 10: hit.
	state = deal(t, engine, "TsTh6d7c")
	assert.Equal(t, game.Hit, Decide(engine, state))
}

func TestDecideFallsBackWhenDoubleUnavailable(t *testing.T) {
	engine := game.NewEngine(game.DefaultRules(), randutil.New(1), quietLogger())

	// 4,2 vs 6 then a 5 makes three-card 11: hit instead of double.
	state := deal(t, engine, "4s6h2d9c5s")
	state = engine.Apply(state, game.Hit)
	require.Equal(t, 11, state.ActiveHand().Total)
	assert.Equal(t, game.Hit, Decide(engine, state))

	// A,2 vs 4 then a 5 makes three-card soft 18: stand instead of double.
	state = deal(t, engine, "As4h2d9c5s")
	state = engine.Apply(state, game.Hit)
	require.Equal(t, 18, state.ActiveHand().Total)
	require.True(t, state.ActiveHand().IsSoft)
	assert.Equal(t, game.Stand, Decide(engine, state))
}

func TestDecideOutOfSplits(t *testing.T) {
	rules := game.DefaultRules()
	rules.MaxSplits = 1
	engine := game.NewEngine(rules, randutil.New(1), quietLogger())

	// 8,8 vs 10 with no splits left is hard 16: hit.
	state := deal(t, engine, "8sTh8d7c")
	assert.Equal(t, game.Hit, Decide(engine, state))
}

func TestPrintSummary(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 100, 2, 7, quietLogger())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, stats)
	out := buf.String()

	assert.Contains(t, out, "Rounds played: 100")
	assert.Contains(t, out, "95% CI")
	assert.Contains(t, out, "DEALER UPCARD ANALYSIS")
}
