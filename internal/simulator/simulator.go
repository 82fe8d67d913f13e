// Package simulator plays many basic-strategy rounds in parallel and reports
// the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// Bet is the stake placed on every simulated round. Results are reported in
// units of this bet.
const Bet = 100

// DefaultMaxSteps is the per-round action cap used when Config leaves it unset.
const DefaultMaxSteps = 64

// ErrStepLimit is returned when a round does not finish within the step cap.
var ErrStepLimit = errors.New("round exceeded step limit")

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Seed     int64
	Rules    game.Rules
	MaxSteps int
	Logger   *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration. Zero Workers
// uses one per CPU, capped at 8.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = min(runtime.NumCPU(), 8)
	}
	if config.MaxSteps <= 0 {
		config.MaxSteps = DefaultMaxSteps
	}
	if config.Rules == (game.Rules{}) {
		config.Rules = game.DefaultRules()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulator")}
}

// Run plays every round and returns the merged statistics. Round i always
// uses the i-th seed derived from Config.Seed, whatever the worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	workers := min(s.config.Workers, s.config.Rounds)
	partials := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		partials[w] = &statistics.Statistics{}
		g.Go(func() error {
			for i := w; i < s.config.Rounds; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := s.playRound(randutil.Derive(s.config.Seed, i))
				if err != nil {
					return fmt.Errorf("round %d: %w", i+1, err)
				}
				partials[w].Add(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, p := range partials {
		stats.Merge(p)
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Debug("Simulation finished", "rounds", stats.Rounds, "workers", workers, "mean", stats.Mean())
	return stats, nil
}

// playRound plays one round from its own seed with the basic-strategy bot.
func (s *Simulator) playRound(seed int64) (statistics.RoundResult, error) {
	engine := game.NewEngine(s.config.Rules, randutil.New(seed), s.logger)

	state, err := engine.StartRound(Bet)
	if err != nil {
		return statistics.RoundResult{}, err
	}

	result := statistics.RoundResult{
		Seed:     seed,
		DealerUp: state.DealerUpCard.Value(),
	}

	for steps := 0; !state.IsOver(); steps++ {
		if steps >= s.config.MaxSteps {
			return statistics.RoundResult{}, fmt.Errorf("%w: %d steps (seed: %d)", ErrStepLimit, steps, seed)
		}

		action := Decide(engine, state)
		switch action {
		case game.Double:
			result.Doubles++
		case game.Split:
			result.Splits++
		case game.Surrender:
			result.Surrendered = true
		}
		state = engine.Apply(state, action)
	}

	for _, h := range state.PlayerHands {
		if h.IsBust {
			result.Busts++
		}
	}
	result.Result = state.Result
	result.Net = float64(state.Winnings) / Bet
	return result, nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, rounds, workers int, seed int64, logger *log.Logger) (*statistics.Statistics, error) {
	return New(Config{
		Rounds:  rounds,
		Workers: workers,
		Seed:    seed,
		Logger:  logger,
	}).Run(ctx)
}

// PrintSummary writes a summary of simulation results to w
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	mean := stats.Mean()
	low, high := stats.ConfidenceInterval95()
	pct := func(n int) float64 {
		if stats.Rounds == 0 {
			return 0
		}
		return float64(n) / float64(stats.Rounds) * 100
	}

	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Wins: %d (%.1f%%)  Blackjacks: %d (%.1f%%)  Pushes: %d (%.1f%%)  Losses: %d (%.1f%%)\n",
		stats.Wins, pct(stats.Wins), stats.Blackjacks, pct(stats.Blackjacks),
		stats.Pushes, pct(stats.Pushes), stats.Losses, pct(stats.Losses))

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f units/round (house edge %.2f%%)\n", mean, -mean*100)
	fmt.Fprintf(w, "Median: %.4f units/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f units\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== PLAY ANALYSIS ===\n")
	fmt.Fprintf(w, "Doubles: %d  Splits: %d  Surrenders: %d  Busted hands: %d\n",
		stats.Doubles, stats.Splits, stats.Surrenders, stats.Busts)
	fmt.Fprintf(w, "Won: %.2f units  Lost: %.2f units  Net: %.2f units\n",
		stats.WonUnits, stats.LostUnits, stats.Sum)

	fmt.Fprintf(w, "\n=== DEALER UPCARD ANALYSIS ===\n")
	for v := 2; v <= 11; v++ {
		u := stats.ByUpcard[v]
		if u.Rounds == 0 {
			continue
		}
		label := fmt.Sprintf("%d", v)
		if v == 11 {
			label = "A"
		}
		fmt.Fprintf(w, "Upcard %2s: %d rounds, %.3f units/round\n", label, u.Rounds, stats.UpcardMean(v))
	}
}
