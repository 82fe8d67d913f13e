package statistics

import (
	"math"
	"strings"
	"testing"

	"github.com/lox/blackjack-trainer/internal/game"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate())
	}
}

func TestStatistics_SingleRound(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Net: 1.5, Seed: 12345, DealerUp: 7, Result: game.ResultBlackjack})

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 1.5 {
		t.Errorf("Expected mean of 1.5, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	if stats.Blackjacks != 1 || stats.Wins != 0 {
		t.Errorf("Expected one blackjack and no plain wins, got %d and %d", stats.Blackjacks, stats.Wins)
	}
	if stats.UpcardMean(7) != 1.5 {
		t.Errorf("Expected upcard 7 mean of 1.5, got %f", stats.UpcardMean(7))
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestStatistics_MultipleRounds(t *testing.T) {
	stats := &Statistics{}
	results := []RoundResult{
		{Net: 1, DealerUp: 6, Result: game.ResultWin},
		{Net: -2, DealerUp: 10, Result: game.ResultLoss, Doubles: 1},
		{Net: 3, DealerUp: 10, Result: game.ResultWin, Splits: 1, Doubles: 1},
		{Net: 0, DealerUp: 11, Result: game.ResultPush},
		{Net: -0.5, DealerUp: 10, Result: game.ResultLoss, Surrendered: true},
		{Net: -1, DealerUp: 4, Result: game.ResultLoss, Busts: 1},
	}
	for _, r := range results {
		stats.Add(r)
	}

	if stats.Rounds != 6 {
		t.Fatalf("Expected 6 rounds, got %d", stats.Rounds)
	}
	if math.Abs(stats.Mean()-0.5/6) > 1e-9 {
		t.Errorf("Expected mean of %f, got %f", 0.5/6, stats.Mean())
	}
	if stats.Wins != 2 || stats.Losses != 3 || stats.Pushes != 1 {
		t.Errorf("Unexpected result counts: %d/%d/%d", stats.Wins, stats.Losses, stats.Pushes)
	}
	if stats.Doubles != 2 || stats.Splits != 1 || stats.Surrenders != 1 || stats.Busts != 1 {
		t.Errorf("Unexpected action counts: doubles=%d splits=%d surrenders=%d busts=%d",
			stats.Doubles, stats.Splits, stats.Surrenders, stats.Busts)
	}
	if stats.ByUpcard[10].Rounds != 3 {
		t.Errorf("Expected 3 rounds against a ten, got %d", stats.ByUpcard[10].Rounds)
	}
	if math.Abs(stats.UpcardMean(10)-0.5/3) > 1e-9 {
		t.Errorf("Expected upcard 10 mean of %f, got %f", 0.5/3, stats.UpcardMean(10))
	}
	if stats.UpcardMean(1) != 0 || stats.UpcardMean(12) != 0 {
		t.Error("Expected out of range upcards to report 0")
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats, got %v", err)
	}
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{5, 1, 3, 2, 4} {
		stats.Add(RoundResult{Net: v, DealerUp: 2, Result: game.ResultWin})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{1, 5},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
	if stats.Median() != 3 {
		t.Errorf("Expected median of 3, got %f", stats.Median())
	}
	if stats.Values[0] != 5 {
		t.Error("Percentile must not reorder the recorded values")
	}
}

func TestStatistics_Variance(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		stats.Add(RoundResult{Net: v, DealerUp: 9, Result: game.ResultWin})
	}

	// Sample variance of this set is 32/7
	if math.Abs(stats.Variance()-32.0/7.0) > 1e-9 {
		t.Errorf("Expected variance of %f, got %f", 32.0/7.0, stats.Variance())
	}
	lo, hi := stats.ConfidenceInterval95()
	if lo >= stats.Mean() || hi <= stats.Mean() {
		t.Errorf("Confidence interval [%f, %f] does not contain the mean", lo, hi)
	}
}

func TestStatistics_Merge(t *testing.T) {
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	results := []RoundResult{
		{Net: 1, DealerUp: 6, Result: game.ResultWin},
		{Net: -1, DealerUp: 10, Result: game.ResultLoss, Busts: 1},
		{Net: 1.5, DealerUp: 11, Result: game.ResultBlackjack},
		{Net: -2, DealerUp: 10, Result: game.ResultLoss, Doubles: 1},
	}
	for i, r := range results {
		all.Add(r)
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
	}

	a.Merge(b)

	if a.Rounds != all.Rounds || a.Sum != all.Sum || a.Sum2 != all.Sum2 {
		t.Errorf("Merged totals differ: %+v vs %+v", a, all)
	}
	if a.ByUpcard != all.ByUpcard {
		t.Error("Merged upcard breakdown differs")
	}
	if a.Busts != 1 || a.Doubles != 1 || a.Blackjacks != 1 {
		t.Error("Merged action counts differ")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Expected merged stats to validate, got %v", err)
	}
}

func TestStatistics_Validate(t *testing.T) {
	tests := []struct {
		name  string
		stats Statistics
		want  string
	}{
		{
			name:  "no rounds",
			stats: Statistics{},
			want:  "invalid rounds count",
		},
		{
			name:  "ledger mismatch",
			stats: Statistics{Rounds: 1, Sum: 1, WonUnits: 0.5, Values: []float64{1}},
			want:  "ledger mismatch",
		},
		{
			name:  "values mismatch",
			stats: Statistics{Rounds: 2, Sum: 1, WonUnits: 1, Values: []float64{1}},
			want:  "values array length",
		},
		{
			name:  "results mismatch",
			stats: Statistics{Rounds: 1, Sum: 1, WonUnits: 1, Values: []float64{1}, Wins: 2},
			want:  "result counts",
		},
		{
			name:  "upcard mismatch",
			stats: Statistics{Rounds: 1, Sum: 1, WonUnits: 1, Values: []float64{1}, Wins: 1},
			want:  "upcard rounds total",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stats.Validate()
			if err == nil {
				t.Fatal("Expected validation to fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
