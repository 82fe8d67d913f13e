// Package statistics accumulates per-round results from simulation runs.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/blackjack-trainer/internal/game"
)

// RoundResult is the outcome of a single simulated round
type RoundResult struct {
	Net      float64     // Net result in units of the initial bet
	Seed     int64       // RNG seed for this round (for replay)
	DealerUp int         // Dealer upcard value, 2-11
	Result   game.Result // Aggregate label for the round

	Doubles     int
	Splits      int
	Surrendered bool
	Busts       int // Player hands that went over 21
}

// UpcardStats tracks results against one dealer upcard
type UpcardStats struct {
	Rounds int
	Sum    float64
	Sum2   float64
}

// Statistics tracks simulation results. The zero value is ready to use.
type Statistics struct {
	Rounds int
	Sum    float64
	Sum2   float64   // Sum of squares for variance calculation
	Values []float64 // Every round, for median and percentiles

	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int

	// WonUnits and LostUnits split Sum by sign; they must add back up to it.
	WonUnits  float64
	LostUnits float64

	Doubles    int
	Splits     int
	Surrenders int
	Busts      int

	// ByUpcard is indexed by dealer upcard value; 0 and 1 are unused.
	ByUpcard [12]UpcardStats
}

// Mean returns the average net units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add records one round
func (s *Statistics) Add(r RoundResult) {
	s.Rounds++
	s.Sum += r.Net
	s.Sum2 += r.Net * r.Net
	s.Values = append(s.Values, r.Net)

	if r.Net >= 0 {
		s.WonUnits += r.Net
	} else {
		s.LostUnits += r.Net
	}

	switch r.Result {
	case game.ResultWin:
		s.Wins++
	case game.ResultLoss:
		s.Losses++
	case game.ResultPush:
		s.Pushes++
	case game.ResultBlackjack:
		s.Blackjacks++
	}

	s.Doubles += r.Doubles
	s.Splits += r.Splits
	s.Busts += r.Busts
	if r.Surrendered {
		s.Surrenders++
	}

	if r.DealerUp >= 2 && r.DealerUp <= 11 {
		u := &s.ByUpcard[r.DealerUp]
		u.Rounds++
		u.Sum += r.Net
		u.Sum2 += r.Net * r.Net
	}
}

// Merge folds other into s. Workers each keep their own Statistics and the
// caller merges them once they finish.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Sum += other.Sum
	s.Sum2 += other.Sum2
	s.Values = append(s.Values, other.Values...)

	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.WonUnits += other.WonUnits
	s.LostUnits += other.LostUnits

	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.Surrenders += other.Surrenders
	s.Busts += other.Busts

	for i := range s.ByUpcard {
		s.ByUpcard[i].Rounds += other.ByUpcard[i].Rounds
		s.ByUpcard[i].Sum += other.ByUpcard[i].Sum
		s.ByUpcard[i].Sum2 += other.ByUpcard[i].Sum2
	}
}

// Median returns the median round result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at percentile p (0.0 to 1.0), interpolating
// between neighbouring results.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// UpcardMean returns the mean result against a dealer upcard value (2-11)
func (s *Statistics) UpcardMean(value int) float64 {
	if value < 2 || value > 11 {
		return 0
	}
	u := s.ByUpcard[value]
	if u.Rounds == 0 {
		return 0
	}
	return u.Sum / float64(u.Rounds)
}

// WinRate returns the share of rounds won, naturals included
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins+s.Blackjacks) / float64(s.Rounds)
}

// IsLedgerBalanced checks that won and lost units add up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.Sum-s.WonUnits-s.LostUnits) <= 1e-6
}

// Validate checks the counters agree with each other
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: Sum=%.6f, WonUnits=%.6f, LostUnits=%.6f",
			s.Sum, s.WonUnits, s.LostUnits)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if labelled := s.Wins + s.Losses + s.Pushes + s.Blackjacks; labelled != s.Rounds {
		return fmt.Errorf("result counts (%d) do not match rounds count (%d)", labelled, s.Rounds)
	}

	upcardRounds := 0
	for v := 2; v <= 11; v++ {
		upcardRounds += s.ByUpcard[v].Rounds
	}
	if upcardRounds != s.Rounds {
		return fmt.Errorf("upcard rounds total (%d) does not match rounds count (%d)",
			upcardRounds, s.Rounds)
	}

	return nil
}
