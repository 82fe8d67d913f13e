package session

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/lox/blackjack-trainer/internal/currency"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/gameid"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/store"
	mock_store "github.com/lox/blackjack-trainer/internal/store/mock"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type SessionSuite struct {
	suite.Suite
	clock   *quartz.Mock
	store   *store.MemoryStore
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.clock = quartz.NewMock(s.T())
	s.store = store.NewMemoryStore(s.clock)
	s.session = s.newSession(game.DefaultRules())
}

func (s *SessionSuite) newSession(rules game.Rules) *Session {
	engine := game.NewEngine(rules, randutil.New(1), quietLogger())
	return New(engine, s.store, gameid.NewGenerator(s.clock, randutil.New(2)), quietLogger())
}

// stack makes every round deal from the given cards
func (s *SessionSuite) stack(cards string) {
	s.session.newShoe = func() deck.Shoe {
		return deck.NewStackedShoe(deck.MustParseCards(cards)...)
	}
}

func (s *SessionSuite) setBalance(n int) {
	current, err := s.store.Balance()
	s.Require().NoError(err)
	_, err = s.store.UpdateBalance(n - current)
	s.Require().NoError(err)
}

func (s *SessionSuite) stats() store.Stats {
	st, err := s.store.Stats()
	s.Require().NoError(err)
	return st
}

func (s *SessionSuite) TestStartRejectsBetsOutsideLimits() {
	for _, bet := range []int{0, 5, currency.MinBet - 1, currency.MaxBet + 1} {
		_, err := s.session.Start(bet)
		s.ErrorIs(err, ErrInvalidBet, "bet %d", bet)
	}
	s.False(s.session.Snapshot().InRound)
}

func (s *SessionSuite) TestStartRejectsBetAboveBalance() {
	s.setBalance(50)

	_, err := s.session.Start(100)

	s.ErrorIs(err, ErrInsufficientFunds)
}

func (s *SessionSuite) TestStartWhileRoundInProgress() {
	s.stack("Ts 9h 6d 7c")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	_, err = s.session.Start(100)

	s.ErrorIs(err, ErrRoundInProgress)
}

func (s *SessionSuite) TestStartGivesHintAndRoundID() {
	s.stack("Ts 9h 6d 7c")

	snap, err := s.session.Start(100)
	s.Require().NoError(err)

	s.True(snap.InRound)
	s.NoError(gameid.Validate(snap.RoundID))
	s.Require().NotNil(snap.Hint)
	s.Equal(game.Hit, snap.Hint.Action)
	s.Equal([]game.Action{game.Hit, game.Stand, game.Double, game.Surrender}, snap.Available)
	s.Equal(currency.DefaultBalance, snap.Balance, "stake is not taken until settlement")
}

func (s *SessionSuite) TestNaturalSettlesOnStart() {
	s.stack("As 7h Kd 9c")

	snap, err := s.session.Start(100)
	s.Require().NoError(err)

	s.True(snap.State.IsOver())
	s.Nil(snap.Hint)
	s.Empty(snap.Available)
	s.Equal(currency.DefaultBalance+150, snap.Balance)
	s.Equal(store.Stats{GamesPlayed: 1, Wins: 1, Blackjacks: 1}, s.stats())
}

func (s *SessionSuite) TestFollowedStrategyWin() {
	s.stack("Ks 9h Qd 7c 8s")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	snap, err := s.session.Act(game.Stand)
	s.Require().NoError(err)

	s.Equal(game.ResultWin, snap.State.Result)
	s.Equal(currency.DefaultBalance+100, snap.Balance)
	s.Require().NotNil(snap.LastDecision)
	s.True(snap.LastDecision.Optimal)
	s.Equal(store.Stats{GamesPlayed: 1, Wins: 1, StrategyFollowed: 1}, s.stats())
}

func (s *SessionSuite) TestDeviationIsRecordedBeforeActing() {
	s.stack("Ts Th 6d 7c Kd")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	snap, err := s.session.Act(game.Stand)
	s.Require().NoError(err)

	s.Equal(game.ResultLoss, snap.State.Result)
	s.Equal(currency.DefaultBalance-100, snap.Balance)
	s.Require().NotNil(snap.LastDecision)
	s.False(snap.LastDecision.Optimal)
	s.Equal(game.Hit, snap.LastDecision.Recommended.Action)
	s.Equal(store.Stats{GamesPlayed: 1, Losses: 1, StrategyDeviated: 1}, s.stats())
}

func (s *SessionSuite) TestSplitMixedResultIsPush() {
	s.stack("8s Th 8d 7c Ts 3h")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	for _, a := range []game.Action{game.Split, game.Stand, game.Stand} {
		_, err = s.session.Act(a)
		s.Require().NoError(err, "action %s", a)
	}

	snap := s.session.Snapshot()
	s.Equal(game.ResultPush, snap.State.Result)
	s.Equal(currency.DefaultBalance, snap.Balance)
	// Split and stand on 18 follow the chart; standing on 11 does not.
	s.Equal(store.Stats{GamesPlayed: 1, Pushes: 1, StrategyFollowed: 2, StrategyDeviated: 1}, s.stats())
}

func (s *SessionSuite) TestActWithoutRound() {
	_, err := s.session.Act(game.Hit)
	s.ErrorIs(err, ErrNoActiveRound)

	s.stack("As 7h Kd 9c")
	_, err = s.session.Start(100)
	s.Require().NoError(err)

	_, err = s.session.Act(game.Hit)
	s.ErrorIs(err, ErrNoActiveRound, "round already settled")
}

func (s *SessionSuite) TestSurrenderGatedByRules() {
	rules := game.DefaultRules()
	rules.SurrenderAvailable = false
	s.session = s.newSession(rules)
	s.stack("Ts 9h 6d 7c")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	s.NotContains(s.session.Available(), game.Surrender)
	_, err = s.session.Act(game.Surrender)
	s.ErrorIs(err, ErrActionUnavailable)
	s.Equal(store.Stats{}, s.stats(), "refused actions are not scored")
}

func (s *SessionSuite) TestSurrender() {
	s.stack("Ts 9h 6d 7c")
	_, err := s.session.Start(101)
	s.Require().NoError(err)

	snap, err := s.session.Act(game.Surrender)
	s.Require().NoError(err)

	s.Equal(-50, snap.State.Winnings)
	s.Equal(currency.DefaultBalance-50, snap.Balance)
	s.Equal(1, s.stats().Losses)
}

func (s *SessionSuite) TestInsuranceUnavailable() {
	s.stack("Ts Ah 6d 7c")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	_, err = s.session.Act(game.Insurance)
	s.ErrorIs(err, ErrActionUnavailable)
}

func (s *SessionSuite) TestDoubleNeedsFunds() {
	s.setBalance(150)
	s.stack("6s Th 5d 7c 9h")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	s.NotContains(s.session.Available(), game.Double)
	_, err = s.session.Act(game.Double)
	s.ErrorIs(err, ErrInsufficientFunds)
	s.Equal(store.Stats{}, s.stats())

	s.setBalance(200)
	snap, err := s.session.Act(game.Double)
	s.Require().NoError(err)
	s.Equal(400, snap.Balance)
}

func (s *SessionSuite) TestSplitNeedsFunds() {
	s.setBalance(199)
	s.stack("8s Th 8d 7c 3h Kc")
	_, err := s.session.Start(100)
	s.Require().NoError(err)

	_, err = s.session.Act(game.Split)
	s.ErrorIs(err, ErrInsufficientFunds)
}

func (s *SessionSuite) TestEnd() {
	_, err := s.session.End()
	s.ErrorIs(err, ErrNoActiveRound)

	s.stack("Ts 9h 6d 7c 8s")
	_, err = s.session.Start(100)
	s.Require().NoError(err)

	_, err = s.session.End()
	s.ErrorIs(err, ErrRoundInProgress)

	_, err = s.session.Act(game.Stand)
	s.Require().NoError(err)

	snap, err := s.session.End()
	s.Require().NoError(err)
	s.False(snap.InRound)
	s.Empty(snap.RoundID)
	s.Nil(snap.Hint)
}

func (s *SessionSuite) TestStartClearsFinishedRound() {
	s.stack("As 7h Kd 9c")
	first, err := s.session.Start(100)
	s.Require().NoError(err)

	s.clock.Advance(time.Millisecond)
	second, err := s.session.Start(100)
	s.Require().NoError(err)

	s.NotEqual(first.RoundID, second.RoundID)
	s.Equal(2, s.stats().GamesPlayed)
}

func (s *SessionSuite) TestClaimBonus() {
	ok, snap, err := s.session.ClaimBonus()
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(currency.DefaultBalance+currency.DailyBonusAmount, snap.Balance)
	s.Equal(currency.BonusCooldown, snap.NextBonus)

	ok, _, err = s.session.ClaimBonus()
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SessionSuite) TestSetHints() {
	settings, err := s.session.SetHints(false)
	s.Require().NoError(err)
	s.False(settings.HintsEnabled)
	s.False(s.session.Snapshot().Settings.HintsEnabled)
}

func (s *SessionSuite) TestSetSound() {
	settings, err := s.session.SetSound(false)
	s.Require().NoError(err)
	s.False(settings.SoundEnabled)
	s.True(settings.HintsEnabled)
}

func (s *SessionSuite) TestUseShoe() {
	s.session.UseShoe(func() deck.Shoe {
		return deck.NewStackedShoe(deck.MustParseCards("Ts 9h 8d 7c")...)
	})

	snap, err := s.session.Start(100)
	s.Require().NoError(err)
	s.Equal(18, snap.State.ActiveHand().Total)
	s.Equal(deck.MustParseCard("9h"), snap.State.DealerUpCard)
}

func TestStoreFailuresDoNotStopPlay(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock_store.NewMockStore(ctrl)
	saveErr := errors.New("disk full")

	st.EXPECT().Balance().Return(0, saveErr).AnyTimes()
	st.EXPECT().Stats().Return(store.Stats{}, saveErr).AnyTimes()
	st.EXPECT().Settings().Return(store.Settings{}, saveErr).AnyTimes()
	st.EXPECT().TimeUntilNextBonus().Return(time.Duration(0)).AnyTimes()
	st.EXPECT().UpdateBalance(150).Return(0, saveErr)
	st.EXPECT().UpdateStats(gomock.Any()).Return(store.Stats{}, saveErr)

	engine := game.NewEngine(game.DefaultRules(), randutil.New(1), quietLogger())
	sess := New(engine, st, nil, quietLogger())
	sess.newShoe = func() deck.Shoe { return deck.NewStackedShoe(deck.MustParseCards("As 7h Kd 9c")...) }

	snap, err := sess.Start(100)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if snap.State.Result != game.ResultBlackjack {
		t.Fatalf("expected blackjack, got %s", snap.State.Result)
	}
	if snap.Balance != currency.DefaultBalance {
		t.Errorf("unreadable balance should fall back to %d, got %d", currency.DefaultBalance, snap.Balance)
	}
	if !snap.Settings.HintsEnabled {
		t.Error("unreadable settings should fall back to defaults")
	}
}
