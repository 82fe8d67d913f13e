package store

import (
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/blackjack-trainer/internal/currency"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the document in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	data  Data
	clock quartz.Clock

	// onChange runs under mu after every mutation. FileStore uses it to save.
	onChange func(Data) error
}

// NewMemoryStore returns a store holding DefaultData
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	return newMemoryStore(DefaultData(), clock, nil)
}

func newMemoryStore(data Data, clock quartz.Clock, onChange func(Data) error) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	data.Currency.Balance = max(0, data.Currency.Balance)
	return &MemoryStore{data: data, clock: clock, onChange: onChange}
}

// Data returns a copy of the whole document
func (m *MemoryStore) Data() Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyData()
}

func (m *MemoryStore) copyData() Data {
	d := m.data
	if d.Currency.LastDailyBonus != nil {
		last := *d.Currency.LastDailyBonus
		d.Currency.LastDailyBonus = &last
	}
	return d
}

// mutate applies fn and persists. The in-memory change stands even when
// persisting fails.
func (m *MemoryStore) mutate(fn func(*Data)) (Data, error) {
	fn(&m.data)
	if m.onChange == nil {
		return m.copyData(), nil
	}
	return m.copyData(), m.onChange(m.copyData())
}

func (m *MemoryStore) Balance() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Currency.Balance, nil
}

func (m *MemoryStore) UpdateBalance(delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.mutate(func(d *Data) {
		d.Currency.Balance = max(0, d.Currency.Balance+delta)
	})
	return d.Currency.Balance, err
}

func (m *MemoryStore) Stats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Stats, nil
}

func (m *MemoryStore) UpdateStats(fn func(*Stats)) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.mutate(func(d *Data) { fn(&d.Stats) })
	return d.Stats, err
}

func (m *MemoryStore) Settings() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Settings, nil
}

func (m *MemoryStore) UpdateSettings(fn func(*Settings)) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.mutate(func(d *Data) { fn(&d.Settings) })
	return d.Settings, err
}

func (m *MemoryStore) IsDailyBonusAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.untilBonus() == 0
}

func (m *MemoryStore) TimeUntilNextBonus() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.untilBonus()
}

func (m *MemoryStore) ClaimDailyBonus() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.untilBonus() > 0 {
		return false, nil
	}

	now := m.clock.Now()
	_, err := m.mutate(func(d *Data) {
		d.Currency.Balance += currency.DailyBonusAmount
		d.Currency.LastDailyBonus = &now
	})
	return true, err
}

// untilBonus must be called with mu held
func (m *MemoryStore) untilBonus() time.Duration {
	last := m.data.Currency.LastDailyBonus
	if last == nil {
		return 0
	}
	return max(0, currency.BonusCooldown-m.clock.Since(*last))
}
