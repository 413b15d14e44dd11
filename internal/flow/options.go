package flow

import (
	"time"

	"github.com/lumenmap/candles/internal/domain/model"
)

// DefaultHoldDuration is how long the confirm gesture must be held.
const DefaultHoldDuration = 2500 * time.Millisecond

// Option configures a Machine.
type Option func(*Machine)

// WithHoldDuration overrides the confirm-gesture duration.
func WithHoldDuration(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.holdDuration = d
		}
	}
}

// WithClock injects the time source, for deterministic hold tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithOnCreated registers the hook invoked with every candle the
// backend confirms, including late successes after a cancel.
func WithOnCreated(fn func(model.Candle)) Option {
	return func(m *Machine) {
		m.onCreated = fn
	}
}

// WithTally supplies the same-emotion counter shown on success.
func WithTally(fn func(emotionName string) int) Option {
	return func(m *Machine) {
		m.tallyFn = fn
	}
}
