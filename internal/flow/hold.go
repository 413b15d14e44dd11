package flow

import (
	"context"
	"errors"

	"github.com/lumenmap/candles/pkg/logger"
)

// BeginHold starts the hold-to-confirm gesture. Requires a placed
// draft.
func (m *Machine) BeginHold() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Placing {
		return ErrInvalidTransition
	}
	if !m.draft.Placed {
		return ErrNotPlaced
	}
	m.holding = true
	m.holdStart = m.now()
	return nil
}

// HoldProgress reports gesture completion in [0, 1]. Zero when no hold
// is in progress.
func (m *Machine) HoldProgress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.holding {
		return 0
	}
	p := float64(m.now().Sub(m.holdStart)) / float64(m.holdDuration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ReleaseHold ends the gesture. A release before the full duration
// aborts: progress resets, the draft stays, nothing is submitted. A
// completed hold submits the draft and blocks until the backend
// answers; the returned bool reports whether submission was triggered.
func (m *Machine) ReleaseHold(ctx context.Context) (bool, error) {
	m.mu.Lock()

	if m.state != Placing || !m.holding {
		m.mu.Unlock()
		return false, ErrInvalidTransition
	}

	held := m.now().Sub(m.holdStart)
	m.holding = false
	if held < m.holdDuration {
		// Aborted hold: no side effect, ready for another attempt.
		m.mu.Unlock()
		return false, nil
	}

	draft := m.draft
	gen := m.generation
	m.state = Submitting
	m.mu.Unlock()

	m.submit(ctx, draft, gen)
	return true, nil
}

// submit runs the backend call without the machine lock, then folds
// the outcome back in. If the draft was canceled while the call was in
// flight (generation moved on), the machine state is left alone, but a
// late success still reaches the on-created hook, since the server did
// create the candle.
func (m *Machine) submit(ctx context.Context, draft Draft, gen uint64) {
	emotionName := draft.Emotion()
	viewerLocal := m.now()

	candle, err := m.backend.CreateCandle(ctx, emotionName, draft.Position, viewerLocal)

	m.mu.Lock()
	stale := m.generation != gen
	if err != nil {
		if !stale {
			// Draft preserved: the user can retry from here.
			m.state = Rejected
		}
		m.mu.Unlock()

		m.log.Warn(ctx, "candle submission rejected",
			logger.String("emotion", emotionName),
			logger.Error(err))
		if errors.Is(err, ErrRateLimited) {
			// Best-effort side report; never blocks the flow.
			m.backend.LogRejection(ctx, "rate_limited", emotionName, draft.Position)
		}
		return
	}

	if !stale {
		m.candle = candle
		m.tally = 0
		if m.tallyFn != nil {
			m.tally = m.tallyFn(emotionName)
		}
		m.draft = Draft{}
		m.state = Succeeded
	}
	m.mu.Unlock()

	if m.onCreated != nil {
		m.onCreated(candle)
	}
}
