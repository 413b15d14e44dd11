// Package flow drives candle creation: a single linear state machine
// from emotion selection through placement, hold-to-confirm, and
// submission. One machine serves one session; there are no concurrent
// drafts.
package flow

import (
	"context"
	"sync"
	"time"

	"github.com/lumenmap/candles/internal/domain/emotion"
	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/logger"
)

// State enumerates the creation flow states.
type State int

const (
	Idle State = iota
	SelectingMain
	SelectingMid
	SelectingLeaf
	Placing
	Submitting
	Succeeded
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SelectingMain:
		return "selecting_main"
	case SelectingMid:
		return "selecting_mid"
	case SelectingLeaf:
		return "selecting_leaf"
	case Placing:
		return "placing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Draft is the in-progress candle.
type Draft struct {
	Main, Mid, Leaf string
	Position        model.Position
	Placed          bool
}

// Emotion returns the deepest selected name, which is what gets
// submitted.
func (d Draft) Emotion() string {
	switch {
	case d.Leaf != "":
		return d.Leaf
	case d.Mid != "":
		return d.Mid
	default:
		return d.Main
	}
}

// Backend is the narrow server contract the flow needs.
type Backend interface {
	// CreateCandle submits the draft; rate-limit refusals come back
	// as ErrRateLimited.
	CreateCandle(ctx context.Context, emotionName string, pos model.Position, viewerLocal time.Time) (model.Candle, error)

	// LogRejection is fire-and-forget; implementations swallow errors.
	LogRejection(ctx context.Context, reason, emotionName string, pos model.Position)
}

// Machine is the creation state machine. Safe for concurrent use; the
// backend call itself runs without the lock so Cancel stays responsive
// during submission.
type Machine struct {
	mu sync.Mutex

	state    State
	draft    Draft
	taxonomy emotion.Taxonomy

	holding   bool
	holdStart time.Time

	// generation invalidates in-flight submissions' state updates
	// when the draft they belong to has been discarded.
	generation uint64

	// result of the last completed submission.
	candle model.Candle
	tally  int

	holdDuration time.Duration
	now          func() time.Time
	backend      Backend
	onCreated    func(model.Candle)
	tallyFn      func(emotionName string) int
	log          logger.Logger
}

// NewMachine creates an Idle machine over the given taxonomy.
func NewMachine(taxonomy emotion.Taxonomy, backend Backend, opts ...Option) *Machine {
	m := &Machine{
		state:        Idle,
		taxonomy:     taxonomy,
		holdDuration: DefaultHoldDuration,
		now:          time.Now,
		backend:      backend,
		log:          logger.Named("flow"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Draft returns a copy of the in-progress draft.
func (m *Machine) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Result returns the created candle and its same-emotion tally after a
// successful submission.
func (m *Machine) Result() (model.Candle, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.candle, m.tally
}

// Begin starts a new draft from Idle.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return ErrInvalidTransition
	}
	m.state = SelectingMain
	m.draft = Draft{}
	return nil
}

// Options lists the choices at the current selection level.
func (m *Machine) Options() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case SelectingMain:
		return m.taxonomy.MainNames()
	case SelectingMid:
		if main := m.findMain(m.draft.Main); main != nil {
			names := make([]string, len(main.Mids))
			for i, mid := range main.Mids {
				names[i] = mid.Name
			}
			return names
		}
	case SelectingLeaf:
		if mid := m.findMid(m.draft.Main, m.draft.Mid); mid != nil {
			return append([]string{}, mid.Leaves...)
		}
	}
	return nil
}

func (m *Machine) findMain(name string) *emotion.Main {
	for i := range m.taxonomy.Mains {
		if m.taxonomy.Mains[i].Name == name {
			return &m.taxonomy.Mains[i]
		}
	}
	return nil
}

func (m *Machine) findMid(mainName, midName string) *emotion.Mid {
	main := m.findMain(mainName)
	if main == nil {
		return nil
	}
	for i := range main.Mids {
		if main.Mids[i].Name == midName {
			return &main.Mids[i]
		}
	}
	return nil
}

// Select picks an option at the current level and advances. Selecting
// a leaf auto-advances to Placing.
func (m *Machine) Select(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case SelectingMain:
		if m.findMain(name) == nil {
			return ErrInvalidSelection
		}
		m.draft.Main = name
		m.state = SelectingMid
	case SelectingMid:
		if m.findMid(m.draft.Main, name) == nil {
			return ErrInvalidSelection
		}
		m.draft.Mid = name
		m.state = SelectingLeaf
	case SelectingLeaf:
		mid := m.findMid(m.draft.Main, m.draft.Mid)
		if mid == nil {
			return ErrInvalidSelection
		}
		found := false
		for _, leaf := range mid.Leaves {
			if leaf == name {
				found = true
				break
			}
		}
		if !found {
			return ErrInvalidSelection
		}
		m.draft.Leaf = name
		m.state = Placing
	default:
		return ErrInvalidTransition
	}
	return nil
}

// Back steps to the previous level, clearing the level being left and
// everything deeper while preserving shallower picks.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case SelectingMain:
		m.state = Idle
		m.draft = Draft{}
	case SelectingMid:
		m.draft.Mid, m.draft.Leaf = "", ""
		m.draft.Main = ""
		m.state = SelectingMain
	case SelectingLeaf:
		m.draft.Leaf = ""
		m.draft.Mid = ""
		m.state = SelectingMid
	case Placing:
		m.draft.Leaf = ""
		m.draft.Placed = false
		m.holding = false
		m.state = SelectingLeaf
	default:
		return ErrInvalidTransition
	}
	return nil
}

// Place sets or overwrites the tentative position. Repositioning
// before confirmation is expected.
func (m *Machine) Place(pos model.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Placing {
		return ErrInvalidTransition
	}
	if err := pos.Validate(); err != nil {
		return err
	}
	m.draft.Position = pos
	m.draft.Placed = true
	return nil
}

// Cancel abandons the flow from any state and discards the draft. It
// does not chase an in-flight submission: a submission already racing
// the server may still land, and a late success still reaches the
// on-created hook.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandonLocked()
}

func (m *Machine) abandonLocked() {
	m.state = Idle
	m.draft = Draft{}
	m.holding = false
	m.generation++
}

// Close acknowledges a terminal state and returns to Idle. From
// Rejected this discards the preserved draft; use Retry to keep it.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Succeeded && m.state != Rejected {
		return ErrInvalidTransition
	}
	m.abandonLocked()
	return nil
}

// Retry returns from Rejected to Placing with the draft intact, ready
// for another hold.
func (m *Machine) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Rejected {
		return ErrInvalidTransition
	}
	m.state = Placing
	return nil
}
