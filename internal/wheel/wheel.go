// Package wheel implements the prize wheel: a timer-driven state machine that
// draws a winning catalog entry and computes the rotation that reveals it.
package wheel

import (
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// Phase is the wheel's position in its spin cycle.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAnticipating Phase = "anticipating"
	PhaseSpinning     Phase = "spinning"
	PhaseSettled      Phase = "settled"
)

// MaxJitterDegrees bounds the visual wobble applied while anticipating.
const MaxJitterDegrees = 10.0

// Easing curves handed to clients along with each phase.
const (
	EasingAnticipation = "cubic-bezier(0.68, -0.55, 0.265, 1.55)"
	EasingSpin         = "cubic-bezier(0.17, 0.67, 0.12, 0.99)"
	EasingRest         = "ease-out"
	restTransition     = 700 * time.Millisecond
)

var (
	// ErrEmptyCatalog is returned when a wheel is built without entries.
	ErrEmptyCatalog = errors.New("wheel catalog is empty")

	// ErrInvalidRotationRange is returned when the extra-rotation range is negative or inverted.
	ErrInvalidRotationRange = errors.New("invalid rotation range")
)

// Timings are the delays between phase transitions.
type Timings struct {
	Anticipation time.Duration
	Spin         time.Duration
	Celebration  time.Duration
}

// DefaultTimings drive the stock 500ms / 3.5s / 3s animation.
var DefaultTimings = Timings{
	Anticipation: 500 * time.Millisecond,
	Spin:         3500 * time.Millisecond,
	Celebration:  3000 * time.Millisecond,
}

// RotationRange bounds the number of extra full turns per spin.
type RotationRange struct {
	Min float64
	Max float64
}

// DefaultRotationRange spins three to five full turns.
var DefaultRotationRange = RotationRange{Min: 3, Max: 5}

// Transition tells a renderer how to animate toward the current rotation.
type Transition struct {
	DurationMs int64  `json:"duration_ms"`
	Easing     string `json:"easing"`
}

// SpinState is a snapshot of the wheel.
type SpinState struct {
	Phase             Phase             `json:"phase"`
	RotationDegrees   float64           `json:"rotation_degrees"`
	FaceRotation      float64           `json:"face_rotation_degrees"`
	JitterDegrees     float64           `json:"jitter_degrees"`
	ExtraRotations    float64           `json:"extra_rotations"`
	TargetIndex       int               `json:"target_index"`
	Winner            *model.PrizeEntry `json:"winner,omitempty"`
	CelebrationActive bool              `json:"celebration_active"`
	SpinEnabled       bool              `json:"spin_enabled"`
	Transition        Transition        `json:"transition"`
}

func initialState() SpinState {
	return SpinState{Phase: PhaseIdle, TargetIndex: -1}
}

// Option configures a Wheel.
type Option func(*Wheel)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(w *Wheel) { w.sched = s }
}

// WithRand replaces the random source.
func WithRand(r RandSource) Option {
	return func(w *Wheel) { w.rnd = r }
}

// WithTimings overrides the phase delays.
func WithTimings(t Timings) Option {
	return func(w *Wheel) { w.timings = t }
}

// WithRotationRange overrides the extra-rotation range.
func WithRotationRange(r RotationRange) Option {
	return func(w *Wheel) { w.rotations = r }
}

// OnTransition registers a callback fired after every phase change.
func OnTransition(f func(from, to Phase)) Option {
	return func(w *Wheel) { w.onTransition = f }
}

// OnSettle registers a callback fired once per spin when the winner is revealed.
func OnSettle(f func(entry model.PrizeEntry, st SpinState)) Option {
	return func(w *Wheel) { w.onSettle = f }
}

// OnRestart registers the caller's play-again callback.
func OnRestart(f func()) Option {
	return func(w *Wheel) { w.onRestart = f }
}

// Wheel is safe for concurrent use. Callbacks are never invoked with the
// wheel's lock held, so they may call back into the wheel.
type Wheel struct {
	mu sync.Mutex

	entries   []model.PrizeEntry
	sched     Scheduler
	rnd       RandSource
	timings   Timings
	rotations RotationRange

	onTransition func(from, to Phase)
	onSettle     func(entry model.PrizeEntry, st SpinState)
	onRestart    func()

	state  SpinState
	gen    uint64
	timers []Timer
	closed bool
}

// New builds an idle wheel over a copy of entries.
func New(entries []model.PrizeEntry, opts ...Option) (*Wheel, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	w := &Wheel{
		entries:   append([]model.PrizeEntry(nil), entries...),
		sched:     RealScheduler{},
		timings:   DefaultTimings,
		rotations: DefaultRotationRange,
		state:     initialState(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rnd == nil {
		w.rnd = NewRand(0)
	}
	if w.rotations.Min < 0 || w.rotations.Max < w.rotations.Min {
		return nil, ErrInvalidRotationRange
	}
	return w, nil
}

// Entries returns the wheel's catalog in wedge order.
func (w *Wheel) Entries() []model.PrizeEntry {
	return append([]model.PrizeEntry(nil), w.entries...)
}

// Spin starts a cycle. It reports false and changes nothing unless the wheel is idle.
func (w *Wheel) Spin() bool {
	w.mu.Lock()
	if w.closed || w.state.Phase != PhaseIdle {
		w.mu.Unlock()
		return false
	}
	w.gen++
	gen := w.gen
	w.timers = w.timers[:0]

	w.state.Winner = nil
	w.state.CelebrationActive = false
	w.state.JitterDegrees = (w.rnd.Float64() - 0.5) * 2 * MaxJitterDegrees
	w.state.Phase = PhaseAnticipating
	w.scheduleLocked(w.timings.Anticipation, func() { w.beginSpin(gen) })
	w.mu.Unlock()

	w.notify(PhaseIdle, PhaseAnticipating)
	return true
}

// beginSpin decides the outcome before the reveal animation starts.
func (w *Wheel) beginSpin(gen uint64) {
	w.mu.Lock()
	if w.closed || gen != w.gen || w.state.Phase != PhaseAnticipating {
		w.mu.Unlock()
		return
	}
	n := len(w.entries)
	i := w.rnd.IntN(n)
	extra := w.rotations.Min + w.rnd.Float64()*(w.rotations.Max-w.rotations.Min)

	w.state.TargetIndex = i
	w.state.ExtraRotations = extra
	w.state.RotationDegrees = FinalRotation(extra, i, n)
	w.state.FaceRotation = FaceRotation(w.state.RotationDegrees, i, n)
	w.state.JitterDegrees = 0
	w.state.Phase = PhaseSpinning
	w.scheduleLocked(w.timings.Spin, func() { w.settle(gen) })
	w.mu.Unlock()

	w.notify(PhaseAnticipating, PhaseSpinning)
}

func (w *Wheel) settle(gen uint64) {
	w.mu.Lock()
	if w.closed || gen != w.gen || w.state.Phase != PhaseSpinning {
		w.mu.Unlock()
		return
	}
	entry := w.entries[w.state.TargetIndex]
	w.state.Winner = &entry
	w.state.CelebrationActive = true
	w.state.Phase = PhaseSettled
	w.scheduleLocked(w.timings.Celebration, func() { w.endCelebration(gen) })
	st := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(PhaseSpinning, PhaseSettled)
	if w.onSettle != nil {
		w.onSettle(entry, st)
	}
}

func (w *Wheel) endCelebration(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.gen {
		return
	}
	w.state.CelebrationActive = false
}

// Restart returns a settled wheel to idle and invokes the play-again callback.
// It reports false and changes nothing from any other phase.
func (w *Wheel) Restart() bool {
	w.mu.Lock()
	if w.closed || w.state.Phase != PhaseSettled {
		w.mu.Unlock()
		return false
	}
	w.stopTimersLocked()
	w.gen++
	w.state = initialState()
	w.mu.Unlock()

	w.notify(PhaseSettled, PhaseIdle)
	if w.onRestart != nil {
		w.onRestart()
	}
	return true
}

// State returns a snapshot of the wheel.
func (w *Wheel) State() SpinState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Close stops pending timers. A closed wheel ignores every trigger.
func (w *Wheel) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.gen++
	w.stopTimersLocked()
}

func (w *Wheel) snapshotLocked() SpinState {
	st := w.state
	if st.Winner != nil {
		winner := *st.Winner
		st.Winner = &winner
	}
	st.SpinEnabled = st.Phase == PhaseIdle && !w.closed
	switch st.Phase {
	case PhaseAnticipating:
		st.Transition = Transition{DurationMs: w.timings.Anticipation.Milliseconds(), Easing: EasingAnticipation}
	case PhaseSpinning:
		st.Transition = Transition{DurationMs: w.timings.Spin.Milliseconds(), Easing: EasingSpin}
	default:
		st.Transition = Transition{DurationMs: restTransition.Milliseconds(), Easing: EasingRest}
	}
	return st
}

func (w *Wheel) scheduleLocked(d time.Duration, f func()) {
	w.timers = append(w.timers, w.sched.AfterFunc(d, f))
}

func (w *Wheel) stopTimersLocked() {
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = w.timers[:0]
}

func (w *Wheel) notify(from, to Phase) {
	if w.onTransition != nil {
		w.onTransition(from, to)
	}
}
