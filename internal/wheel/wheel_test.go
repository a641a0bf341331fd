package wheel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

func testCatalog() []model.PrizeEntry {
	return []model.PrizeEntry{
		{Code: "BIRYANI10", DiscountLabel: "10% OFF", Color: "#ef4444", BackgroundColor: "#fef2f2"},
		{Code: "SPICE20", DiscountLabel: "20% OFF", Color: "#3b82f6", BackgroundColor: "#eff6ff"},
		{Code: "FLAVOR15", DiscountLabel: "15% OFF", Color: "#10b981", BackgroundColor: "#f0fdf4"},
		{Code: "MASALA25", DiscountLabel: "25% OFF", Color: "#8b5cf6", BackgroundColor: "#faf5ff"},
		{Code: "RICE30", DiscountLabel: "30% OFF", Color: "#f59e0b", BackgroundColor: "#fffbeb"},
		{Code: "FEAST50", DiscountLabel: "50% OFF", Color: "#ec4899", BackgroundColor: "#fdf2f8"},
		{Code: "DELUX40", DiscountLabel: "40% OFF", Color: "#6366f1", BackgroundColor: "#eef2ff"},
		{Code: "TASTE35", DiscountLabel: "35% OFF", Color: "#f97316", BackgroundColor: "#fff7ed"},
	}
}

// scriptedRand replays fixed draws, then returns zero values.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func newTestWheel(t *testing.T, r RandSource, opts ...Option) (*Wheel, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	all := append([]Option{WithScheduler(sched), WithRand(r)}, opts...)
	w, err := New(testCatalog(), all...)
	require.NoError(t, err)
	return w, sched
}

func TestNew_EmptyCatalog(t *testing.T) {
	w, err := New(nil)
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNew_InvalidRotationRange(t *testing.T) {
	_, err := New(testCatalog(), WithRotationRange(RotationRange{Min: 5, Max: 3}))
	assert.ErrorIs(t, err, ErrInvalidRotationRange)

	_, err = New(testCatalog(), WithRotationRange(RotationRange{Min: -1, Max: 3}))
	assert.ErrorIs(t, err, ErrInvalidRotationRange)
}

func TestNew_InitialState(t *testing.T) {
	w, _ := newTestWheel(t, &scriptedRand{})

	st := w.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Winner)
	assert.Zero(t, st.RotationDegrees)
	assert.Equal(t, -1, st.TargetIndex)
	assert.True(t, st.SpinEnabled)
	assert.Equal(t, EasingRest, st.Transition.Easing)
}

func TestSpin_PhaseSequence(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{5}, floats: []float64{0.25, 0.5}})

	require.True(t, w.Spin())
	st := w.State()
	assert.Equal(t, PhaseAnticipating, st.Phase)
	assert.False(t, st.SpinEnabled)
	assert.Nil(t, st.Winner)
	assert.InDelta(t, -5.0, st.JitterDegrees, 1e-9)
	assert.Zero(t, st.RotationDegrees)
	assert.Equal(t, EasingAnticipation, st.Transition.Easing)
	assert.Equal(t, int64(500), st.Transition.DurationMs)

	sched.Advance(499 * time.Millisecond)
	assert.Equal(t, PhaseAnticipating, w.State().Phase)

	sched.Advance(time.Millisecond)
	st = w.State()
	assert.Equal(t, PhaseSpinning, st.Phase)
	assert.Nil(t, st.Winner, "winner stays hidden while spinning")
	assert.Equal(t, 5, st.TargetIndex, "outcome is decided when the spin starts")
	assert.Zero(t, st.JitterDegrees)
	assert.Equal(t, EasingSpin, st.Transition.Easing)
	assert.Equal(t, int64(3500), st.Transition.DurationMs)

	sched.Advance(3499 * time.Millisecond)
	assert.Equal(t, PhaseSpinning, w.State().Phase)

	sched.Advance(time.Millisecond)
	st = w.State()
	assert.Equal(t, PhaseSettled, st.Phase)
	require.NotNil(t, st.Winner)
	assert.Equal(t, "FEAST50", st.Winner.Code)
	assert.True(t, st.CelebrationActive)

	sched.Advance(2999 * time.Millisecond)
	assert.True(t, w.State().CelebrationActive)

	sched.Advance(time.Millisecond)
	st = w.State()
	assert.False(t, st.CelebrationActive, "celebration ends on its own")
	assert.Equal(t, PhaseSettled, st.Phase, "celebration does not change the phase")
	require.NotNil(t, st.Winner)
	assert.Zero(t, sched.Pending())
}

func TestSpin_TargetRotation(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{3}, floats: []float64{0.5, 0.6}})

	require.True(t, w.Spin())
	sched.Advance(500 * time.Millisecond)

	st := w.State()
	assert.InDelta(t, 4.2, st.ExtraRotations, 1e-9)
	// 4.2*360 + (3*45 + 22.5 - 90)
	assert.InDelta(t, 1579.5, st.RotationDegrees, 1e-9)
	assert.InDelta(t, FinalRotation(4.2, 3, 8), st.RotationDegrees, 1e-9)
	assert.GreaterOrEqual(t, st.FaceRotation, st.RotationDegrees)
	assert.Equal(t, 3, PointerIndex(st.FaceRotation, 8))

	sched.Advance(3500 * time.Millisecond)
	st = w.State()
	require.NotNil(t, st.Winner)
	assert.Equal(t, "MASALA25", st.Winner.Code)
	assert.Equal(t, "25% OFF", st.Winner.DiscountLabel)
}

func TestSpin_IgnoredWhileBusy(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{2, 6}, floats: []float64{0.9, 0.1, 0.7, 0.7}})

	require.True(t, w.Spin())
	before := w.State()
	assert.False(t, w.Spin())
	assert.Equal(t, before, w.State())

	sched.Advance(500 * time.Millisecond)
	before = w.State()
	require.Equal(t, PhaseSpinning, before.Phase)
	assert.False(t, w.Spin())
	assert.Equal(t, before, w.State())

	sched.Advance(3500 * time.Millisecond)
	st := w.State()
	require.NotNil(t, st.Winner)
	assert.Equal(t, "FLAVOR15", st.Winner.Code, "the rejected trigger must not redraw")
}

func TestSpin_IgnoredWhenSettled(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{1}})
	require.True(t, w.Spin())
	sched.Advance(4 * time.Second)

	before := w.State()
	require.Equal(t, PhaseSettled, before.Phase)
	assert.False(t, w.Spin())
	assert.Equal(t, before, w.State())
}

func TestSpin_RotationNeverDecreases(t *testing.T) {
	w, sched := newTestWheel(t, NewRand(7))

	last := w.State().RotationDegrees
	require.True(t, w.Spin())
	for i := 0; i < 80; i++ {
		sched.Advance(50 * time.Millisecond)
		st := w.State()
		assert.GreaterOrEqual(t, st.RotationDegrees, last)
		assert.GreaterOrEqual(t, st.FaceRotation, st.RotationDegrees)
		last = st.RotationDegrees
	}
	assert.Equal(t, PhaseSettled, w.State().Phase)
}

func TestRestart_FromSettled(t *testing.T) {
	restarts := 0
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{4}}, OnRestart(func() { restarts++ }))

	require.True(t, w.Spin())
	sched.Advance(4 * time.Second)
	require.Equal(t, PhaseSettled, w.State().Phase)

	require.True(t, w.Restart())
	assert.Equal(t, 1, restarts)

	st := w.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Nil(t, st.Winner)
	assert.Zero(t, st.RotationDegrees)
	assert.Zero(t, st.FaceRotation)
	assert.False(t, st.CelebrationActive)
	assert.True(t, st.SpinEnabled)
	assert.Zero(t, sched.Pending(), "pending celebration timer is dropped")

	sched.Advance(5 * time.Second)
	assert.Equal(t, st, w.State())
}

func TestRestart_IdleIsNoop(t *testing.T) {
	restarts := 0
	w, _ := newTestWheel(t, &scriptedRand{}, OnRestart(func() { restarts++ }))

	before := w.State()
	assert.False(t, w.Restart())
	assert.False(t, w.Restart())
	assert.Equal(t, before, w.State())
	assert.Zero(t, restarts)
}

func TestRestart_RefusedMidSpin(t *testing.T) {
	restarts := 0
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{0}}, OnRestart(func() { restarts++ }))

	require.True(t, w.Spin())
	assert.False(t, w.Restart())
	assert.Equal(t, PhaseAnticipating, w.State().Phase)

	sched.Advance(500 * time.Millisecond)
	assert.False(t, w.Restart())
	assert.Equal(t, PhaseSpinning, w.State().Phase)

	sched.Advance(3500 * time.Millisecond)
	assert.Equal(t, PhaseSettled, w.State().Phase)
	assert.Zero(t, restarts)
}

func TestRestart_ThenSpinAgain(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{ints: []int{1, 1}})

	for round := 0; round < 2; round++ {
		require.True(t, w.Spin())
		sched.Advance(4 * time.Second)
		st := w.State()
		require.NotNil(t, st.Winner)
		assert.Equal(t, "SPICE20", st.Winner.Code, "repeat wins are allowed")
		require.True(t, w.Restart())
	}
}

func TestCallbacks(t *testing.T) {
	var transitions []string
	var settled []model.PrizeEntry
	var settledState SpinState

	w, sched := newTestWheel(t, &scriptedRand{ints: []int{7}},
		OnTransition(func(from, to Phase) { transitions = append(transitions, string(from)+">"+string(to)) }),
		OnSettle(func(e model.PrizeEntry, st SpinState) {
			settled = append(settled, e)
			settledState = st
		}),
	)

	require.True(t, w.Spin())
	sched.Advance(10 * time.Second)
	require.True(t, w.Restart())

	assert.Equal(t, []string{
		"idle>anticipating",
		"anticipating>spinning",
		"spinning>settled",
		"settled>idle",
	}, transitions)
	require.Len(t, settled, 1)
	assert.Equal(t, "TASTE35", settled[0].Code)
	assert.Equal(t, PhaseSettled, settledState.Phase)
	assert.True(t, settledState.CelebrationActive)
}

func TestCallbacks_MayReenterWheel(t *testing.T) {
	var w *Wheel
	var seen Phase
	w, sched := newTestWheel(t, &scriptedRand{}, OnSettle(func(model.PrizeEntry, SpinState) {
		seen = w.State().Phase
	}))

	require.True(t, w.Spin())
	sched.Advance(4 * time.Second)
	assert.Equal(t, PhaseSettled, seen)
}

func TestClose_StopsPendingTimers(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{})

	require.True(t, w.Spin())
	w.Close()
	assert.Zero(t, sched.Pending())

	sched.Advance(10 * time.Second)
	st := w.State()
	assert.Equal(t, PhaseAnticipating, st.Phase)
	assert.Nil(t, st.Winner)
	assert.False(t, st.SpinEnabled)
	assert.False(t, w.Spin())
	assert.False(t, w.Restart())

	w.Close()
}

func TestWithTimings(t *testing.T) {
	w, sched := newTestWheel(t, &scriptedRand{}, WithTimings(Timings{
		Anticipation: 10 * time.Millisecond,
		Spin:         20 * time.Millisecond,
		Celebration:  30 * time.Millisecond,
	}))

	require.True(t, w.Spin())
	sched.Advance(10 * time.Millisecond)
	assert.Equal(t, PhaseSpinning, w.State().Phase)
	sched.Advance(20 * time.Millisecond)
	assert.Equal(t, PhaseSettled, w.State().Phase)
	sched.Advance(30 * time.Millisecond)
	assert.False(t, w.State().CelebrationActive)
}

func TestSelection_Uniform(t *testing.T) {
	const spins = 100000
	entries := testCatalog()
	w, sched := newTestWheel(t, NewRand(42))

	counts := make(map[string]int, len(entries))
	for i := 0; i < spins; i++ {
		require.True(t, w.Spin())
		sched.Advance(4 * time.Second)
		st := w.State()
		require.NotNil(t, st.Winner)
		counts[st.Winner.Code]++
		require.True(t, w.Restart())
	}

	expected := 1.0 / float64(len(entries))
	for _, e := range entries {
		freq := float64(counts[e.Code]) / spins
		assert.InDelta(t, expected, freq, 0.01, "frequency for %s", e.Code)
	}
}

func TestExtraRotations_WithinRange(t *testing.T) {
	w, sched := newTestWheel(t, NewRand(99))

	for i := 0; i < 500; i++ {
		require.True(t, w.Spin())
		sched.Advance(500 * time.Millisecond)
		st := w.State()
		assert.GreaterOrEqual(t, st.ExtraRotations, 3.0)
		assert.Less(t, st.ExtraRotations, 5.0)
		assert.GreaterOrEqual(t, st.RotationDegrees, 3*360+TargetCenter(0, 8))
		sched.Advance(3500 * time.Millisecond)
		require.True(t, w.Restart())
	}
}

func TestRealScheduler_Settles(t *testing.T) {
	var mu sync.Mutex
	var winner string
	w, err := New(testCatalog(),
		WithRand(NewRand(3)),
		WithTimings(Timings{Anticipation: time.Millisecond, Spin: time.Millisecond, Celebration: time.Millisecond}),
		OnSettle(func(e model.PrizeEntry, _ SpinState) {
			mu.Lock()
			winner = e.Code
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	defer w.Close()

	require.True(t, w.Spin())
	require.Eventually(t, func() bool {
		st := w.State()
		return st.Phase == PhaseSettled && !st.CelebrationActive
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, w.State().Winner.Code, winner)
}
