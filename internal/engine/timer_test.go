package engine_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

func TestGlobalTimer_CountsDownMonotonically(t *testing.T) {
	wall := newFakeClock()
	h := newHarness(t, threeQuestions(), withClock(wall))
	s := h.session

	wall.Set(epoch.Add(time.Second))
	h.sched.Advance(time.Second)
	assert.Equal(t, 599, s.RemainingSeconds())

	wall.Set(epoch.Add(11 * time.Second))
	h.sched.Advance(time.Second)
	assert.Equal(t, 589, s.RemainingSeconds())

	// A wall clock that steps backwards never gives time back.
	wall.Set(epoch.Add(2 * time.Second))
	h.sched.Advance(time.Second)
	assert.Equal(t, 589, s.RemainingSeconds())

	wall.Set(epoch.Add(20 * time.Second))
	h.sched.Advance(time.Second)
	assert.Equal(t, 580, s.RemainingSeconds())
}

func TestGlobalTimer_DroppedTicksDoNotSlowCountdown(t *testing.T) {
	h := newHarness(t, threeQuestions())
	s := h.session

	h.sched.Advance(3 * time.Second)
	h.sched.Drop(100 * time.Second)
	assert.Equal(t, 597, s.RemainingSeconds(), "no tick has observed the gap yet")

	h.sched.Advance(time.Second)
	assert.Equal(t, 496, s.RemainingSeconds())
}

func TestGlobalTimer_FullLengthForcesSubmitOnce(t *testing.T) {
	var hookCalls atomic.Int32
	h := newHarness(t, threeQuestions(),
		withDuration(model.TestFormats[model.FormatFullLength].DurationSeconds),
		withOnSubmitted(func(*engine.Session, *model.TestResult) { hookCalls.Add(1) }),
	)
	s := h.session

	require.NoError(t, s.SelectOption("b"))
	h.sched.Advance(10799 * time.Second)
	assert.Equal(t, 1, s.RemainingSeconds())
	assert.Empty(t, h.sink.Saved())

	h.sched.Advance(time.Second)
	assert.Equal(t, 0, s.RemainingSeconds())

	saved := h.sink.Saved()
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Forced)
	assert.Equal(t, "b", saved[0].Answers[0].UserAnswer.Option(), "staged answer is committed by the forced submit")
	assert.Equal(t, model.PhaseSubmitted, s.Phase())
	assert.Equal(t, 0, h.sched.Active())
	assert.EqualValues(t, 1, hookCalls.Load())

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed")
	}

	h.sched.Advance(time.Hour)
	assert.Len(t, h.sink.Saved(), 1)
	assert.Equal(t, 0, s.RemainingSeconds())
}

func TestQuestionTimer_AccumulatesPerQuestion(t *testing.T) {
	h := newHarness(t, threeQuestions())
	s := h.session
	ctx := context.Background()

	h.sched.Advance(5 * time.Second)
	_, err := s.Next(ctx)
	require.NoError(t, err)

	h.sched.Advance(3 * time.Second)
	require.NoError(t, s.JumpTo(0))

	h.sched.Advance(2 * time.Second)

	assert.Equal(t, []int{7, 3, 0}, s.TimeSpent())
}

func TestQuestionTimer_RestartsOnIndexChange(t *testing.T) {
	h := newHarness(t, threeQuestions())
	s := h.session

	// Leave question 0 after 1.5s; the half second is not carried over.
	h.sched.Advance(1500 * time.Millisecond)
	require.NoError(t, s.JumpTo(1))
	h.sched.Advance(900 * time.Millisecond)

	assert.Equal(t, []int{1, 0, 0}, s.TimeSpent())

	h.sched.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{1, 1, 0}, s.TimeSpent())
}

func TestQuestionTimer_StopsAtExpiry(t *testing.T) {
	h := newHarness(t, threeQuestions(), withDuration(10))
	s := h.session

	h.sched.Advance(20 * time.Second)

	// The expiring global tick fires before the question tick due at the
	// same instant, so the tenth second is never credited.
	assert.Equal(t, []int{9, 0, 0}, s.TimeSpent())
	require.Len(t, h.sink.Saved(), 1)
	assert.Equal(t, 9, h.sink.Saved()[0].TotalTimeSeconds)
}

func TestTimers_StopOnClose(t *testing.T) {
	h := newHarness(t, threeQuestions())
	s := h.session
	require.Equal(t, 2, h.sched.Active())

	h.sched.Advance(2 * time.Second)
	s.Close()
	assert.Equal(t, 0, h.sched.Active())

	h.sched.Advance(time.Minute)
	assert.Equal(t, 598, s.RemainingSeconds())
	assert.Equal(t, []int{2, 0, 0}, s.TimeSpent())
}

func TestStart_IsIdempotent(t *testing.T) {
	h := newHarness(t, threeQuestions())

	h.sched.Advance(time.Second)
	h.session.Start()

	assert.Equal(t, 2, h.sched.Active())
	assert.Equal(t, 599, h.session.RemainingSeconds())
}

func TestTickerScheduler(t *testing.T) {
	var calls atomic.Int32
	stop := engine.TickerScheduler{}.Every(time.Millisecond, func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	stop()
	stop()
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)

	// One callback may already have been running when stop was called.
	assert.LessOrEqual(t, calls.Load(), after+1)
}
