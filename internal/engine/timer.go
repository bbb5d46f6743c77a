package engine

import (
	"context"
	"errors"
	"time"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// Start records the start instant and starts both timers. Calling Start on
// a session that already started is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.startedAt.IsZero() || s.phase != model.PhaseActive {
		return
	}
	s.startedAt = s.clock.Now()
	s.stopGlobal = s.sched.Every(s.tick, s.onGlobalTick)
	s.restartQuestionTimerLocked()

	s.log.Info().
		Int("questions", len(s.questions)).
		Int("duration_seconds", s.duration).
		Msg("Test session started")
}

// onGlobalTick recomputes the countdown from wall-clock time so dropped
// ticks never slow it down.
func (s *Session) onGlobalTick() {
	s.mu.Lock()
	if s.phase != model.PhaseActive {
		s.mu.Unlock()
		return
	}

	elapsed := int(s.clock.Now().Sub(s.startedAt) / time.Second)
	remaining := s.duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	if remaining < s.remaining {
		s.remaining = remaining
	}
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}

	s.phase = model.PhaseExpired
	s.stopTimersLocked()
	s.log.Info().Msg("Test time is over, submitting")
	s.mu.Unlock()

	s.forceSubmit()
}

// forceSubmit runs the timer-triggered submission.
func (s *Session) forceSubmit() {
	if _, err := s.Submit(context.Background()); err != nil {
		ev := s.log.Error()
		if errors.Is(err, ErrSaveFailed) {
			ev = s.log.Warn()
		}
		ev.Err(err).Msg("Forced submission failed")
	}
}

// onQuestionTick adds one second to the question the timer was started for.
// Ticks from a superseded timer are ignored.
func (s *Session) onQuestionTick(index int, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.questionGen || index != s.current {
		return
	}
	if s.phase != model.PhaseActive || s.submitting || s.remaining == 0 {
		return
	}
	s.timeSpent[index]++
}

// restartQuestionTimerLocked points the per-question timer at the current
// index. Called on start and whenever the index changes.
func (s *Session) restartQuestionTimerLocked() {
	if s.stopQuestion != nil {
		s.stopQuestion()
	}
	s.questionGen++
	index, gen := s.current, s.questionGen
	s.stopQuestion = s.sched.Every(questionTickInterval, func() {
		s.onQuestionTick(index, gen)
	})
}

func (s *Session) stopTimersLocked() {
	if s.stopGlobal != nil {
		s.stopGlobal()
		s.stopGlobal = nil
	}
	if s.stopQuestion != nil {
		s.stopQuestion()
		s.stopQuestion = nil
	}
	s.questionGen++
}
