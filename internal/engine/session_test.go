package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

func TestNewSession_RejectsBadConfig(t *testing.T) {
	good := []model.Question{mcq("OS", 1, 0.33, "a")}

	badKey := mcq("OS", 1, 0.33, "z")
	dup := mcq("OS", 1, 0.33, "a")
	dup2 := dup

	tests := []struct {
		name    string
		cfg     engine.Config
		wantErr error
	}{
		{
			name:    "no questions",
			cfg:     engine.Config{DurationSeconds: 60, Sink: &fakeSink{}},
			wantErr: engine.ErrNoQuestions,
		},
		{
			name:    "zero duration",
			cfg:     engine.Config{Questions: good, Sink: &fakeSink{}},
			wantErr: engine.ErrInvalidDuration,
		},
		{
			name:    "correct option outside options",
			cfg:     engine.Config{Questions: []model.Question{badKey}, DurationSeconds: 60, Sink: &fakeSink{}},
			wantErr: engine.ErrInvalidQuestion,
		},
		{
			name:    "duplicate question id",
			cfg:     engine.Config{Questions: []model.Question{dup, dup2}, DurationSeconds: 60, Sink: &fakeSink{}},
			wantErr: engine.ErrInvalidQuestion,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := engine.NewSession(tc.cfg)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("missing sink", func(t *testing.T) {
		_, err := engine.NewSession(engine.Config{Questions: good, DurationSeconds: 60})
		assert.Error(t, err)
	})
}

func TestNewSession_InitialState(t *testing.T) {
	questions := []model.Question{mcq("OS", 1, 0.33, "a"), nat("OS", 2, 1, 2)}
	h := newHarness(t, questions)
	s := h.session

	assert.NotEqual(t, uuid.Nil, s.ID())
	assert.Equal(t, model.PhaseActive, s.Phase())
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 600, s.RemainingSeconds())
	assert.Equal(t, "user-42", s.UserID())
	assert.Equal(t, []model.QuestionStatus{model.StatusNotVisited, model.StatusNotVisited}, s.Statuses())
	assert.Equal(t, []int{0, 0}, s.TimeSpent())
	for _, a := range s.Answers() {
		assert.True(t, a.IsNone())
	}
	assert.Nil(t, s.Result())
}

func TestSession_Snapshot(t *testing.T) {
	questions := []model.Question{mcq("OS", 1, 0.33, "a"), msq("OS", 2, "b")}
	h := newHarness(t, questions)
	s := h.session

	require.NoError(t, s.SelectOption("c"))
	require.NoError(t, s.SetReviewFlag(true))
	h.sched.Advance(4 * time.Second)

	view := s.Snapshot()
	assert.Equal(t, s.ID(), view.SessionID)
	assert.Equal(t, model.FormatSubjectWise, view.Format)
	assert.Equal(t, model.PhaseActive, view.Phase)
	assert.Equal(t, epoch, view.StartedAt)
	assert.Equal(t, 2, view.TotalQuestions)
	assert.Equal(t, questions[0].ID, view.Question.ID)
	assert.Len(t, view.Question.Options, 4)
	assert.Equal(t, "c", view.Draft.Option())
	assert.True(t, view.MarkedForReview)
	assert.Equal(t, model.StatusAttemptedReview, view.Statuses[0])
	assert.Equal(t, []int{4, 0}, view.TimeSpent)
	assert.Equal(t, 596, view.RemainingSeconds)
}

func TestSession_CloseAbandons(t *testing.T) {
	h := newHarness(t, []model.Question{mcq("OS", 1, 0.33, "a")})
	s := h.session

	s.Close()

	assert.Equal(t, model.PhaseClosed, s.Phase())
	assert.Equal(t, 0, h.sched.Active())
	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed")
	}

	assert.ErrorIs(t, s.SelectOption("a"), engine.ErrSessionClosed)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, engine.ErrSessionClosed)
	assert.Empty(t, h.sink.Saved())

	// second close is harmless
	s.Close()
}
