package engine

import (
	"context"
	"fmt"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// Submit scores the session and hands the result to the sink.
//
// While a submission is in flight further calls return (nil, nil). After a
// successful submission the stored result is returned again. On a sink
// failure the answers are kept, the in-flight guard is released and the
// error wraps ErrSaveFailed so the caller can retry. Saving never outlasts the
// session's submit timeout.
func (s *Session) Submit(ctx context.Context) (*model.TestResult, error) {
	s.mu.Lock()
	switch {
	case s.phase == model.PhaseSubmitted:
		result := s.result
		s.mu.Unlock()
		return result, nil
	case s.phase == model.PhaseClosed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case s.submitting:
		s.mu.Unlock()
		return nil, nil
	}

	userID := ""
	if s.identity != nil {
		userID = s.identity.CurrentUserID()
	}
	if userID == "" {
		s.mu.Unlock()
		return nil, ErrNoCurrentUser
	}

	s.submitting = true
	s.commitLocked()
	record := s.assembleLocked(userID)
	s.mu.Unlock()

	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	id, err := s.sink.Save(saveCtx, record)
	cancel()

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("Saving test result failed")
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	record.ID = id
	s.result = record
	s.phase = model.PhaseSubmitted
	s.stopTimersLocked()
	s.closeDone()
	hook := s.onSubmit
	s.mu.Unlock()

	s.log.Info().
		Str("result_id", id.String()).
		Bool("forced", record.Forced).
		Float64("actual_marks", record.Score.ActualMarks).
		Float64("scaled_marks", record.Score.ScaledMarks).
		Msg("Test submitted")

	if hook != nil {
		hook(s, record)
	}
	return record, nil
}

// assembleLocked builds the result record from the current answer sheet.
func (s *Session) assembleLocked(userID string) *model.TestResult {
	score := Score(s.questions, s.answers)

	records := make([]model.AnswerRecord, len(s.questions))
	total := 0
	for i := range s.questions {
		q := &s.questions[i]
		st := s.status[i]
		if i == s.current {
			st = DeriveStatus(q.Type, s.answers[i], s.review)
		}
		outcome := score.Outcomes[i]
		records[i] = model.AnswerRecord{
			QuestionID: q.ID,
			Type:       q.Type,
			UserAnswer: s.answers[i],
			TimeSpent:  s.timeSpent[i],
			Status:     st,
			Marks:      q.Marks,
			Awarded:    outcome.Awarded,
			Correct:    outcome.Correct,
			Subject:    q.Subject,
		}
		total += s.timeSpent[i]
	}

	return &model.TestResult{
		SessionID:        s.id,
		UserID:           userID,
		Format:           s.format,
		Paper:            s.paper,
		StartedAt:        s.startedAt,
		SubmittedAt:      s.clock.Now(),
		Forced:           s.phase == model.PhaseExpired,
		TotalTimeSeconds: total,
		Score:            score,
		Answers:          records,
	}
}
