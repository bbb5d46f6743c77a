package engine

import (
	"context"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// SelectOption stages a selection for the displayed question: MCQ replaces
// the selection, MSQ toggles membership, NAT ignores it. Nothing is
// committed until navigation or submission.
func (s *Session) SelectOption(optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return err
	}

	q := &s.questions[s.current]
	switch q.Type {
	case model.QuestionTypeMCQ:
		if !q.HasOption(optionID) {
			return ErrUnknownOption
		}
		s.draft = model.ChoiceAnswer(optionID)
	case model.QuestionTypeMSQ:
		if !q.HasOption(optionID) {
			return ErrUnknownOption
		}
		base := s.draft
		if base.Kind() != model.QuestionTypeMSQ {
			base = model.MultiAnswer()
		}
		s.draft = base.Toggle(optionID)
	}
	return nil
}

// SetNumericInput stages the raw NAT text. Non-blank text marks the question
// attempted right away, before any explicit commit.
func (s *Session) SetNumericInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return err
	}

	q := &s.questions[s.current]
	if q.Type != model.QuestionTypeNAT {
		return nil
	}
	s.draft = model.NumericAnswer(text)
	if HasAnswer(q.Type, s.draft) {
		s.status[s.current] = DeriveStatus(q.Type, s.draft, s.review)
	}
	return nil
}

// SetReviewFlag sets the review flag and immediately re-derives the
// displayed question's status from the staged answer.
func (s *Session) SetReviewFlag(marked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return err
	}

	s.review = marked
	q := &s.questions[s.current]
	s.status[s.current] = DeriveStatus(q.Type, s.draft, marked)
	return nil
}

// CommitCurrentAnswer writes the staged answer into the answer sheet.
func (s *Session) CommitCurrentAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	s.commitLocked()
	return nil
}

// Next commits the displayed question and moves forward. On the last
// question it submits the test instead and returns the stored result.
func (s *Session) Next(ctx context.Context) (*model.TestResult, error) {
	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.commitLocked()
	if s.current == len(s.questions)-1 {
		s.mu.Unlock()
		return s.Submit(ctx)
	}

	s.moveLocked(s.current + 1)
	s.mu.Unlock()
	return nil, nil
}

// Skip marks the displayed question skipped (keeping the review flag),
// discards its answer without looking at the staged one, and moves on like
// Next, submitting on the last question.
func (s *Session) Skip(ctx context.Context) (*model.TestResult, error) {
	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.answers[s.current] = model.NoAnswer()
	s.draft = model.NoAnswer()
	if s.review {
		s.status[s.current] = model.StatusSkippedReview
	} else {
		s.status[s.current] = model.StatusSkipped
	}

	if s.current == len(s.questions)-1 {
		s.mu.Unlock()
		return s.Submit(ctx)
	}

	s.moveLocked(s.current + 1)
	s.mu.Unlock()
	return nil, nil
}

// JumpTo commits the displayed question and moves to index.
func (s *Session) JumpTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.commitLocked()
	if index != s.current {
		s.moveLocked(index)
		return nil
	}
	s.draft = s.answers[index]
	s.review = s.reviewFlagFor(index)
	return nil
}

func (s *Session) commitLocked() {
	q := &s.questions[s.current]
	if s.draft.Kind() == q.Type {
		s.answers[s.current] = s.draft.Normalize()
	} else {
		s.answers[s.current] = model.NoAnswer()
	}
	s.status[s.current] = DeriveStatus(q.Type, s.answers[s.current], s.review)
}

// moveLocked changes the displayed question, rehydrates its draft from the
// answer sheet, applies the review policy and retargets the question timer.
func (s *Session) moveLocked(index int) {
	s.current = index
	s.draft = s.answers[index]
	s.review = s.reviewFlagFor(index)
	if !s.startedAt.IsZero() {
		s.restartQuestionTimerLocked()
	}
}

func (s *Session) reviewFlagFor(index int) bool {
	if s.policy == ReviewRestore {
		return s.status[index].IsReview()
	}
	return false
}
