package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/repository"
)

// ErrUnknownFormat is returned for a format code that is not built in.
var ErrUnknownFormat = errors.New("unknown test format")

// secondsPerCuratedQuestion is the default time budget of a curated test.
const secondsPerCuratedQuestion = 180

// TestPlan is a resolved request: the format, its questions in order and
// the duration to run it for.
type TestPlan struct {
	Format          model.TestFormat
	Paper           model.Paper
	Questions       []model.Question
	DurationSeconds int
}

// QuestionService turns start requests into question lists.
type QuestionService struct {
	questions repository.QuestionFetcher
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions repository.QuestionFetcher) *QuestionService {
	return &QuestionService{questions: questions}
}

// Formats lists the built-in formats.
func (s *QuestionService) Formats() []model.TestFormat {
	return []model.TestFormat{
		model.TestFormats[model.FormatFullLength],
		model.TestFormats[model.FormatSubjectWise],
		model.TestFormats[model.FormatSpecial],
	}
}

// Plan resolves req against the question bank. Strict formats fail with
// engine.ErrInsufficientQuestions when the bank cannot fill them; any format
// fails with engine.ErrNoQuestions when nothing matches.
func (s *QuestionService) Plan(ctx context.Context, req model.StartTestRequest) (*TestPlan, error) {
	format, ok := model.TestFormats[req.Format]
	if !ok {
		return nil, ErrUnknownFormat
	}

	plan := &TestPlan{Format: format, Paper: req.Paper, DurationSeconds: format.DurationSeconds}
	if plan.Paper == "" && req.Format != model.FormatSpecial {
		plan.Paper = model.PaperCS
	}

	filter := model.QuestionFilter{Paper: plan.Paper, Limit: format.QuestionCount}
	want := format.QuestionCount

	switch req.Format {
	case model.FormatSubjectWise:
		filter.Subjects = req.Subjects
		filter.Year = req.Year
	case model.FormatSpecial:
		filter = model.QuestionFilter{IDs: uniqueIDs(req.QuestionIDs)}
		// An empty id list would turn into an unfiltered draw.
		if len(filter.IDs) == 0 {
			return nil, engine.ErrNoQuestions
		}
		want = len(filter.IDs)
		plan.DurationSeconds = want * secondsPerCuratedQuestion
	}

	if req.DurationMinutes > 0 && req.Format != model.FormatFullLength {
		plan.DurationSeconds = req.DurationMinutes * 60
	}

	questions, err := s.questions.Fetch(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, engine.ErrNoQuestions
	}
	if format.Strict && len(questions) < want {
		return nil, fmt.Errorf("%w: %s needs %d, found %d",
			engine.ErrInsufficientQuestions, format.Code, want, len(questions))
	}

	plan.Questions = questions
	return plan, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
