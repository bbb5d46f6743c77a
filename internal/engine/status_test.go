package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		qType  model.QuestionType
		answer model.Answer
		review bool
		want   model.QuestionStatus
	}{
		{"mcq selected", model.QuestionTypeMCQ, model.ChoiceAnswer("b"), false, model.StatusAttempted},
		{"mcq selected review", model.QuestionTypeMCQ, model.ChoiceAnswer("b"), true, model.StatusAttemptedReview},
		{"mcq none", model.QuestionTypeMCQ, model.NoAnswer(), false, model.StatusSkipped},
		{"mcq none review", model.QuestionTypeMCQ, model.NoAnswer(), true, model.StatusSkippedReview},
		{"msq selection", model.QuestionTypeMSQ, model.MultiAnswer("a", "c"), false, model.StatusAttempted},
		{"msq empty selection", model.QuestionTypeMSQ, model.MultiAnswer(), false, model.StatusSkipped},
		{"msq empty selection review", model.QuestionTypeMSQ, model.MultiAnswer(), true, model.StatusSkippedReview},
		{"nat text", model.QuestionTypeNAT, model.NumericAnswer("6.5"), true, model.StatusAttemptedReview},
		{"nat blank text", model.QuestionTypeNAT, model.NumericAnswer("   "), false, model.StatusSkipped},
		{"nat non-numeric text still counts", model.QuestionTypeNAT, model.NumericAnswer("abc"), false, model.StatusAttempted},
		{"answer of another kind", model.QuestionTypeNAT, model.ChoiceAnswer("a"), false, model.StatusSkipped},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.DeriveStatus(tc.qType, tc.answer, tc.review))
		})
	}
}

func TestDeriveStatus_NeverNotVisited(t *testing.T) {
	answers := []model.Answer{
		model.NoAnswer(),
		model.ChoiceAnswer("a"),
		model.MultiAnswer(),
		model.MultiAnswer("a"),
		model.NumericAnswer(""),
		model.NumericAnswer("1"),
	}
	allowed := map[model.QuestionStatus]bool{
		model.StatusAttempted:       true,
		model.StatusAttemptedReview: true,
		model.StatusSkipped:         true,
		model.StatusSkippedReview:   true,
	}

	for _, qType := range []model.QuestionType{model.QuestionTypeMCQ, model.QuestionTypeMSQ, model.QuestionTypeNAT} {
		for _, a := range answers {
			for _, review := range []bool{false, true} {
				got := engine.DeriveStatus(qType, a, review)
				assert.True(t, allowed[got], "type=%s answer=%v review=%v gave %s", qType, a, review, got)
				assert.Equal(t, review, got.IsReview())
			}
		}
	}
}
