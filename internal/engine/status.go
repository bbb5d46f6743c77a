package engine

import "github.com/2202030400009/maggic-mock-sub000/internal/model"

// HasAnswer reports whether a counts as a response to a question of type t:
// a selected option for MCQ, a non-empty selection for MSQ, non-blank text
// for NAT. An answer built for another question type never counts.
func HasAnswer(t model.QuestionType, a model.Answer) bool {
	return a.Kind() == t && a.Present()
}

// DeriveStatus maps a committed answer and the review flag to a palette
// status. It never returns StatusNotVisited.
func DeriveStatus(t model.QuestionType, a model.Answer, review bool) model.QuestionStatus {
	if HasAnswer(t, a) {
		if review {
			return model.StatusAttemptedReview
		}
		return model.StatusAttempted
	}
	if review {
		return model.StatusSkippedReview
	}
	return model.StatusSkipped
}
