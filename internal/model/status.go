package model

// QuestionStatus is the palette state of a question within a test session.
type QuestionStatus string

const (
	StatusNotVisited      QuestionStatus = "notVisited"
	StatusAttempted       QuestionStatus = "attempted"
	StatusSkipped         QuestionStatus = "skipped"
	StatusAttemptedReview QuestionStatus = "attemptedReview"
	StatusSkippedReview   QuestionStatus = "skippedReview"
)

// IsReview reports whether the status carries a mark-for-review flag.
func (s QuestionStatus) IsReview() bool {
	return s == StatusAttemptedReview || s == StatusSkippedReview
}

// SessionPhase is the lifecycle state of a test session.
type SessionPhase string

const (
	PhaseActive     SessionPhase = "ACTIVE"
	PhaseExpired    SessionPhase = "EXPIRED"
	PhaseSubmitting SessionPhase = "SUBMITTING"
	PhaseSubmitted  SessionPhase = "SUBMITTED"
	PhaseClosed     SessionPhase = "CLOSED"
)
