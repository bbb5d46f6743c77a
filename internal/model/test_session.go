package model

import (
	"time"

	"github.com/google/uuid"
)

// TestFormat describes the shape of a mock test.
type TestFormat struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	QuestionCount   int    `json:"question_count"`
	DurationSeconds int    `json:"duration_seconds"`
	// Strict formats refuse to start with fewer questions than QuestionCount.
	Strict bool `json:"strict"`
}

const (
	FormatFullLength  = "full-length"
	FormatSubjectWise = "subject-wise"
	FormatSpecial     = "special"
)

// TestFormats lists the built-in formats by code.
var TestFormats = map[string]TestFormat{
	FormatFullLength: {
		Code:            FormatFullLength,
		Name:            "Full-length GATE mock",
		QuestionCount:   65,
		DurationSeconds: 3 * 60 * 60,
		Strict:          true,
	},
	FormatSubjectWise: {
		Code:            FormatSubjectWise,
		Name:            "Subject-wise practice",
		QuestionCount:   20,
		DurationSeconds: 60 * 60,
	},
	FormatSpecial: {
		Code:   FormatSpecial,
		Name:   "Curated test",
		Strict: true,
	},
}

// StartTestRequest is the payload for starting a test session.
type StartTestRequest struct {
	Format          string      `json:"format" binding:"required,oneof=full-length subject-wise special"`
	Paper           Paper       `json:"paper" binding:"omitempty,paper"`
	Subjects        []string    `json:"subjects" binding:"omitempty,dive,min=1,max=100"`
	Year            *int        `json:"year" binding:"omitempty,min=1991,max=2100"`
	QuestionIDs     []uuid.UUID `json:"question_ids" binding:"required_if=Format special,omitempty,min=1"`
	DurationMinutes int         `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
}

// SelectOptionRequest selects (MCQ) or toggles (MSQ) an option.
type SelectOptionRequest struct {
	OptionID string `json:"option_id" binding:"required,max=16"`
}

// NumericInputRequest carries the raw NAT input text.
type NumericInputRequest struct {
	Text string `json:"text" binding:"max=32"`
}

// ReviewFlagRequest sets the mark-for-review flag.
type ReviewFlagRequest struct {
	Marked *bool `json:"marked" binding:"required"`
}

// JumpRequest moves to an arbitrary question.
type JumpRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// SessionView is the client-facing snapshot of a live test session.
type SessionView struct {
	SessionID        uuid.UUID            `json:"session_id"`
	Format           string               `json:"format"`
	Phase            SessionPhase         `json:"phase"`
	StartedAt        time.Time            `json:"started_at"`
	CurrentIndex     int                  `json:"current_index"`
	TotalQuestions   int                  `json:"total_questions"`
	Question         QuestionForCandidate `json:"question"`
	Draft            Answer               `json:"draft"`
	MarkedForReview  bool                 `json:"marked_for_review"`
	Statuses         []QuestionStatus     `json:"statuses"`
	TimeSpent        []int                `json:"time_spent"`
	RemainingSeconds int                  `json:"remaining_seconds"`
}
