package model

import (
	"time"

	"github.com/google/uuid"
)

// SubjectPerformance is the per-subject breakdown of a scored test.
type SubjectPerformance struct {
	Subject        string  `json:"subject"`
	Total          float64 `json:"total"`
	Scored         float64 `json:"scored"`
	Attempted      int     `json:"attempted"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     int     `json:"percentage"`
}

// QuestionOutcome is how a single question was graded.
type QuestionOutcome struct {
	Attempted bool    `json:"attempted"`
	Correct   bool    `json:"correct"`
	Awarded   float64 `json:"awarded"`
	Deducted  float64 `json:"deducted"`
}

// ScoreSummary is the output of the scoring engine.
type ScoreSummary struct {
	RawMarks           float64              `json:"raw_marks"`
	LossMarks          float64              `json:"loss_marks"`
	ActualMarks        float64              `json:"actual_marks"`
	TotalMarks         float64              `json:"total_marks"`
	ScaledMarks        float64              `json:"scaled_marks"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
	WeakSubjects       []string             `json:"weak_subjects"`
	Outcomes           []QuestionOutcome    `json:"-"`
}

// AnswerRecord is the persisted per-question line of a test result.
type AnswerRecord struct {
	QuestionID uuid.UUID      `json:"question_id"`
	Type       QuestionType   `json:"type"`
	UserAnswer Answer         `json:"user_answer"`
	TimeSpent  int            `json:"time_spent"`
	Status     QuestionStatus `json:"status"`
	Marks      float64        `json:"marks"`
	Awarded    float64        `json:"awarded"`
	Correct    bool           `json:"correct"`
	Subject    string         `json:"subject"`
}

// TestResult is the record handed to the persistence sink on submission.
type TestResult struct {
	ID               uuid.UUID      `json:"id"`
	SessionID        uuid.UUID      `json:"session_id"`
	UserID           string         `json:"user_id"`
	Format           string         `json:"format"`
	Paper            Paper          `json:"paper,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	Forced           bool           `json:"forced"`
	TotalTimeSeconds int            `json:"total_time_seconds"`
	Score            ScoreSummary   `json:"score"`
	Answers          []AnswerRecord `json:"answers"`
}

// ResultSummary is a row of a user's result history.
type ResultSummary struct {
	ID               uuid.UUID `json:"id"`
	Format           string    `json:"format"`
	Paper            Paper     `json:"paper,omitempty"`
	ActualMarks      float64   `json:"actual_marks"`
	TotalMarks       float64   `json:"total_marks"`
	ScaledMarks      float64   `json:"scaled_marks"`
	TotalTimeSeconds int       `json:"total_time_seconds"`
	Forced           bool      `json:"forced"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// SubjectStat is the cross-attempt aggregate of one user's subject performance.
type SubjectStat struct {
	UserID         string    `json:"user_id"`
	Subject        string    `json:"subject"`
	Attempts       int       `json:"attempts"`
	Total          float64   `json:"total"`
	Scored         float64   `json:"scored"`
	Attempted      int       `json:"attempted"`
	TotalQuestions int       `json:"total_questions"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ResultAnalytics is queued for the analytics worker after a result is stored.
type ResultAnalytics struct {
	ResultID uuid.UUID            `json:"result_id"`
	UserID   string               `json:"user_id"`
	Subjects []SubjectPerformance `json:"subjects"`
}

// ResultSubmittedEvent is published once a result is stored.
type ResultSubmittedEvent struct {
	ResultID     uuid.UUID `json:"result_id"`
	SessionID    uuid.UUID `json:"session_id"`
	UserID       string    `json:"user_id"`
	Format       string    `json:"format"`
	Paper        Paper     `json:"paper,omitempty"`
	Forced       bool      `json:"forced"`
	ActualMarks  float64   `json:"actual_marks"`
	TotalMarks   float64   `json:"total_marks"`
	ScaledMarks  float64   `json:"scaled_marks"`
	WeakSubjects []string  `json:"weak_subjects"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
