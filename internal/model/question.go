package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported GATE question kinds.
type QuestionType string

const (
	QuestionTypeMCQ QuestionType = "MCQ"
	QuestionTypeMSQ QuestionType = "MSQ"
	QuestionTypeNAT QuestionType = "NAT"
)

// Paper is a GATE paper code.
type Paper string

const (
	PaperCS Paper = "CS"
	PaperDA Paper = "DA"
)

// Option is a single selectable choice of an MCQ/MSQ question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is an immutable question as served by the question bank.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	Type           QuestionType `json:"type"`
	Text           string       `json:"text"`
	Paper          Paper        `json:"paper"`
	Subject        string       `json:"subject"`
	Year           *int         `json:"year,omitempty"`
	Options        []Option     `json:"options,omitempty"`
	CorrectOption  string       `json:"correct_option,omitempty"`
	CorrectOptions []string     `json:"correct_options,omitempty"`
	RangeStart     float64      `json:"range_start,omitempty"`
	RangeEnd       float64      `json:"range_end,omitempty"`
	Marks          float64      `json:"marks"`
	NegativeMark   float64      `json:"negative_mark"`
}

// HasOption reports whether id is one of the question's option ids.
func (q *Question) HasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Validate checks the per-type shape of a question.
func (q *Question) Validate() error {
	if q.Marks <= 0 {
		return fmt.Errorf("question %s: marks must be positive", q.ID)
	}
	if q.NegativeMark < 0 {
		return fmt.Errorf("question %s: negative mark must not be negative", q.ID)
	}

	switch q.Type {
	case QuestionTypeMCQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: MCQ without options", q.ID)
		}
		if !q.HasOption(q.CorrectOption) {
			return fmt.Errorf("question %s: correct option %q is not an option", q.ID, q.CorrectOption)
		}
	case QuestionTypeMSQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: MSQ without options", q.ID)
		}
		if len(q.CorrectOptions) == 0 {
			return fmt.Errorf("question %s: MSQ without correct options", q.ID)
		}
		for _, id := range q.CorrectOptions {
			if !q.HasOption(id) {
				return fmt.Errorf("question %s: correct option %q is not an option", q.ID, id)
			}
		}
	case QuestionTypeNAT:
		if q.RangeStart > q.RangeEnd {
			return fmt.Errorf("question %s: range start %v exceeds range end %v", q.ID, q.RangeStart, q.RangeEnd)
		}
	default:
		return errors.New("unknown question type: " + string(q.Type))
	}
	return nil
}

// QuestionForCandidate is a question stripped of its answer key.
type QuestionForCandidate struct {
	ID           uuid.UUID    `json:"id"`
	Type         QuestionType `json:"type"`
	Text         string       `json:"text"`
	Subject      string       `json:"subject"`
	Options      []Option     `json:"options,omitempty"`
	Marks        float64      `json:"marks"`
	NegativeMark float64      `json:"negative_mark"`
}

// ForCandidate returns the view of q that is safe to send to a test taker.
func (q *Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:           q.ID,
		Type:         q.Type,
		Text:         q.Text,
		Subject:      q.Subject,
		Options:      q.Options,
		Marks:        q.Marks,
		NegativeMark: q.NegativeMark,
	}
}

// QuestionFilter selects questions from the question bank.
type QuestionFilter struct {
	Paper    Paper       `json:"paper,omitempty"`
	Subjects []string    `json:"subjects,omitempty"`
	Year     *int        `json:"year,omitempty"`
	IDs      []uuid.UUID `json:"ids,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

