package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Answer is a response to a single question. The zero value is "no answer".
// Which accessor is meaningful depends on the question type: Option for MCQ,
// Options for MSQ, Text for NAT.
type Answer struct {
	kind    QuestionType
	option  string
	options []string
	text    string
}

// NoAnswer returns the empty answer.
func NoAnswer() Answer { return Answer{} }

// ChoiceAnswer returns a single-option (MCQ) answer.
func ChoiceAnswer(optionID string) Answer {
	if optionID == "" {
		return Answer{}
	}
	return Answer{kind: QuestionTypeMCQ, option: optionID}
}

// MultiAnswer returns a set-of-options (MSQ) answer. Duplicates are dropped
// and the set is kept sorted so two equal selections compare equal.
func MultiAnswer(optionIDs ...string) Answer {
	set := make(map[string]struct{}, len(optionIDs))
	ids := make([]string, 0, len(optionIDs))
	for _, id := range optionIDs {
		if id == "" {
			continue
		}
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Answer{kind: QuestionTypeMSQ, options: ids}
}

// NumericAnswer returns a NAT answer holding the raw text as typed.
func NumericAnswer(text string) Answer {
	return Answer{kind: QuestionTypeNAT, text: text}
}

// Kind returns the question type the answer was built for, or "" for no answer.
func (a Answer) Kind() QuestionType { return a.kind }

// Option returns the selected option of an MCQ answer.
func (a Answer) Option() string { return a.option }

// Options returns a copy of the selected options of an MSQ answer.
func (a Answer) Options() []string {
	if len(a.options) == 0 {
		return nil
	}
	out := make([]string, len(a.options))
	copy(out, a.options)
	return out
}

// Text returns the raw text of a NAT answer.
func (a Answer) Text() string { return a.text }

// Contains reports whether optionID is part of an MSQ selection.
func (a Answer) Contains(optionID string) bool {
	for _, id := range a.options {
		if id == optionID {
			return true
		}
	}
	return false
}

// Toggle flips membership of optionID in an MSQ selection.
func (a Answer) Toggle(optionID string) Answer {
	if a.Contains(optionID) {
		rest := make([]string, 0, len(a.options))
		for _, id := range a.options {
			if id != optionID {
				rest = append(rest, id)
			}
		}
		return MultiAnswer(rest...)
	}
	return MultiAnswer(append(a.Options(), optionID)...)
}

// Present reports whether the answer carries a response: a selected option,
// a non-empty selection, or non-blank numeric text.
func (a Answer) Present() bool {
	switch a.kind {
	case QuestionTypeMCQ:
		return a.option != ""
	case QuestionTypeMSQ:
		return len(a.options) > 0
	case QuestionTypeNAT:
		return strings.TrimSpace(a.text) != ""
	default:
		return false
	}
}

// IsNone reports whether the answer is the stored "null".
func (a Answer) IsNone() bool { return a.kind == "" }

// Normalize collapses an answer without a response into NoAnswer.
func (a Answer) Normalize() Answer {
	if !a.Present() {
		return Answer{}
	}
	return a
}

// Equal reports whether two answers hold the same response.
func (a Answer) Equal(b Answer) bool {
	if a.kind != b.kind || a.option != b.option || a.text != b.text || len(a.options) != len(b.options) {
		return false
	}
	for i := range a.options {
		if a.options[i] != b.options[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the answer as null, a string, or an array of strings.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case QuestionTypeMCQ:
		return json.Marshal(a.option)
	case QuestionTypeMSQ:
		if a.options == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.options)
	case QuestionTypeNAT:
		return json.Marshal(a.text)
	default:
		return []byte("null"), nil
	}
}

// DecodeAnswer rebuilds an answer from its JSON form. The question type is
// required because MCQ and NAT answers share the string encoding.
func DecodeAnswer(t QuestionType, raw []byte) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Answer{}, nil
	}

	switch t {
	case QuestionTypeMCQ:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, fmt.Errorf("decode MCQ answer: %w", err)
		}
		return ChoiceAnswer(s), nil
	case QuestionTypeMSQ:
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return Answer{}, fmt.Errorf("decode MSQ answer: %w", err)
		}
		return MultiAnswer(ids...), nil
	case QuestionTypeNAT:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, fmt.Errorf("decode NAT answer: %w", err)
		}
		return NumericAnswer(s), nil
	default:
		return Answer{}, fmt.Errorf("decode answer: unknown question type %q", t)
	}
}
