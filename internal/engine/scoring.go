package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// WeakSubjectThreshold is the percentage below which a subject is weak.
const WeakSubjectThreshold = 50

// scaleCeiling is the paper total above which marks are rescaled to 0–100.
const scaleCeiling = 100

// Score grades answers against questions. answers is index-aligned with
// questions; missing trailing entries count as unanswered. Score never fails:
// malformed input (unparsable NAT text, an answer of the wrong kind) is
// graded as incorrect or unattempted.
func Score(questions []model.Question, answers []model.Answer) model.ScoreSummary {
	summary := model.ScoreSummary{
		Outcomes:     make([]model.QuestionOutcome, len(questions)),
		WeakSubjects: []string{},
	}

	bySubject := make(map[string]*model.SubjectPerformance)
	var order []string

	for i := range questions {
		q := &questions[i]
		var a model.Answer
		if i < len(answers) {
			a = answers[i]
		}

		summary.TotalMarks += q.Marks

		perf, ok := bySubject[q.Subject]
		if !ok {
			perf = &model.SubjectPerformance{Subject: q.Subject}
			bySubject[q.Subject] = perf
			order = append(order, q.Subject)
		}
		perf.Total += q.Marks
		perf.TotalQuestions++

		outcome := gradeQuestion(q, a)
		summary.Outcomes[i] = outcome
		if !outcome.Attempted {
			continue
		}

		perf.Attempted++
		summary.RawMarks += outcome.Awarded
		summary.LossMarks += outcome.Deducted
		perf.Scored += outcome.Awarded
	}

	summary.ActualMarks = math.Max(0, summary.RawMarks-summary.LossMarks)
	summary.ScaledMarks = scaleMarks(summary.ActualMarks, summary.TotalMarks)

	summary.SubjectPerformance = make([]model.SubjectPerformance, 0, len(order))
	for _, subject := range order {
		perf := bySubject[subject]
		if perf.Total > 0 {
			perf.Percentage = int(math.Round(perf.Scored / perf.Total * 100))
		}
		summary.SubjectPerformance = append(summary.SubjectPerformance, *perf)
		if perf.Percentage < WeakSubjectThreshold {
			summary.WeakSubjects = append(summary.WeakSubjects, subject)
		}
	}

	return summary
}

func scaleMarks(actual, total float64) float64 {
	if total <= scaleCeiling {
		return actual
	}
	return math.Round(actual / total * 100)
}

func gradeQuestion(q *model.Question, a model.Answer) model.QuestionOutcome {
	if !HasAnswer(q.Type, a) {
		return model.QuestionOutcome{}
	}

	out := model.QuestionOutcome{Attempted: true}
	switch q.Type {
	case model.QuestionTypeMCQ:
		out.Correct = a.Option() == q.CorrectOption
		if !out.Correct {
			out.Deducted = math.Abs(q.NegativeMark)
		}
	case model.QuestionTypeMSQ:
		out.Correct = sameSet(a.Options(), q.CorrectOptions)
	case model.QuestionTypeNAT:
		v, ok := parseNumeric(a.Text())
		out.Correct = ok && v >= q.RangeStart && v <= q.RangeEnd
	}

	if out.Correct {
		out.Awarded = q.Marks
	}
	return out
}

func sameSet(selected, correct []string) bool {
	want := make(map[string]struct{}, len(correct))
	for _, id := range correct {
		want[id] = struct{}{}
	}
	got := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		got[id] = struct{}{}
	}
	if len(got) != len(want) {
		return false
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			return false
		}
	}
	return true
}

func parseNumeric(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
