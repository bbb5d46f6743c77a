package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// fakeFetcher serves a fixed question bank and records the filters it saw.
type fakeFetcher struct {
	bank    []model.Question
	err     error
	filters []model.QuestionFilter
}

func (f *fakeFetcher) Fetch(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}

	if len(filter.IDs) > 0 {
		byID := make(map[uuid.UUID]model.Question, len(f.bank))
		for _, q := range f.bank {
			byID[q.ID] = q
		}
		var out []model.Question
		for _, id := range filter.IDs {
			if q, ok := byID[id]; ok {
				out = append(out, q)
			}
		}
		return out, nil
	}

	var out []model.Question
	for _, q := range f.bank {
		if filter.Paper != "" && q.Paper != filter.Paper {
			continue
		}
		if len(filter.Subjects) > 0 && !contains(filter.Subjects, q.Subject) {
			continue
		}
		out = append(out, q)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func bank(paper model.Paper, subject string, n int) []model.Question {
	out := make([]model.Question, n)
	for i := range out {
		out[i] = model.Question{
			ID:            uuid.New(),
			Type:          model.QuestionTypeMCQ,
			Text:          "Which option?",
			Paper:         paper,
			Subject:       subject,
			Options:       []model.Option{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
			CorrectOption: "a",
			Marks:         1,
			NegativeMark:  0.33,
		}
	}
	return out
}

// fakeStore is an in-memory result store.
type fakeStore struct {
	mu    sync.Mutex
	saved map[uuid.UUID]*model.TestResult
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[uuid.UUID]*model.TestResult)}
}

func (f *fakeStore) Save(_ context.Context, res *model.TestResult) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id := uuid.New()
	f.saved[id] = res
	return id, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type publishedEvent struct {
	queue string
	event any
}

// fakeEvents records published events.
type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) PublishJSON(_ context.Context, queue string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{queue: queue, event: v})
	return nil
}

// idleScheduler never fires; service tests drive sessions explicitly.
type idleScheduler struct{}

func (idleScheduler) Every(time.Duration, func()) func() { return func() {} }
