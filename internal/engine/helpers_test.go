package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

var epoch = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type job struct {
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
}

// manualScheduler fires registered callbacks synchronously as its clock is
// advanced, in due-time order.
type manualScheduler struct {
	mu    sync.Mutex
	clock *fakeClock
	jobs  []*job
}

func newManualScheduler(clock *fakeClock) *manualScheduler {
	return &manualScheduler{clock: clock}
}

func (m *manualScheduler) Every(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := &job{interval: interval, next: m.clock.Now().Add(interval), fn: fn}
	m.jobs = append(m.jobs, j)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		j.stopped = true
	}
}

// Advance moves the clock forward by d, firing every tick that falls due.
func (m *manualScheduler) Advance(d time.Duration) {
	end := m.clock.Now().Add(d)
	for {
		m.mu.Lock()
		var due *job
		for _, j := range m.jobs {
			if j.stopped || j.next.After(end) {
				continue
			}
			if due == nil || j.next.Before(due.next) {
				due = j
			}
		}
		if due == nil {
			m.mu.Unlock()
			break
		}
		m.clock.Set(due.next)
		due.next = due.next.Add(due.interval)
		fn := due.fn
		m.mu.Unlock()
		fn()
	}
	m.clock.Set(end)
}

// Drop moves the clock forward by d and discards every tick that would have
// fired meanwhile, like a suspended process would.
func (m *manualScheduler) Drop(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.clock.Now().Add(d)
	for _, j := range m.jobs {
		for !j.next.After(end) {
			j.next = j.next.Add(j.interval)
		}
	}
	m.clock.Set(end)
}

// Active counts timers that have not been stopped.
func (m *manualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.jobs {
		if !j.stopped {
			n++
		}
	}
	return n
}

type userID string

func (u userID) CurrentUserID() string { return string(u) }

// fakeSink records saved results. When block is set, Save waits on it after
// signalling entered.
type fakeSink struct {
	mu      sync.Mutex
	saved   []*model.TestResult
	err     error
	entered chan struct{}
	block   chan struct{}
	// hang makes Save wait for its context instead of returning.
	hang bool
}

func (f *fakeSink) Save(ctx context.Context, result *model.TestResult) (uuid.UUID, error) {
	if f.hang {
		<-ctx.Done()
		return uuid.Nil, ctx.Err()
	}
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.saved = append(f.saved, result)
	return uuid.New(), nil
}

func (f *fakeSink) Saved() []*model.TestResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.TestResult, len(f.saved))
	copy(out, f.saved)
	return out
}

func (f *fakeSink) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var errOffline = errors.New("document store unreachable")

func mcq(subject string, marks, negative float64, correct string) model.Question {
	return model.Question{
		ID:      uuid.New(),
		Type:    model.QuestionTypeMCQ,
		Subject: subject,
		Options: []model.Option{
			{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}, {ID: "d", Text: "D"},
		},
		CorrectOption: correct,
		Marks:         marks,
		NegativeMark:  negative,
	}
}

func msq(subject string, marks float64, correct ...string) model.Question {
	return model.Question{
		ID:      uuid.New(),
		Type:    model.QuestionTypeMSQ,
		Subject: subject,
		Options: []model.Option{
			{ID: "a", Text: "A"}, {ID: "b", Text: "B"}, {ID: "c", Text: "C"}, {ID: "d", Text: "D"},
		},
		CorrectOptions: correct,
		Marks:          marks,
	}
}

func nat(subject string, marks, lo, hi float64) model.Question {
	return model.Question{
		ID:         uuid.New(),
		Type:       model.QuestionTypeNAT,
		Subject:    subject,
		RangeStart: lo,
		RangeEnd:   hi,
		Marks:      marks,
	}
}

type harness struct {
	session *engine.Session
	clock   *fakeClock
	sched   *manualScheduler
	sink    *fakeSink
}

type harnessOption func(*engine.Config)

func withDuration(seconds int) harnessOption {
	return func(c *engine.Config) { c.DurationSeconds = seconds }
}

func withPolicy(p engine.ReviewPolicy) harnessOption {
	return func(c *engine.Config) { c.ReviewPolicy = p }
}

func withIdentity(id engine.Identity) harnessOption {
	return func(c *engine.Config) { c.Identity = id }
}

// withClock gives the session its own clock while ticks still come from the
// harness scheduler.
func withClock(c engine.Clock) harnessOption {
	return func(cfg *engine.Config) { cfg.Clock = c }
}

func withSubmitTimeout(d time.Duration) harnessOption {
	return func(c *engine.Config) { c.SubmitTimeout = d }
}

func withOnSubmitted(fn func(*engine.Session, *model.TestResult)) harnessOption {
	return func(c *engine.Config) { c.OnSubmitted = fn }
}

// newHarness builds and starts a session over questions with fake time.
func newHarness(t *testing.T, questions []model.Question, opts ...harnessOption) *harness {
	t.Helper()

	clock := newFakeClock()
	sched := newManualScheduler(clock)
	sink := &fakeSink{}
	cfg := engine.Config{
		Format:          model.FormatSubjectWise,
		Questions:       questions,
		DurationSeconds: 600,
		Identity:        userID("user-42"),
		Sink:            sink,
		Clock:           clock,
		Scheduler:       sched,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s, err := engine.NewSession(cfg)
	require.NoError(t, err)
	s.Start()
	t.Cleanup(s.Close)

	return &harness{session: s, clock: clock, sched: sched, sink: sink}
}
