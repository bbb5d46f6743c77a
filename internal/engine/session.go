package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// DefaultTickInterval is how often the global timer re-reads the clock.
const DefaultTickInterval = time.Second

// questionTickInterval is the per-question accumulation step; each tick adds
// one second to the current question.
const questionTickInterval = time.Second

// Identity exposes the user a result is attributed to.
type Identity interface {
	CurrentUserID() string
}

// ResultSink persists a finished test and returns the stored record's id.
type ResultSink interface {
	Save(ctx context.Context, result *model.TestResult) (uuid.UUID, error)
}

// ReviewPolicy decides the review flag shown after moving to a question.
type ReviewPolicy string

const (
	// ReviewReset always clears the flag on navigation.
	ReviewReset ReviewPolicy = "reset"
	// ReviewRestore restores the flag from the target question's status.
	ReviewRestore ReviewPolicy = "restore"
)

// Config holds everything needed to build a session.
type Config struct {
	ID              uuid.UUID
	Format          string
	Paper           model.Paper
	Questions       []model.Question
	DurationSeconds int
	Identity        Identity
	Sink            ResultSink
	Clock           Clock
	Scheduler       Scheduler
	TickInterval    time.Duration
	ReviewPolicy    ReviewPolicy
	// SubmitTimeout bounds every call to Sink.Save.
	SubmitTimeout time.Duration
	// OnSubmitted runs once, outside the session lock, after a successful save.
	OnSubmitted func(*Session, *model.TestResult)
	Logger      zerolog.Logger
}

// Session is the state of one test attempt. All mutation is serialised by a
// single mutex, so user actions and timer ticks never interleave.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	format   string
	paper    model.Paper
	identity Identity
	sink     ResultSink
	clock    Clock
	sched    Scheduler
	tick     time.Duration
	policy   ReviewPolicy
	timeout  time.Duration
	onSubmit func(*Session, *model.TestResult)
	log      zerolog.Logger

	questions []model.Question
	answers   []model.Answer
	status    []model.QuestionStatus
	timeSpent []int

	current int
	draft   model.Answer
	review  bool

	duration  int
	remaining int
	startedAt time.Time

	phase      model.SessionPhase
	submitting bool
	result     *model.TestResult

	stopGlobal   func()
	stopQuestion func()
	questionGen  uint64

	done     chan struct{}
	doneOnce sync.Once
}

// NewSession validates cfg and builds a session that has not started yet.
func NewSession(cfg Config) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if cfg.DurationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.Sink == nil {
		return nil, errors.New("engine: result sink is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(cfg.Questions))
	for i := range cfg.Questions {
		q := &cfg.Questions[i]
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuestion, err)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question %s", ErrInvalidQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TickerScheduler{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.ReviewPolicy == "" {
		cfg.ReviewPolicy = ReviewReset
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 10 * time.Second
	}

	n := len(cfg.Questions)
	questions := make([]model.Question, n)
	copy(questions, cfg.Questions)

	status := make([]model.QuestionStatus, n)
	for i := range status {
		status[i] = model.StatusNotVisited
	}

	return &Session{
		id:        cfg.ID,
		format:    cfg.Format,
		paper:     cfg.Paper,
		identity:  cfg.Identity,
		sink:      cfg.Sink,
		clock:     cfg.Clock,
		sched:     cfg.Scheduler,
		tick:      cfg.TickInterval,
		policy:    cfg.ReviewPolicy,
		timeout:   cfg.SubmitTimeout,
		onSubmit:  cfg.OnSubmitted,
		log:       cfg.Logger.With().Str("session_id", cfg.ID.String()).Logger(),
		questions: questions,
		answers:   make([]model.Answer, n),
		status:    status,
		timeSpent: make([]int, n),
		duration:  cfg.DurationSeconds,
		remaining: cfg.DurationSeconds,
		phase:     model.PhaseActive,
		done:      make(chan struct{}),
	}, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Done is closed once the session is submitted or closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// UserID returns the user the session is attributed to, if known.
func (s *Session) UserID() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.CurrentUserID()
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() model.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

func (s *Session) phaseLocked() model.SessionPhase {
	if s.submitting {
		return model.PhaseSubmitting
	}
	return s.phase
}

// CurrentIndex returns the index of the displayed question.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// RemainingSeconds returns the global countdown.
func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Draft returns the uncommitted answer of the displayed question.
func (s *Session) Draft() model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// ReviewFlag returns the pending review flag of the displayed question.
func (s *Session) ReviewFlag() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

// Answers returns a copy of the committed answers.
func (s *Session) Answers() []model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// Statuses returns a copy of the committed statuses.
func (s *Session) Statuses() []model.QuestionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.QuestionStatus, len(s.status))
	copy(out, s.status)
	return out
}

// TimeSpent returns a copy of the per-question seconds.
func (s *Session) TimeSpent() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.timeSpent))
	copy(out, s.timeSpent)
	return out
}

// Result returns the persisted result once the session is submitted.
func (s *Session) Result() *model.TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot returns the client-facing view of the session.
func (s *Session) Snapshot() model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]model.QuestionStatus, len(s.status))
	copy(statuses, s.status)
	spent := make([]int, len(s.timeSpent))
	copy(spent, s.timeSpent)

	return model.SessionView{
		SessionID:        s.id,
		Format:           s.format,
		Phase:            s.phaseLocked(),
		StartedAt:        s.startedAt,
		CurrentIndex:     s.current,
		TotalQuestions:   len(s.questions),
		Question:         s.questions[s.current].ForCandidate(),
		Draft:            s.draft,
		MarkedForReview:  s.review,
		Statuses:         statuses,
		TimeSpent:        spent,
		RemainingSeconds: s.remaining,
	}
}

// Close abandons the session and stops both timers. Closing a submitted
// session only releases its timers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimersLocked()
	if s.phase != model.PhaseSubmitted {
		s.phase = model.PhaseClosed
		s.log.Info().Msg("Test session abandoned")
	}
	s.closeDone()
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// checkMutableLocked guards every answer/status mutation.
func (s *Session) checkMutableLocked() error {
	switch {
	case s.phase == model.PhaseSubmitted || s.phase == model.PhaseClosed:
		return ErrSessionClosed
	case s.phase == model.PhaseExpired || s.remaining == 0:
		return ErrTimeUp
	case s.submitting:
		return ErrSubmitting
	}
	return nil
}
