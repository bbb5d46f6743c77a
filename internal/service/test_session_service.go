package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// Test session errors.
var (
	ErrSessionNotFound = errors.New("test session not found")
	ErrSessionActive   = errors.New("user already has a test in progress")
)

// EventPublisher publishes JSON events to a queue.
type EventPublisher interface {
	PublishJSON(ctx context.Context, queue string, v any) error
}

// SessionOptions tunes the sessions created by TestSessionService.
type SessionOptions struct {
	TickInterval  time.Duration
	SubmitTimeout time.Duration
	ReviewPolicy  engine.ReviewPolicy
	// Clock and Scheduler default to real time.
	Clock     engine.Clock
	Scheduler engine.Scheduler
}

// SessionOptionsFromConfig maps the environment configuration to options.
func SessionOptionsFromConfig(cfg *config.Config) SessionOptions {
	policy := engine.ReviewReset
	if cfg.ReviewFlagPolicy == string(engine.ReviewRestore) {
		policy = engine.ReviewRestore
	}
	return SessionOptions{
		TickInterval:  cfg.TickInterval,
		SubmitTimeout: cfg.SubmitTimeout,
		ReviewPolicy:  policy,
	}
}

// TestSessionService owns the live test sessions of this process. A user
// has at most one live session.
type TestSessionService struct {
	questions *QuestionService
	sink      *resultPipeline
	opts      SessionOptions
	log       zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*engine.Session
	byUser   map[string]uuid.UUID
}

// NewTestSessionService creates a new TestSessionService. events may be nil
// to disable result events.
func NewTestSessionService(
	questions *QuestionService,
	store engine.ResultSink,
	rdb *redis.Client,
	events EventPublisher,
	opts SessionOptions,
	log zerolog.Logger,
) *TestSessionService {
	log = log.With().Str("component", "test_session_service").Logger()
	return &TestSessionService{
		questions: questions,
		sink: &resultPipeline{
			store:  store,
			rdb:    rdb,
			events: events,
			log:    log,
		},
		opts:     opts,
		log:      log,
		sessions: make(map[uuid.UUID]*engine.Session),
		byUser:   make(map[string]uuid.UUID),
	}
}

// Start resolves req, builds a session for the caller and starts its timers.
func (s *TestSessionService) Start(ctx context.Context, user *Claims, req model.StartTestRequest) (*engine.Session, error) {
	userID := user.CurrentUserID()
	if userID == "" {
		return nil, engine.ErrNoCurrentUser
	}

	s.mu.RLock()
	_, busy := s.byUser[userID]
	s.mu.RUnlock()
	if busy {
		return nil, ErrSessionActive
	}

	plan, err := s.questions.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	session, err := engine.NewSession(engine.Config{
		Format:          plan.Format.Code,
		Paper:           plan.Paper,
		Questions:       plan.Questions,
		DurationSeconds: plan.DurationSeconds,
		Identity:        user,
		Sink:            s.sink,
		Clock:           s.opts.Clock,
		Scheduler:       s.opts.Scheduler,
		TickInterval:    s.opts.TickInterval,
		ReviewPolicy:    s.opts.ReviewPolicy,
		SubmitTimeout:   s.opts.SubmitTimeout,
		OnSubmitted:     s.onSubmitted,
		Logger:          s.log.With().Str("user_id", userID).Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	// Re-check under the write lock; question loading ran unlocked.
	s.mu.Lock()
	if _, busy := s.byUser[userID]; busy {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}
	s.sessions[session.ID()] = session
	s.byUser[userID] = session.ID()
	s.mu.Unlock()

	session.Start()
	return session, nil
}

// Get returns the caller's live session with the given id.
func (s *TestSessionService) Get(userID string, id uuid.UUID) (*engine.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || session.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Active returns the caller's live session, if any.
func (s *TestSessionService) Active(userID string) (*engine.Session, error) {
	s.mu.RLock()
	id, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Get(userID, id)
}

// Submit submits the caller's session. A nil result with a nil error means a
// submission is already in flight.
func (s *TestSessionService) Submit(ctx context.Context, userID string, id uuid.UUID) (*model.TestResult, error) {
	session, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	return session.Submit(ctx)
}

// Abandon discards the caller's session without saving it.
func (s *TestSessionService) Abandon(userID string, id uuid.UUID) error {
	session, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	if session.Phase() == model.PhaseSubmitting {
		return engine.ErrSubmitting
	}

	session.Close()
	s.remove(session)
	return nil
}

// LiveCount returns the number of live sessions.
func (s *TestSessionService) LiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown closes every live session. Unsubmitted answers are lost.
func (s *TestSessionService) Shutdown() {
	s.mu.Lock()
	live := make([]*engine.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		live = append(live, session)
	}
	s.sessions = make(map[uuid.UUID]*engine.Session)
	s.byUser = make(map[string]uuid.UUID)
	s.mu.Unlock()

	for _, session := range live {
		session.Close()
	}
	if len(live) > 0 {
		s.log.Warn().Int("sessions", len(live)).Msg("Closed live test sessions on shutdown")
	}
}

func (s *TestSessionService) onSubmitted(session *engine.Session, _ *model.TestResult) {
	s.remove(session)
}

func (s *TestSessionService) remove(session *engine.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, session.ID())
	if s.byUser[session.UserID()] == session.ID() {
		delete(s.byUser, session.UserID())
	}
}

// resultPipeline stores a result, then queues it for analytics and announces
// it. Only the store decides success; the follow-ups are best-effort.
type resultPipeline struct {
	store  engine.ResultSink
	rdb    *redis.Client
	events EventPublisher
	log    zerolog.Logger
}

func (p *resultPipeline) Save(ctx context.Context, res *model.TestResult) (uuid.UUID, error) {
	id, err := p.store.Save(ctx, res)
	if err != nil {
		return uuid.Nil, err
	}

	p.enqueueAnalytics(ctx, id, res)
	p.publish(ctx, id, res)
	return id, nil
}

func (p *resultPipeline) enqueueAnalytics(ctx context.Context, id uuid.UUID, res *model.TestResult) {
	if p.rdb == nil {
		return
	}
	payload, err := json.Marshal(model.ResultAnalytics{
		ResultID: id,
		UserID:   res.UserID,
		Subjects: res.Score.SubjectPerformance,
	})
	if err != nil {
		p.log.Error().Err(err).Msg("Encoding analytics payload failed")
		return
	}
	if err := p.rdb.RPush(ctx, config.WorkerKey.PersistAnalyticsQueue, payload).Err(); err != nil {
		p.log.Warn().Err(err).Str("result_id", id.String()).Msg("Queueing result analytics failed")
	}
}

func (p *resultPipeline) publish(ctx context.Context, id uuid.UUID, res *model.TestResult) {
	if p.events == nil {
		return
	}
	err := p.events.PublishJSON(ctx, config.WorkerKey.ResultEventsQueue, model.ResultSubmittedEvent{
		ResultID:     id,
		SessionID:    res.SessionID,
		UserID:       res.UserID,
		Format:       res.Format,
		Paper:        res.Paper,
		Forced:       res.Forced,
		ActualMarks:  res.Score.ActualMarks,
		TotalMarks:   res.Score.TotalMarks,
		ScaledMarks:  res.Score.ScaledMarks,
		WeakSubjects: res.Score.WeakSubjects,
		SubmittedAt:  res.SubmittedAt,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("result_id", id.String()).Msg("Publishing result event failed")
	}
}
