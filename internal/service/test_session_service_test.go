package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/engine"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

type sessionFixture struct {
	svc    *service.TestSessionService
	store  *fakeStore
	events *fakeEvents
	mr     *miniredis.Miniredis
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newFakeStore()
	events := &fakeEvents{}
	questions := service.NewQuestionService(&fakeFetcher{bank: bank(model.PaperCS, "DBMS", 5)})

	svc := service.NewTestSessionService(questions, store, rdb, events, service.SessionOptions{
		Scheduler:    idleScheduler{},
		ReviewPolicy: engine.ReviewReset,
	}, zerolog.Nop())
	t.Cleanup(svc.Shutdown)

	return &sessionFixture{svc: svc, store: store, events: events, mr: mr}
}

func claims(sub string) *service.Claims {
	return &service.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
}

var subjectWise = model.StartTestRequest{Format: model.FormatSubjectWise, Subjects: []string{"DBMS"}}

func TestTestSessionService_Start(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, claims("u1"), subjectWise)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID())
	assert.Equal(t, model.PhaseActive, session.Phase())
	assert.Equal(t, 1, f.svc.LiveCount())

	active, err := f.svc.Active("u1")
	require.NoError(t, err)
	assert.Same(t, session, active)

	_, err = f.svc.Start(ctx, claims("u1"), subjectWise)
	assert.ErrorIs(t, err, service.ErrSessionActive)

	_, err = f.svc.Start(ctx, claims("u2"), subjectWise)
	require.NoError(t, err)
	assert.Equal(t, 2, f.svc.LiveCount())
}

func TestTestSessionService_StartRejects(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, nil, subjectWise)
	assert.ErrorIs(t, err, engine.ErrNoCurrentUser)

	_, err = f.svc.Start(ctx, claims("u1"), model.StartTestRequest{Format: model.FormatFullLength})
	assert.ErrorIs(t, err, engine.ErrInsufficientQuestions)
	assert.Zero(t, f.svc.LiveCount())
}

func TestTestSessionService_GetChecksOwnership(t *testing.T) {
	f := newSessionFixture(t)

	session, err := f.svc.Start(context.Background(), claims("u1"), subjectWise)
	require.NoError(t, err)

	got, err := f.svc.Get("u1", session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)

	_, err = f.svc.Get("u2", session.ID())
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	_, err = f.svc.Get("u1", uuid.New())
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	_, err = f.svc.Active("u2")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestTestSessionService_Submit(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, claims("u1"), subjectWise)
	require.NoError(t, err)
	require.NoError(t, session.SelectOption("a"))

	res, err := f.svc.Submit(ctx, "u1", session.ID())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, f.store.count())
	assert.Zero(t, f.svc.LiveCount(), "a submitted session leaves the registry")

	queued, err := f.mr.List(config.WorkerKey.PersistAnalyticsQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var analytics model.ResultAnalytics
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &analytics))
	assert.Equal(t, res.ID, analytics.ResultID)
	assert.Equal(t, "u1", analytics.UserID)
	require.Len(t, analytics.Subjects, 1)
	assert.Equal(t, "DBMS", analytics.Subjects[0].Subject)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, config.WorkerKey.ResultEventsQueue, f.events.events[0].queue)
	event, ok := f.events.events[0].event.(model.ResultSubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, session.ID(), event.SessionID)
	assert.Equal(t, res.ID, event.ResultID)

	// The user may start again once the previous test is stored.
	_, err = f.svc.Start(ctx, claims("u1"), subjectWise)
	assert.NoError(t, err)
}

func TestTestSessionService_SubmitFailureKeepsSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.svc.Start(ctx, claims("u1"), subjectWise)
	require.NoError(t, err)
	f.store.err = assert.AnError

	_, err = f.svc.Submit(ctx, "u1", session.ID())
	assert.ErrorIs(t, err, engine.ErrSaveFailed)
	assert.Equal(t, 1, f.svc.LiveCount())
	assert.Empty(t, f.events.events)
	assert.False(t, f.mr.Exists(config.WorkerKey.PersistAnalyticsQueue))
}

func TestTestSessionService_Abandon(t *testing.T) {
	f := newSessionFixture(t)

	session, err := f.svc.Start(context.Background(), claims("u1"), subjectWise)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Abandon("u2", session.ID()), service.ErrSessionNotFound)
	require.NoError(t, f.svc.Abandon("u1", session.ID()))

	assert.Equal(t, model.PhaseClosed, session.Phase())
	assert.Zero(t, f.svc.LiveCount())
	assert.Zero(t, f.store.count())
}

func TestTestSessionService_Shutdown(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	a, err := f.svc.Start(ctx, claims("u1"), subjectWise)
	require.NoError(t, err)
	b, err := f.svc.Start(ctx, claims("u2"), subjectWise)
	require.NoError(t, err)

	f.svc.Shutdown()

	assert.Zero(t, f.svc.LiveCount())
	assert.Equal(t, model.PhaseClosed, a.Phase())
	assert.Equal(t, model.PhaseClosed, b.Phase())
	<-a.Done()
	<-b.Done()
}

func TestTestSessionService_WithoutFollowUps(t *testing.T) {
	questions := service.NewQuestionService(&fakeFetcher{bank: bank(model.PaperCS, "DBMS", 2)})
	store := newFakeStore()
	svc := service.NewTestSessionService(questions, store, nil, nil, service.SessionOptions{
		Scheduler: idleScheduler{},
	}, zerolog.Nop())
	t.Cleanup(svc.Shutdown)
	ctx := context.Background()

	session, err := svc.Start(ctx, claims("u1"), subjectWise)
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "u1", session.ID())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, store.count())
}

func TestSessionOptionsFromConfig(t *testing.T) {
	opts := service.SessionOptionsFromConfig(&config.Config{ReviewFlagPolicy: "restore"})
	assert.Equal(t, engine.ReviewRestore, opts.ReviewPolicy)

	opts = service.SessionOptionsFromConfig(&config.Config{ReviewFlagPolicy: "whatever"})
	assert.Equal(t, engine.ReviewReset, opts.ReviewPolicy)
}
