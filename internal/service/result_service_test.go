package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/repository"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

type fakeResults struct {
	byID        map[uuid.UUID]*model.TestResult
	page, limit int
	total       int64
	listErr     error
}

func (f *fakeResults) ListByUser(_ context.Context, _ string, page, perPage int) ([]model.ResultSummary, int64, error) {
	f.page, f.limit = page, perPage
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return []model.ResultSummary{{ID: uuid.New(), Format: model.FormatSubjectWise}}, f.total, nil
}

func (f *fakeResults) GetByID(_ context.Context, id uuid.UUID) (*model.TestResult, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrResultNotFound
	}
	return res, nil
}

type fakeStats []model.SubjectStat

func (f fakeStats) ListByUser(_ context.Context, userID string) ([]model.SubjectStat, error) {
	var out []model.SubjectStat
	for _, s := range f {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestResultService_ListClampsPaging(t *testing.T) {
	tests := []struct {
		name              string
		page, perPage     int
		wantPage, wantPer int
	}{
		{"defaults", 0, 0, 1, 10},
		{"as given", 3, 25, 3, 25},
		{"capped", 2, 500, 2, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			results := &fakeResults{total: 42}
			svc := service.NewResultService(results, fakeStats{})

			list, page, err := svc.List(context.Background(), "u1", tc.page, tc.perPage)
			require.NoError(t, err)
			assert.Len(t, list, 1)
			assert.Equal(t, tc.wantPage, results.page)
			assert.Equal(t, tc.wantPer, results.limit)
			assert.EqualValues(t, 42, page.TotalItems)
		})
	}
}

func TestResultService_ListError(t *testing.T) {
	svc := service.NewResultService(&fakeResults{listErr: assert.AnError}, fakeStats{})
	_, _, err := svc.List(context.Background(), "u1", 1, 10)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResultService_Get(t *testing.T) {
	own := &model.TestResult{ID: uuid.New(), UserID: "u1"}
	results := &fakeResults{byID: map[uuid.UUID]*model.TestResult{own.ID: own}}
	svc := service.NewResultService(results, fakeStats{})
	ctx := context.Background()

	got, err := svc.Get(ctx, "u1", own.ID)
	require.NoError(t, err)
	assert.Same(t, own, got)

	_, err = svc.Get(ctx, "u2", own.ID)
	assert.ErrorIs(t, err, service.ErrResultNotFound, "another user's result is not visible")

	_, err = svc.Get(ctx, "u1", uuid.New())
	assert.ErrorIs(t, err, service.ErrResultNotFound)
}

func TestResultService_SubjectStats(t *testing.T) {
	svc := service.NewResultService(&fakeResults{}, fakeStats{
		{UserID: "u1", Subject: "DBMS", Attempts: 2},
		{UserID: "u2", Subject: "OS", Attempts: 1},
	})

	stats, err := svc.SubjectStats(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "DBMS", stats[0].Subject)
}
