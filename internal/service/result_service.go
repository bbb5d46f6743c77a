package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/repository"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
)

// ErrResultNotFound is returned for a missing result or one owned by another user.
var ErrResultNotFound = errors.New("test result not found")

// ResultReader reads stored results.
type ResultReader interface {
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]model.ResultSummary, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error)
}

// SubjectStatsReader reads per-subject aggregates.
type SubjectStatsReader interface {
	ListByUser(ctx context.Context, userID string) ([]model.SubjectStat, error)
}

// ResultService serves a user's result history.
type ResultService struct {
	results ResultReader
	stats   SubjectStatsReader
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultReader, stats SubjectStatsReader) *ResultService {
	return &ResultService{results: results, stats: stats}
}

// List returns one page of the user's results, newest first.
func (s *ResultService) List(ctx context.Context, userID string, page, perPage int) ([]model.ResultSummary, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.results.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, nil, err
	}
	return results, response.NewPagination(page, perPage, total), nil
}

// Get returns one of the user's results with its answer lines.
func (s *ResultService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.TestResult, error) {
	res, err := s.results.GetByID(ctx, id)
	if errors.Is(err, repository.ErrResultNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrResultNotFound
	}
	return res, nil
}

// SubjectStats returns the user's per-subject aggregates across attempts.
func (s *ResultService) SubjectStats(ctx context.Context, userID string) ([]model.SubjectStat, error) {
	return s.stats.ListByUser(ctx, userID)
}
