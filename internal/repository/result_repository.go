package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// ErrResultNotFound is returned when no result matches.
var ErrResultNotFound = errors.New("test result not found")

// ResultRepository stores submitted test results.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Save writes the result and its answer lines in one transaction. Saving the
// same session twice returns the id of the first record.
func (r *ResultRepository) Save(ctx context.Context, res *model.TestResult) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	weak := res.Score.WeakSubjects
	if weak == nil {
		weak = []string{}
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO test_results (
		     session_id, user_id, format, paper, started_at, submitted_at, forced,
		     raw_marks, loss_marks, actual_marks, total_marks, scaled_marks,
		     total_time_seconds, subject_performance, weak_subjects)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (session_id) DO NOTHING
		 RETURNING id`,
		res.SessionID, res.UserID, res.Format, res.Paper, res.StartedAt, res.SubmittedAt, res.Forced,
		res.Score.RawMarks, res.Score.LossMarks, res.Score.ActualMarks, res.Score.TotalMarks, res.Score.ScaledMarks,
		res.TotalTimeSeconds, res.Score.SubjectPerformance, weak,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// An earlier attempt committed before its caller saw the reply.
		err = tx.QueryRow(ctx, `SELECT id FROM test_results WHERE session_id = $1`, res.SessionID).Scan(&id)
		if err != nil {
			return uuid.Nil, fmt.Errorf("lookup existing result: %w", err)
		}
		return id, nil
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert result: %w", err)
	}

	rows := make([][]any, len(res.Answers))
	for i, a := range res.Answers {
		answer, err := json.Marshal(a.UserAnswer)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encode answer %d: %w", i, err)
		}
		rows[i] = []any{
			id, i, a.QuestionID, string(a.Type), answer, a.TimeSpent,
			string(a.Status), a.Marks, a.Awarded, a.Correct, a.Subject,
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"test_result_answers"},
		[]string{"result_id", "position", "question_id", "question_type", "user_answer", "time_spent",
			"status", "marks", "awarded", "correct", "subject"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert answers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListByUser returns one page of a user's results, newest first, and the
// total number of results.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]model.ResultSummary, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_results WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, format, paper, actual_marks, total_marks, scaled_marks, total_time_seconds, forced, submitted_at
		 FROM test_results
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []model.ResultSummary{}
	for rows.Next() {
		var s model.ResultSummary
		if err := rows.Scan(&s.ID, &s.Format, &s.Paper, &s.ActualMarks, &s.TotalMarks, &s.ScaledMarks,
			&s.TotalTimeSeconds, &s.Forced, &s.SubmittedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, s)
	}
	return results, total, rows.Err()
}

// GetByID loads a full result with its answer lines.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestResult, error) {
	res := &model.TestResult{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT session_id, user_id, format, paper, started_at, submitted_at, forced,
		        raw_marks, loss_marks, actual_marks, total_marks, scaled_marks,
		        total_time_seconds, subject_performance, weak_subjects
		 FROM test_results WHERE id = $1`, id,
	).Scan(&res.SessionID, &res.UserID, &res.Format, &res.Paper, &res.StartedAt, &res.SubmittedAt, &res.Forced,
		&res.Score.RawMarks, &res.Score.LossMarks, &res.Score.ActualMarks, &res.Score.TotalMarks, &res.Score.ScaledMarks,
		&res.TotalTimeSeconds, &res.Score.SubjectPerformance, &res.Score.WeakSubjects)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, question_type, user_answer, time_spent, status, marks, awarded, correct, subject
		 FROM test_result_answers
		 WHERE result_id = $1
		 ORDER BY position`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a   model.AnswerRecord
			raw []byte
		)
		if err := rows.Scan(&a.QuestionID, &a.Type, &raw, &a.TimeSpent, &a.Status, &a.Marks, &a.Awarded,
			&a.Correct, &a.Subject); err != nil {
			return nil, err
		}
		if a.UserAnswer, err = model.DecodeAnswer(a.Type, raw); err != nil {
			return nil, fmt.Errorf("result %s: %w", id, err)
		}
		res.Answers = append(res.Answers, a)
	}
	return res, rows.Err()
}
