package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// SubjectStatsRepository reads the per-user subject aggregates maintained by
// the analytics worker.
type SubjectStatsRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectStatsRepository creates a new SubjectStatsRepository.
func NewSubjectStatsRepository(pool *pgxpool.Pool) *SubjectStatsRepository {
	return &SubjectStatsRepository{pool: pool}
}

// ListByUser returns a user's aggregates ordered by subject.
func (r *SubjectStatsRepository) ListByUser(ctx context.Context, userID string) ([]model.SubjectStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, subject, attempts, total, scored, attempted, total_questions, updated_at
		 FROM user_subject_stats
		 WHERE user_id = $1
		 ORDER BY subject`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []model.SubjectStat{}
	for rows.Next() {
		var s model.SubjectStat
		if err := rows.Scan(&s.UserID, &s.Subject, &s.Attempts, &s.Total, &s.Scored, &s.Attempted,
			&s.TotalQuestions, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
