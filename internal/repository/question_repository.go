package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// QuestionRepository handles question bank access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, paper, subject, year, question_type, question_text, options,
	correct_option, correct_options, range_start, range_end, marks, negative_mark`

// Fetch returns the questions matching f. With explicit ids the result keeps
// the order of f.IDs and silently omits unknown ids; otherwise a random draw
// of at most f.Limit questions is returned.
func (r *QuestionRepository) Fetch(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	if len(f.IDs) > 0 {
		return r.fetchByIDs(ctx, f.IDs)
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE TRUE`
	args := []any{}

	if f.Paper != "" {
		args = append(args, f.Paper)
		query += fmt.Sprintf(" AND paper = $%d", len(args))
	}
	if len(f.Subjects) > 0 {
		args = append(args, f.Subjects)
		query += fmt.Sprintf(" AND subject = ANY($%d)", len(args))
	}
	if f.Year != nil {
		args = append(args, *f.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}

	query += " ORDER BY random()"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return collectQuestions(rows)
}

func (r *QuestionRepository) fetchByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions q
		 JOIN UNNEST($1::uuid[]) WITH ORDINALITY AS wanted(id, pos) USING (id)
		 ORDER BY wanted.pos`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions by id: %w", err)
	}
	return collectQuestions(rows)
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.Paper, &q.Subject, &q.Year, &q.Type, &q.Text, &q.Options,
			&q.CorrectOption, &q.CorrectOptions, &q.RangeStart, &q.RangeEnd, &q.Marks, &q.NegativeMark,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Upsert inserts q, or replaces the stored question with the same id.
func (r *QuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	correct := q.CorrectOptions
	if correct == nil {
		correct = []string{}
	}
	options := q.Options
	if options == nil {
		options = []model.Option{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		     paper = EXCLUDED.paper,
		     subject = EXCLUDED.subject,
		     year = EXCLUDED.year,
		     question_type = EXCLUDED.question_type,
		     question_text = EXCLUDED.question_text,
		     options = EXCLUDED.options,
		     correct_option = EXCLUDED.correct_option,
		     correct_options = EXCLUDED.correct_options,
		     range_start = EXCLUDED.range_start,
		     range_end = EXCLUDED.range_end,
		     marks = EXCLUDED.marks,
		     negative_mark = EXCLUDED.negative_mark`,
		q.ID, q.Paper, q.Subject, q.Year, q.Type, q.Text, options,
		q.CorrectOption, correct, q.RangeStart, q.RangeEnd, q.Marks, q.NegativeMark,
	)
	return err
}
