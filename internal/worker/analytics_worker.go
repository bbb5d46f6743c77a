package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

const (
	AnalyticsBatchSize    = 50
	AnalyticsBatchTimeout = 2 * time.Second
	AnalyticsPollTimeout  = 1 * time.Second
)

// Execer runs a statement. *pgxpool.Pool satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AnalyticsWorker folds stored results into the per-user subject aggregates.
// Delivery is at-least-once: a requeued payload may be counted twice.
type AnalyticsWorker struct {
	db  Execer
	rdb *redis.Client
	log zerolog.Logger
}

func NewAnalyticsWorker(db Execer, rdb *redis.Client, log zerolog.Logger) *AnalyticsWorker {
	return &AnalyticsWorker{
		db:  db,
		rdb: rdb,
		log: log.With().Str("component", "analytics_worker").Logger(),
	}
}

// Start consumes the analytics queue until ctx is cancelled, then flushes
// what it holds.
func (w *AnalyticsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalyticsWorker started")

	batch := make([]*model.ResultAnalytics, 0, AnalyticsBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AnalyticsBatchSize || time.Since(lastFlush) >= AnalyticsBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested, flushing remaining batch")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnalyticsPollTimeout, config.WorkerKey.PersistAnalyticsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var p model.ResultAnalytics
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid analytics payload")
				continue
			}
			batch = append(batch, &p)
		}
	}
}

func (w *AnalyticsWorker) flushSafe(ctx context.Context, batch []*model.ResultAnalytics) {
	if len(batch) == 0 {
		return
	}

	if err := w.upsert(ctx, mergeSubjectRows(batch)); err != nil {
		w.log.Warn().Err(err).Int("results", len(batch)).Msg("Bulk stats upsert failed, using fallback")

		for _, p := range batch {
			if err := w.upsert(ctx, mergeSubjectRows([]*model.ResultAnalytics{p})); err != nil {
				w.log.Error().Err(err).Str("result_id", p.ResultID.String()).Msg("Stats upsert failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistAnalyticsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("results", len(batch)).Msg("Subject stats updated")
}

type subjectKey struct {
	userID  string
	subject string
}

// subjectRow is one user_subject_stats delta.
type subjectRow struct {
	subjectKey
	attempts       int
	total          float64
	scored         float64
	attempted      int
	totalQuestions int
}

// mergeSubjectRows sums a batch per (user, subject). A single upsert cannot
// touch the same row twice.
func mergeSubjectRows(batch []*model.ResultAnalytics) []subjectRow {
	rows := make(map[subjectKey]*subjectRow)
	for _, p := range batch {
		for _, s := range p.Subjects {
			key := subjectKey{userID: p.UserID, subject: s.Subject}
			row, ok := rows[key]
			if !ok {
				row = &subjectRow{subjectKey: key}
				rows[key] = row
			}
			row.attempts++
			row.total += s.Total
			row.scored += s.Scored
			row.attempted += s.Attempted
			row.totalQuestions += s.TotalQuestions
		}
	}

	out := make([]subjectRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].userID != out[j].userID {
			return out[i].userID < out[j].userID
		}
		return out[i].subject < out[j].subject
	})
	return out
}

func (w *AnalyticsWorker) upsert(ctx context.Context, rows []subjectRow) error {
	if len(rows) == 0 {
		return nil
	}

	n := len(rows)
	users := make([]string, 0, n)
	subjects := make([]string, 0, n)
	attempts := make([]int, 0, n)
	totals := make([]float64, 0, n)
	scored := make([]float64, 0, n)
	attempted := make([]int, 0, n)
	questions := make([]int, 0, n)
	for _, r := range rows {
		users = append(users, r.userID)
		subjects = append(subjects, r.subject)
		attempts = append(attempts, r.attempts)
		totals = append(totals, r.total)
		scored = append(scored, r.scored)
		attempted = append(attempted, r.attempted)
		questions = append(questions, r.totalQuestions)
	}

	query := `
		INSERT INTO user_subject_stats
			(user_id, subject, attempts, total, scored, attempted, total_questions, updated_at)
		SELECT u.user_id, u.subject, u.attempts, u.total, u.scored, u.attempted, u.total_questions, NOW()
		FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::int[],
			$4::float8[],
			$5::float8[],
			$6::int[],
			$7::int[]
		) AS u (user_id, subject, attempts, total, scored, attempted, total_questions)
		ON CONFLICT (user_id, subject) DO UPDATE
		SET attempts        = user_subject_stats.attempts + EXCLUDED.attempts,
		    total           = user_subject_stats.total + EXCLUDED.total,
		    scored          = user_subject_stats.scored + EXCLUDED.scored,
		    attempted       = user_subject_stats.attempted + EXCLUDED.attempted,
		    total_questions = user_subject_stats.total_questions + EXCLUDED.total_questions,
		    updated_at      = NOW()
	`

	_, err := w.db.Exec(ctx, query, users, subjects, attempts, totals, scored, attempted, questions)
	return err
}
