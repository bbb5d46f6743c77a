package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
)

// QuestionFetcher resolves a filter to a question list.
type QuestionFetcher interface {
	Fetch(ctx context.Context, f model.QuestionFilter) ([]model.Question, error)
}

// CachedQuestionRepository is a Redis cache-aside layer over a QuestionFetcher.
// Only explicit-id filters are cached; random draws must stay random.
type CachedQuestionRepository struct {
	next QuestionFetcher
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedQuestionRepository wraps next with a cache of the given TTL.
func NewCachedQuestionRepository(next QuestionFetcher, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "question_cache").Logger(),
	}
}

// Fetch serves explicit-id filters from Redis when possible. Cache errors
// are logged and fall through to the underlying fetcher.
func (r *CachedQuestionRepository) Fetch(ctx context.Context, f model.QuestionFilter) ([]model.Question, error) {
	if len(f.IDs) == 0 {
		return r.next.Fetch(ctx, f)
	}

	key := config.CacheKey.QuestionSetKey(filterDigest(f))

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var questions []model.Question
		if err := json.Unmarshal(raw, &questions); err == nil {
			return questions, nil
		}
		r.log.Warn().Str("key", key).Msg("Discarding unreadable cached question set")
	case !errors.Is(err, redis.Nil):
		r.log.Warn().Err(err).Str("key", key).Msg("Question cache read failed")
	}

	questions, err := r.next.Fetch(ctx, f)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(questions); err == nil {
		if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("Question cache write failed")
		}
	}
	return questions, nil
}

// Purge drops every cached question set and returns how many were removed.
// Run it after the question bank changes.
func (r *CachedQuestionRepository) Purge(ctx context.Context) (int, error) {
	var removed int
	iter := r.rdb.Scan(ctx, 0, config.CacheKey.QuestionSetKey("*"), 200).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// filterDigest identifies an explicit-id filter. Id order is significant.
func filterDigest(f model.QuestionFilter) string {
	h := sha256.New()
	for _, id := range f.IDs {
		h.Write(id[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
