package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/database"
	"github.com/2202030400009/maggic-mock-sub000/internal/logger"
	"github.com/2202030400009/maggic-mock-sub000/internal/model"
	"github.com/2202030400009/maggic-mock-sub000/internal/repository"
)

//go:embed sample_questions.json
var sampleQuestions []byte

// questionNamespace derives stable ids for questions listed without one, so
// re-running the seed updates rows instead of duplicating them.
var questionNamespace = uuid.MustParse("6f1c9a52-1f0e-4c55-9f55-2a8e4c1d7b30")

func main() {
	file := flag.String("file", "", "JSON array of questions (defaults to the built-in sample)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raw := sampleQuestions
	if *file != "" {
		var err error
		if raw, err = os.ReadFile(*file); err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to read question file")
		}
	}

	questions, err := decodeQuestions(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid question file")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	cache := repository.NewCachedQuestionRepository(questionRepo, rdb, cfg.QuestionCacheTTL, log)

	fmt.Printf("=== Seeding %d questions ===\n", len(questions))

	successCount := 0
	for i := range questions {
		q := &questions[i]
		if err := questionRepo.Upsert(ctx, q); err != nil {
			fmt.Printf("Error saving question %s (%s): %v\n", q.ID, q.Subject, err)
			continue
		}
		successCount++
		if successCount%25 == 0 {
			fmt.Printf("Saved %d questions...\n", successCount)
		}
	}

	removed, err := cache.Purge(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Question cache purge failed")
	}

	fmt.Printf("\nSeed completed! Saved %d/%d questions, purged %d cached sets.\n",
		successCount, len(questions), removed)
}

// decodeQuestions parses and validates a question list.
func decodeQuestions(raw []byte) ([]model.Question, error) {
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions in file")
	}

	for i := range questions {
		q := &questions[i]
		if q.ID == uuid.Nil {
			q.ID = uuid.NewSHA1(questionNamespace, []byte(string(q.Paper)+"|"+q.Subject+"|"+q.Text))
		}
		if q.Paper == "" {
			q.Paper = model.PaperCS
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question #%d: %w", i+1, err)
		}
	}
	return questions, nil
}
