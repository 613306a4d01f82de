package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizforge/apierr"
	"quizforge/logger"
	"quizforge/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statsCacheTTL = 2 * time.Hour

// statsCache is the slice of the redis client the service uses. Tests
// substitute a fake.
type statsCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// StatsService recomputes a user's quiz and book counters after lifecycle
// changes. The refresh is a write-only side effect: every failure is logged
// and none is surfaced to the caller.
type StatsService struct {
	db    *gorm.DB
	redis statsCache
	log   *logger.Logger
}

func NewStatsService(db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *StatsService {
	s := &StatsService{db: db, log: log}
	// A typed nil pointer must not end up inside the interface.
	if redisClient != nil {
		s.redis = redisClient
	}
	return s
}

// Refresh rebuilds the stats snapshot for one user and mirrors it into Redis.
func (s *StatsService) Refresh(ctx context.Context, userID uint) {
	stats, err := s.compute(userID)
	if err != nil {
		s.log.Error("failed to compute user stats", "user_id", userID, "error", err)
		return
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_quizzes", "public_quizzes", "private_quizzes",
			"normal_quizzes", "quick_quizzes",
			"total_books", "public_books", "private_books", "updated_at",
		}),
	}).Create(stats).Error
	if err != nil {
		s.log.Error("failed to store user stats", "user_id", userID, "error", err)
		return
	}

	s.cache(ctx, stats)
}

func (s *StatsService) compute(userID uint) (*models.UserStats, error) {
	var quizzes []models.Quiz
	if err := s.db.Where("created_by = ?", userID).Find(&quizzes).Error; err != nil {
		return nil, err
	}
	var books []models.Book
	if err := s.db.Where("user_id = ?", userID).Find(&books).Error; err != nil {
		return nil, err
	}

	stats := &models.UserStats{UserID: userID, TotalQuizzes: len(quizzes), TotalBooks: len(books)}
	for _, q := range quizzes {
		if q.IsPrivate {
			stats.PrivateQuizzes++
		} else {
			stats.PublicQuizzes++
		}
		if q.QuickQuiz {
			stats.QuickQuizzes++
		} else {
			stats.NormalQuizzes++
		}
	}
	for _, b := range books {
		if b.Private {
			stats.PrivateBooks++
		} else {
			stats.PublicBooks++
		}
	}
	return stats, nil
}

func (s *StatsService) cache(ctx context.Context, stats *models.UserStats) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		s.log.Error("failed to encode user stats for cache", "user_id", stats.UserID, "error", err)
		return
	}
	key := fmt.Sprintf("userstats:%d", stats.UserID)
	if err := s.redis.Set(ctx, key, data, statsCacheTTL).Err(); err != nil {
		s.log.Error("failed to cache user stats", "user_id", stats.UserID, "error", err)
	}
}

// Cached returns the Redis snapshot when present, falling back to the
// database row.
func (s *StatsService) Cached(ctx context.Context, userID uint) (*models.UserStats, error) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, fmt.Sprintf("userstats:%d", userID)).Result()
		if err == nil {
			var stats models.UserStats
			if err := json.Unmarshal([]byte(data), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("redis error reading user stats", "user_id", userID, "error", err)
		}
	}

	var stats models.UserStats
	if err := s.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user stats")
		}
		return nil, err
	}
	return &stats, nil
}
