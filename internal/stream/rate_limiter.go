package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LimitsConfig defines the per-sender windows for audience actions.
type LimitsConfig struct {
	MaxQuestions   int
	QuestionWindow time.Duration
	MaxReactions   int
	ReactionWindow time.Duration
}

// DefaultLimitsConfig returns the stock windows: one question per 15s,
// five reactions per 10s.
func DefaultLimitsConfig() LimitsConfig {
	return LimitsConfig{
		MaxQuestions:   1,
		QuestionWindow: 15 * time.Second,
		MaxReactions:   5,
		ReactionWindow: 10 * time.Second,
	}
}

// RateLimiter throttles audience actions per sender per room. Without Redis
// it admits everything; losing throttling beats losing questions.
type RateLimiter struct {
	rdb *redis.Client
	ctx context.Context
	cfg LimitsConfig
	log zerolog.Logger
}

// NewRateLimiter builds a limiter on the shared client.
func NewRateLimiter(cfg LimitsConfig) *RateLimiter {
	return &RateLimiter{
		rdb: GetRedisClient(),
		ctx: GetContext(),
		cfg: cfg,
		log: log.With().Str("component", "ratelimit").Logger(),
	}
}

// AllowQuestion reports whether this sender may submit another question in
// the given room.
func (rl *RateLimiter) AllowQuestion(code, connID string) bool {
	key := fmt.Sprintf("rate:question:%s:%s", code, connID)
	return rl.allow(key, rl.cfg.MaxQuestions, rl.cfg.QuestionWindow)
}

// AllowReaction reports whether this sender may send another reaction in the
// given room.
func (rl *RateLimiter) AllowReaction(code, connID string) bool {
	key := fmt.Sprintf("rate:reaction:%s:%s", code, connID)
	return rl.allow(key, rl.cfg.MaxReactions, rl.cfg.ReactionWindow)
}

func (rl *RateLimiter) allow(key string, max int, window time.Duration) bool {
	if rl == nil || rl.rdb == nil {
		return true
	}

	count, err := rl.rdb.Incr(rl.ctx, key).Result()
	if err != nil {
		rl.log.Debug().Str("key", key).Err(err).Msg("rate limit check failed")
		return true
	}
	if count == 1 {
		rl.rdb.Expire(rl.ctx, key, window)
	}
	return count <= int64(max)
}
