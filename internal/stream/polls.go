package stream

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/encoding/json"

	"github.com/Mims9141/structuredchat/models"
)

// pollTTL bounds how long poll keys outlive their room. Rooms are ephemeral;
// a day is enough for any post-debate reads.
const pollTTL = 24 * time.Hour

// pollMeta is the stored description of one poll. Counts and voters live in
// their own keys so votes stay atomic.
type pollMeta struct {
	PollID    string   `json:"pollId"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	CreatedAt int64    `json:"createdAt"`
}

func pollCountsKey(code, pollID string) string {
	return fmt.Sprintf("debate:%s:poll:%s:counts", code, pollID)
}

func pollVotersKey(code, pollID string) string {
	return fmt.Sprintf("debate:%s:poll:%s:voters", code, pollID)
}

func pollMetaKey(code, pollID string) string {
	return fmt.Sprintf("debate:%s:poll:%s:meta", code, pollID)
}

func pollSetKey(code string) string {
	return fmt.Sprintf("debate:%s:polls", code)
}

// PollStore keeps audience polls in Redis: a hash of counts per option, a set
// of voter ids for one-ballot enforcement, and a JSON meta blob. Unlike the
// limiter, polls cannot degrade gracefully without Redis, so operations error
// when no client is configured.
type PollStore struct {
	rdb *redis.Client
	ctx context.Context
	log zerolog.Logger
}

// NewPollStore builds a store on the shared client.
func NewPollStore() *PollStore {
	return &PollStore{
		rdb: GetRedisClient(),
		ctx: GetContext(),
		log: log.With().Str("component", "polls").Logger(),
	}
}

// Create opens a poll with at least two distinct options and returns its id.
// Option text is trimmed and deduplicated case-insensitively.
func (ps *PollStore) Create(code, question string, options []string) (string, error) {
	if ps == nil || ps.rdb == nil {
		return "", fmt.Errorf("poll store has no redis client")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("poll question is required")
	}

	clean := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key := strings.ToLower(opt)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, opt)
	}
	if len(clean) < 2 {
		return "", fmt.Errorf("poll needs at least two distinct options")
	}

	pollID := uuid.NewString()
	meta := pollMeta{
		PollID:    pollID,
		Question:  question,
		Options:   clean,
		CreatedAt: time.Now().Unix(),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal poll meta: %w", err)
	}

	zeros := make(map[string]interface{}, len(clean))
	for _, opt := range clean {
		zeros[opt] = 0
	}

	pipe := ps.rdb.TxPipeline()
	pipe.HSet(ps.ctx, pollCountsKey(code, pollID), zeros)
	pipe.Set(ps.ctx, pollMetaKey(code, pollID), metaBytes, pollTTL)
	pipe.SAdd(ps.ctx, pollSetKey(code), pollID)
	pipe.Expire(ps.ctx, pollCountsKey(code, pollID), pollTTL)
	pipe.Expire(ps.ctx, pollSetKey(code), pollTTL)
	if _, err := pipe.Exec(ps.ctx); err != nil {
		return "", fmt.Errorf("failed to create poll: %w", err)
	}

	ps.log.Debug().Str("code", code).Str("poll", pollID).Int("options", len(clean)).Msg("poll created")
	return pollID, nil
}

// Vote records one ballot. The voter set is checked first so an unknown
// option cannot burn a voter's only ballot; a second ballot from the same
// voter returns false without error.
func (ps *PollStore) Vote(code, pollID, option, voterID string) (bool, error) {
	if ps == nil || ps.rdb == nil {
		return false, fmt.Errorf("poll store has no redis client")
	}

	valid, err := ps.rdb.HExists(ps.ctx, pollCountsKey(code, pollID), option).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check poll option: %w", err)
	}
	if !valid {
		return false, fmt.Errorf("unknown poll option %q", option)
	}

	added, err := ps.rdb.SAdd(ps.ctx, pollVotersKey(code, pollID), voterID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record voter: %w", err)
	}
	if added == 0 {
		return false, nil
	}
	ps.rdb.Expire(ps.ctx, pollVotersKey(code, pollID), pollTTL)

	if err := ps.rdb.HIncrBy(ps.ctx, pollCountsKey(code, pollID), option, 1).Err(); err != nil {
		ps.rdb.SRem(ps.ctx, pollVotersKey(code, pollID), voterID)
		return false, fmt.Errorf("failed to count vote: %w", err)
	}
	return true, nil
}

// Tally returns every poll in the room with its counts and voter totals,
// oldest poll first.
func (ps *PollStore) Tally(code string) ([]models.PollTally, error) {
	if ps == nil || ps.rdb == nil {
		return nil, fmt.Errorf("poll store has no redis client")
	}

	pollIDs, err := ps.rdb.SMembers(ps.ctx, pollSetKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	tallies := make([]models.PollTally, 0, len(pollIDs))
	for _, pollID := range pollIDs {
		metaStr, err := ps.rdb.Get(ps.ctx, pollMetaKey(code, pollID)).Result()
		if err != nil {
			continue // expired or missing meta, skip the poll
		}
		var meta pollMeta
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			ps.log.Warn().Str("poll", pollID).Err(err).Msg("bad poll meta")
			continue
		}

		raw, err := ps.rdb.HGetAll(ps.ctx, pollCountsKey(code, pollID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read poll counts: %w", err)
		}
		counts := make(map[string]int64, len(raw))
		for option, val := range raw {
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				continue
			}
			counts[option] = n
		}
		voters, _ := ps.rdb.SCard(ps.ctx, pollVotersKey(code, pollID)).Result()

		tallies = append(tallies, models.PollTally{
			PollID:    meta.PollID,
			Question:  meta.Question,
			Options:   meta.Options,
			Counts:    counts,
			Voters:    voters,
			CreatedAt: meta.CreatedAt,
		})
	}

	sort.Slice(tallies, func(i, j int) bool {
		return tallies[i].CreatedAt < tallies[j].CreatedAt
	})
	return tallies, nil
}
