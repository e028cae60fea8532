package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Mims9141/structuredchat/internal/stream"
)

// streamtail follows one room's event stream and prints every entry. It is
// the quickest way to watch a live debate from the terminal, and doubles as
// a smoke test for the publisher.
func main() {
	fs := pflag.NewFlagSet("streamtail", pflag.ContinueOnError)
	var (
		redisAddr = fs.StringP("redis", "r", "localhost:6379", "redis address")
		password  = fs.String("password", "", "redis password")
		db        = fs.Int("db", 0, "redis database")
		code      = fs.StringP("code", "c", "", "room code to follow")
		from      = fs.String("from", "$", "stream id to start from, $ means new entries only")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *code == "" {
		log.Fatal().Msg("--code is required")
	}

	if err := stream.InitRedis(*redisAddr, *password, *db); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rdb := stream.GetRedisClient()
	key := stream.StreamKey(*code)
	lastID := *from
	log.Info().Str("stream", key).Str("from", lastID).Msg("following stream")

	for {
		streams, err := rdb.XRead(ctx, &redis.XReadArgs{
			Streams: []string{key, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				log.Info().Msg("stopped")
				return
			}
			log.Warn().Err(err).Msg("read failed, retrying")
			time.Sleep(time.Second)
			continue
		}

		for _, st := range streams {
			for _, msg := range st.Messages {
				lastID = msg.ID
				data, ok := msg.Values["data"].(string)
				if !ok {
					log.Warn().Str("id", msg.ID).Msg("entry has no data field")
					continue
				}
				ev, err := stream.DecodeEvent(data)
				if err != nil {
					log.Warn().Str("id", msg.ID).Err(err).Msg("bad event")
					continue
				}
				log.Info().
					Str("id", msg.ID).
					Str("type", ev.Type).
					Int64("timestamp", ev.Timestamp).
					Interface("payload", ev.Payload).
					Msg("event")
			}
		}
	}
}
