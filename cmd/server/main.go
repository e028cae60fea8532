package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Mims9141/structuredchat/config"
	"github.com/Mims9141/structuredchat/db"
	"github.com/Mims9141/structuredchat/internal/stream"
	"github.com/Mims9141/structuredchat/middlewares"
	"github.com/Mims9141/structuredchat/models"
	"github.com/Mims9141/structuredchat/routes"
	"github.com/Mims9141/structuredchat/services"
	"github.com/Mims9141/structuredchat/websocket"
)

func main() {
	fs := pflag.NewFlagSet("structuredchat", pflag.ContinueOnError)
	var (
		configPath = fs.StringP("config", "c", "", "path to yaml config file")
		port       = fs.IntP("port", "p", 0, "listen port, overrides config")
		logLevel   = fs.StringP("log-level", "l", "info", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse log level")
	}
	zerolog.SetGlobalLevel(lvl)

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	var archive services.ArchiveSink
	if cfg.Database.URI != "" {
		if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		archive = db.NewArchive()
	} else {
		log.Warn().Msg("no database configured, running without persistence")
	}

	redisUp := false
	if cfg.Redis.Addr != "" {
		if err := stream.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without stream and rate limits")
		} else {
			redisUp = true
		}
	}

	skipPolicy := models.SkipAuthority
	if cfg.Session.SkipPolicy != "" {
		parsed, ok := models.ParseSkipPolicy(cfg.Session.SkipPolicy)
		if !ok {
			log.Fatal().Str("skipPolicy", cfg.Session.SkipPolicy).Msg("unknown skip policy")
		}
		skipPolicy = parsed
	}

	store := services.NewSessionStore(services.Config{
		SegmentDuration: time.Duration(cfg.Session.SegmentSeconds) * time.Second,
		SkipPolicy:      skipPolicy,
	})
	debates := services.NewDebateService(services.DebateConfig{
		SegmentDuration: time.Duration(cfg.Debate.SegmentSeconds) * time.Second,
		QnADuration:     time.Duration(cfg.Debate.QnASeconds) * time.Second,
		TickInterval:    time.Duration(cfg.Debate.TickMillis) * time.Millisecond,
		DefaultSegments: cfg.Debate.DefaultSegments,
		MaxSegments:     cfg.Debate.MaxSegments,
	})
	if archive != nil {
		store.SetArchiveSink(archive)
		debates.SetArchiveSink(archive)
	}
	if redisUp {
		debates.SetPublisher(stream.NewPublisher())
		debates.SetPollBox(stream.NewPollStore())
		debates.SetRateGate(stream.NewRateLimiter(stream.LimitsConfig{
			MaxQuestions:   cfg.Limits.QuestionsPerWindow,
			QuestionWindow: time.Duration(cfg.Limits.QuestionWindowSeconds) * time.Second,
			MaxReactions:   cfg.Limits.ReactionsPerWindow,
			ReactionWindow: time.Duration(cfg.Limits.ReactionWindowSeconds) * time.Second,
		}))
	}

	hub := websocket.NewHub(store, debates)
	store.SetNotifier(hub)
	debates.SetNotifier(hub)

	router := setupRouter(cfg, hub, store, debates)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	log.Info().Msg("server exited")
}

func setupRouter(cfg *config.Config, hub *websocket.Hub, store *services.SessionStore, debates *services.DebateService) *gin.Engine {
	router := gin.New()
	router.Use(middlewares.RequestLogger())
	router.Use(gin.Recovery())

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	// WebSocket endpoint; everything live happens on it
	router.GET("/ws", hub.HandleWS)

	routes.Setup(router, store, debates)

	return router
}
