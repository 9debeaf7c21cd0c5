// Command qa-server runs the Q&A domain service.
//
//	@title						Q&A API
//	@version					1.0
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/odooqa/qa-system/docs"
	"github.com/odooqa/qa-system/internal/api"
	"github.com/odooqa/qa-system/internal/core/service"
	"github.com/odooqa/qa-system/internal/infrastructure/config"
	mongodb "github.com/odooqa/qa-system/internal/infrastructure/db/mongo"
	redisdb "github.com/odooqa/qa-system/internal/infrastructure/db/redis"
	"github.com/odooqa/qa-system/internal/infrastructure/http/handlers"
	"github.com/odooqa/qa-system/internal/infrastructure/queue"
	"github.com/odooqa/qa-system/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Init(logger.Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Pretty:  os.Getenv("ENV") != "production",
		Service: "qa-server",
	})

	cfg, err := config.Load(ctx, log)
	if err != nil {
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "qa-server",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongodb.NewAuthRepository(db)
	questions := mongodb.NewQuestionRepository(db)
	answers := mongodb.NewAnswerRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, questions, answers); err != nil {
		return err
	}

	ledger := redisdb.NewVoteLedger(rdb)
	limiter := redisdb.NewVoteLimiter(rdb, cfg.Votes.RateLimit, cfg.Votes.RateWindow)

	// Purge workers keep running until the HTTP server has drained.
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher := queue.NewDispatcher(cfg.PurgeWorkers, service.NewPurgeService(answers, ledger, logger.Component("purge")), logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Deps{
		Auth:      service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL),
		Questions: service.NewQuestionService(questions, dispatcher, logger.Component("questions")),
		Answers:   service.NewAnswerService(questions, answers, ledger, limiter, logger.Component("answers")),
		JWTSecret: cfg.JWTSecret,
		Checks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		Log:     log,
		Metrics: true,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		stopWorkers()
		dispatcher.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("stopped")
	return nil
}
