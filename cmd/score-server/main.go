package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-score/internal/common/config"
	"creator-score/internal/common/database"
	"creator-score/internal/common/logger"
	"creator-score/internal/common/observability"
	"creator-score/internal/gateway/tikhub"
	"creator-score/internal/judge/openrouter"
	"creator-score/internal/scoring"
	"creator-score/internal/server"
	"creator-score/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting creator-score", map[string]interface{}{
		"environment": cfg.App.Environment,
		"store":       cfg.Tasks.Store,
	})

	obs, err := observability.NewMetrics(log)
	if err != nil {
		log.WithError(err).Error("failed to initialize metrics", nil)
		os.Exit(1)
	}

	var store tasks.Store
	var redisClient *database.RedisClient
	if cfg.Tasks.Store == "redis" {
		redisClient, err = database.NewRedisClient(cfg.Database.Redis, log)
		if err != nil {
			log.WithError(err).Error("failed to connect to redis", nil)
			os.Exit(1)
		}
		store = tasks.NewRedisStore(redisClient.Client())
	} else {
		store = tasks.NewMemoryStore()
	}

	gateway := tikhub.NewClient(cfg.APIs, log)
	judge := openrouter.NewScorer(cfg.APIs, log)
	pipeline := scoring.NewPipeline(gateway, judge, cfg.Scoring, log, obs)
	orchestrator := tasks.NewOrchestrator(store, pipeline, log, obs)

	srv := server.New(orchestrator, pipeline, cfg.Server, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.WithError(err).Error("http server failed", nil)
		os.Exit(1)
	case sig := <-stop:
		log.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete", nil)
	}

	// Let in-flight scoring tasks reach a terminal state.
	orchestrator.Wait()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("redis close failed", nil)
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics shutdown failed", nil)
	}

	log.Info("shutdown complete", nil)
}
