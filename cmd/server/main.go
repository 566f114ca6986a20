package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	docs "github.com/schoolhub/announcement-service/docs"
	"github.com/schoolhub/announcement-service/internal/config"
	api "github.com/schoolhub/announcement-service/internal/http"
	"github.com/schoolhub/announcement-service/internal/log"
	"github.com/schoolhub/announcement-service/internal/metrics"
	"github.com/schoolhub/announcement-service/internal/queue"
	"github.com/schoolhub/announcement-service/internal/repo"
)

// @title Announcement API
// @version 0.1.0
// @description CRUD over school announcements with teacher-directory credential checks.
// @schemes http https
// @BasePath /
func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "prod")
	if err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer log.Sync()

	if os.Getenv("DD_AGENT_HOST") != "" {
		tracer.Start(tracer.WithService("announcement-service"))
		defer tracer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, "announcements.events")
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
	}
	defer pub.Close()

	metrics.MustRegister()
	docs.SwaggerInfo.BasePath = "/"

	h := api.NewHandler(store, rds, cfg.RateLimitPerMin, pub)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("announcement-service listening on :" + cfg.Port)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("signal " + s.String() + ", shutting down")
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
