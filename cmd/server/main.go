package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryan2574/quantis-matching-engine/internal/adapter/cache"
	"github.com/aryan2574/quantis-matching-engine/internal/adapter/kafka"
	"github.com/aryan2574/quantis-matching-engine/internal/adapter/pg"
	api "github.com/aryan2574/quantis-matching-engine/internal/api/http"
	"github.com/aryan2574/quantis-matching-engine/internal/config"
	"github.com/aryan2574/quantis-matching-engine/internal/core"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
	"github.com/aryan2574/quantis-matching-engine/internal/service"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var repo port.Repository
	if cfg.Postgres.DSN != "" {
		pgRepo, err := pg.NewRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Error("connect postgres failed", "error", err)
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo
	}

	var mdCache port.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisCache.Close()
		mdCache = redisCache
	}

	var pub port.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic, cfg.Kafka.MarketDataTopic)
		defer kafkaPub.Close()
		pub = kafkaPub
	}

	engine := core.NewMatchingEngine()
	svc := service.NewOrderService(engine, repo, mdCache, pub, logger)

	if cfg.Restore.Enabled {
		if err := svc.RestoreOpenOrders(ctx, cfg.Restore.Symbols...); err != nil {
			logger.Error("restore open orders failed", "error", err)
			os.Exit(1)
		}
	}

	server := api.NewServer(svc)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
