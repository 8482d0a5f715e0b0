package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tipstream/harvester/internal/cache"
	"github.com/tipstream/harvester/internal/db"
	"github.com/tipstream/harvester/internal/harvest"
	"github.com/tipstream/harvester/internal/platforms"
	"github.com/tipstream/harvester/internal/platforms/reddit"
	"github.com/tipstream/harvester/internal/platforms/twitter"
	"github.com/tipstream/harvester/internal/wallet"
	"github.com/tipstream/harvester/pkg/config"
	"github.com/tipstream/harvester/pkg/logging"
	"github.com/tipstream/harvester/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting harvester")

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	repo := db.NewRepository(database.DB)
	posts := db.NewPostRepository(repo)
	people := db.NewPeopleRepository(repo)
	tags := db.NewTagRepository(repo)
	metrics := db.NewMetricRepository(repo)
	deriver := wallet.NewKeyDeriver()
	interval := time.Duration(cfg.Harvester.IntervalSeconds) * time.Second

	var sources []platforms.Source

	if cfg.Harvester.TwitterEnabled {
		twitterClient, err := twitter.New(&cfg.Twitter, cfg.Harvester.PageSize)
		if err != nil {
			logger.Fatal("Failed to create Twitter client", zap.Error(err))
		}
		sources = append(sources, twitterClient)
	}

	if cfg.Harvester.RedditEnabled {
		redditClient, err := reddit.New(&cfg.Reddit, cfg.Harvester.PageSize)
		if err != nil {
			logger.Fatal("Failed to create Reddit client", zap.Error(err))
		}
		sources = append(sources, redditClient)
	}

	if len(sources) == 0 {
		logger.Fatal("No platform sources enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, source := range sources {
		job := harvest.NewJob(source, posts, people, tags, metrics, deriver, redisCache, interval)
		wg.Add(1)
		go func(j *harvest.Job) {
			defer wg.Done()
			if err := j.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("Harvest job stopped", zap.Error(err))
			}
		}(job)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down harvester...")
	cancel()
	wg.Wait()
	logger.Info("Harvester exited")
}
