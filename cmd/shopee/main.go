package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopee/internal/api"
	"shopee/internal/api/shopee/product"
	"shopee/internal/cache"
	"shopee/internal/config"
	"shopee/internal/database"
	"shopee/internal/function"
	"shopee/internal/function/handlers"
	"shopee/internal/listing"
	"shopee/internal/logger"
	"shopee/internal/repository"
	"shopee/internal/scheduler"
	"shopee/internal/task"
	"shopee/internal/tasks"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "配置目录，默认依次查找 . 和 ./configs")
	runTask := flag.String("run-task", "", "立即执行一次指定的快照任务后退出")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewLogger(logger.LoggerConfig{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		Service:    cfg.App.Name,
		Version:    cfg.App.Version,
		Env:        cfg.App.Env,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zapLogger.Info("application starting",
		zap.String("shopee_env", cfg.ShopeeAPI.Environment),
		zap.String("account_driver", cfg.AccountStore.Driver),
	)

	dbs, err := database.New(database.ConfigFromAppConfig(cfg, zapLogger))
	if err != nil {
		zapLogger.Fatal("failed to initialize databases", zap.Error(err))
	}
	database.SetGlobal(dbs)

	sqlDB, err := database.GetSQL(cfg.AccountStore.Driver)
	if err != nil {
		zapLogger.Fatal("account store database unavailable", zap.Error(err))
	}
	accounts, err := repository.NewAccountRepository(sqlDB, cfg.AccountStore.Driver, cfg.AccountStore.Table, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to create account repository", zap.Error(err))
	}

	baseURL := cfg.ShopeeAPI.BaseURL
	if baseURL == "" {
		baseURL = api.BaseURLFor(cfg.ShopeeAPI.Environment)
	}
	client := api.NewClient(api.Config{
		BaseURL:    baseURL,
		PartnerID:  cfg.ShopeeAPI.PartnerID,
		PartnerKey: cfg.ShopeeAPI.PartnerKey,
		Timeout:    cfg.ShopeeAPI.TimeoutDuration,
		Logger:     zapLogger,
	})

	listingService := listing.NewService(accounts, product.NewService(client, zapLogger), pipelineOptions(cfg), zapLogger)

	var countCache *cache.CountCache
	if cfg.Redis.Enabled {
		countCache, err = cache.NewCountCache(cache.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.CountTTLDuration,
		}, zapLogger)
		if err != nil {
			// 缓存不可用时直接查询 Shopee
			zapLogger.Warn("count cache disabled", zap.Error(err))
		} else {
			listingService.SetCountCache(countCache)
		}
	}

	var snapshotsCfg *config.SnapshotsConfig
	if cfg.Scheduler.SnapshotsFile != "" {
		snapshotsCfg, err = config.LoadSnapshotsConfigFromFile(cfg.Scheduler.SnapshotsFile, zapLogger)
	} else {
		snapshotsCfg, err = config.LoadSnapshotsConfig(*configPath, zapLogger)
	}
	if err != nil {
		zapLogger.Fatal("failed to load snapshot jobs", zap.Error(err))
	}

	var snapshots *repository.SnapshotRepository
	if mongoDB, err := database.GetMongoDB(); err == nil {
		snapshots = repository.NewSnapshotRepository(database.NewStorage(mongoDB, zapLogger), snapshotsCfg.Collection, zapLogger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := snapshots.EnsureIndexes(ctx); err != nil {
			zapLogger.Warn("failed to create snapshot indexes", zap.Error(err))
		}
		cancel()
	} else {
		zapLogger.Info("MongoDB disabled, status snapshots are not persisted")
	}

	registry := task.NewTaskRegistry()
	if snapshots != nil {
		n, err := tasks.RegisterStatusSnapshotTasks(registry, snapshotsCfg, listingService, snapshots, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to register snapshot tasks", zap.Error(err))
		}
		zapLogger.Info("snapshot tasks registered", zap.Int("count", n))
	}

	location, err := cfg.GetLocation()
	if err != nil {
		zapLogger.Warn("failed to load location, using local time", zap.Error(err))
		location = time.Local
	}
	defaultTimeout, err := cfg.GetDefaultTimeout()
	if err != nil {
		zapLogger.Warn("failed to parse default timeout, using 5m", zap.Error(err))
		defaultTimeout = 5 * time.Minute
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		Logger:         zapLogger,
		Registry:       registry,
		DefaultTimeout: defaultTimeout,
		Location:       location,
	})

	if *runTask != "" {
		err := sched.RunNow(context.Background(), *runTask)
		shutdown(zapLogger, nil, nil, countCache, dbs)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			zapLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
	}

	deps := &function.Dependencies{
		Config:   cfg,
		Logger:   zapLogger,
		Products: listingService,
		Ping:     database.PingAll,
	}
	if snapshots != nil {
		deps.Snapshots = snapshots
	}
	server := function.NewServerWithDeps(&cfg.Server, zapLogger, deps)
	if err := server.Start(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	zapLogger.Info("received signal, shutting down...",
		zap.String("signal", sig.String()),
	)

	shutdown(zapLogger, server, sched, countCache, dbs)
	zapLogger.Info("application stopped")
}

// pipelineOptions 将配置转换为流水线参数
func pipelineOptions(cfg *config.Config) listing.Options {
	opts := listing.DefaultOptions()
	p := cfg.Pipeline

	opts.PageSize = p.PageSize
	opts.ModelBatchSize = p.ModelBatchSize
	opts.PriceScale = p.PriceScale
	opts.PerPageMin = p.PerPageMin
	opts.PerPageMax = p.PerPageMax
	opts.PerPageDefault = p.PerPageDefault
	opts.StrictTotals = p.StrictTotals
	if p.DeadlineDuration > 0 {
		opts.Deadline = p.DeadlineDuration
	}
	if cfg.ShopeeAPI.TimeoutDuration > 0 {
		opts.RequestTimeout = cfg.ShopeeAPI.TimeoutDuration
	}
	return opts
}

// shutdown 依次停止 HTTP 服务、调度器、缓存和数据库
func shutdown(log *zap.Logger, server *function.Server, sched *scheduler.Scheduler, countCache *cache.CountCache, dbs *database.Databases) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Stop(ctx); err != nil {
			log.Error("error stopping HTTP server", zap.Error(err))
		}
	}
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Error("error stopping scheduler", zap.Error(err))
		}
	}
	if countCache != nil {
		if err := countCache.Close(); err != nil {
			log.Error("error closing count cache", zap.Error(err))
		}
	}
	if err := dbs.Close(); err != nil {
		log.Error("error closing databases", zap.Error(err))
	}
}

var _ handlers.ProductService = (*listing.Service)(nil)
