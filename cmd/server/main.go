package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receivables/internal/config"
	"receivables/internal/handler"
	"receivables/internal/infrastructure/cache"
	"receivables/internal/infrastructure/database"
	"receivables/internal/infrastructure/metrics"
	"receivables/internal/infrastructure/mq"
	"receivables/internal/job"
	"receivables/internal/logger"
	"receivables/internal/seed"
	"receivables/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG", "config/config.yaml"), "配置文件路径")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "服务异常退出: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(configPath string) error {
	// 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// 初始化 ID 生成器
	if err := idgen.Init(cfg.WorkerID); err != nil {
		return err
	}

	// 初始化数据库
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	log.Info("数据库已连接", zap.String("type", cfg.Database.Type))

	// 初始化 Redis（可选）
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.InitRedis(&cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info("Redis 已连接", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	}

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化数据
	if err := seed.NewSeeder(db, &cfg.Seed, redisClient, log).Run(ctx); err != nil {
		return err
	}

	// 初始化 Kafka 并启动后台任务（可选）
	if cfg.EventsEnabled() {
		producer, err := mq.NewKafkaProducer(&cfg.Kafka)
		if err != nil {
			return err
		}
		defer producer.Close()

		outboxSender := job.NewOutboxSender(db, producer, cfg, log)
		go outboxSender.Start(ctx)

		outboxCleaner := job.NewOutboxCleaner(db, cfg, log)
		go outboxCleaner.Start(ctx)

		log.Info("收款事件投递已启用",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic.PaymentEvents))
	}

	// 设置路由
	router := handler.SetupRouter(db, redisClient, cfg, log, metrics.New())

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("服务启动失败: %w", err)
	}

	log.Info("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("服务关闭异常", zap.Error(err))
	}

	log.Info("服务已关闭")
	return nil
}
