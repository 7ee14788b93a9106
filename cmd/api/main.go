package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/api/handler"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/api/router"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/config"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/postgres"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/rabbitmq"
	redisinfra "github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/redis"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/metrics"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	m := metrics.Init()

	// データベース
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// Redis
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Redis接続エラー", zap.Error(err))
	}

	// リポジトリ
	txManager := postgres.NewTxManager(db)
	packageRepo := postgres.NewPackageRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)

	// サービス
	ledger := application.NewPaymentLedger(paymentRepo)
	recorder := application.NewHistoryRecorder(historyRepo)
	debt := application.NewDebtChecker(reservationRepo, ledger)
	capacity := application.NewCapacityTracker(reservationRepo, redisinfra.NewCapacityCache(redisClient), cfg.Lifecycle.CapacityCacheTTL)

	reservationService := application.NewReservationService(
		txManager, reservationRepo, packageRepo, postgres.NewNumberGenerator(),
		ledger, recorder, debt, capacity, redisinfra.NewLockManager(redisClient),
	).WithMetrics(m).WithLockTTL(cfg.Lifecycle.LockTTL)
	packageService := application.NewPackageService(txManager, packageRepo, capacity)

	// 予約イベント通知（任意）
	if cfg.RabbitMQ.Enabled() {
		publisher, err := rabbitmq.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Fatal("RabbitMQ接続エラー", zap.Error(err))
		}
		defer publisher.Close()
		reservationService.WithPublisher(publisher)
	} else {
		logger.Info("RABBITMQ_URL 未設定のため予約イベント通知は無効")
	}

	e := router.New(router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": db.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
		Package:     handler.NewPackageHandler(packageService),
		Reservation: handler.NewReservationHandler(reservationService),
		Client:      handler.NewClientHandler(reservationService),
	}, m, cfg.Metrics)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// バックグラウンドワーカー
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	cleaner := worker.NewExpiredReservationCleaner(
		reservationService,
		cfg.Lifecycle.SweepInterval,
		worker.DefaultExpiryRules(cfg.Lifecycle.PendingPaymentTTL, cfg.Lifecycle.DraftTTL),
	)
	go cleaner.Start(workerCtx)

	reminder := worker.NewPaymentReminder(reservationService, cfg.Lifecycle.ReminderInterval)
	go reminder.Start(workerCtx)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("サーバー起動", zap.String("addr", addr), zap.String("env", cfg.App.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	cleaner.Stop()
	reminder.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
