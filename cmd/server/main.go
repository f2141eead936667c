package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/workhub/marketplace-backend/internal/cache"
	"github.com/workhub/marketplace-backend/internal/config"
	"github.com/workhub/marketplace-backend/internal/db"
	httpHandlers "github.com/workhub/marketplace-backend/internal/http/handlers"
	httpRouter "github.com/workhub/marketplace-backend/internal/http/router"
	"github.com/workhub/marketplace-backend/internal/logger"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/service"
	"github.com/workhub/marketplace-backend/internal/storage"
	"github.com/workhub/marketplace-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Redis для кеша каталога. Без REDIS_ADDR кеш выключен.
	var catalogCache *cache.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("main: ошибка подключения к redis: %v", err)
		}
		defer redisClient.Close()
		catalogCache = cache.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
	} else {
		logger.Log.Warn("REDIS_ADDR не задан, кеш каталога отключён")
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	freelancerRepo := repository.NewFreelancerRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, freelancerRepo, tokenManager)
	freelancerService := service.NewFreelancerService(freelancerRepo, catalogCache)
	orderService := service.NewOrderService(orderRepo, freelancerRepo, hub)
	notificationService := service.NewNotificationService(notificationRepo)
	seedService := service.NewSeedService(userRepo, freelancerRepo, orderRepo)

	hub.SetNotificationSaver(notificationService)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	freelancerHandler := httpHandlers.NewFreelancerHandler(freelancerService)
	catalogHandler := httpHandlers.NewCatalogHandler(freelancerService, orderService)
	adminHandler := httpHandlers.NewAdminHandler(freelancerService)
	orderHandler := httpHandlers.NewOrderHandler(orderService, authService)
	fulfillmentHandler := httpHandlers.NewFulfillmentHandler(orderService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, fileStorage, "")
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		freelancerHandler,
		catalogHandler,
		adminHandler,
		orderHandler,
		fulfillmentHandler,
		mediaHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		seedHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
