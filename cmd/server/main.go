package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ekuznetsov/campus-market-backend/internal/config"
	"github.com/ekuznetsov/campus-market-backend/internal/db"
	httpHandlers "github.com/ekuznetsov/campus-market-backend/internal/http/handlers"
	httpRouter "github.com/ekuznetsov/campus-market-backend/internal/http/router"
	"github.com/ekuznetsov/campus-market-backend/internal/logger"
	"github.com/ekuznetsov/campus-market-backend/internal/moderation"
	"github.com/ekuznetsov/campus-market-backend/internal/repository"
	"github.com/ekuznetsov/campus-market-backend/internal/repository/common"
	"github.com/ekuznetsov/campus-market-backend/internal/service"
	"github.com/ekuznetsov/campus-market-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
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

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	scanner, err := moderation.NewScanner(moderation.DefaultVocabulary())
	if err != nil {
		log.Fatalf("main: не удалось собрать сканер контента: %v", err)
	}
	gate := moderation.NewGate(scanner)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	actionRepo := repository.NewAdminActionRepository(dbConn)
	txManager := common.NewTxManager(dbConn)

	// Сервисы.
	moderationService := service.NewModerationService(actionRepo, userRepo, listingRepo, txManager, photoStorage, cfg.StrikeBanThreshold)
	listingService := service.NewListingService(listingRepo, userRepo, gate, moderationService)
	authService := service.NewAuthService(userRepo, moderationService, tokenManager)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	listingHandler := httpHandlers.NewListingHandler(listingService, photoStorage)
	adminHandler := httpHandlers.NewAdminActionHandler(moderationService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, listingHandler, adminHandler, healthHandler, tokenManager)

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
