package main

import (
	"log/slog"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"
	"app/pkg/logging"

	"github.com/joho/godotenv"
)

func main() {
	// .envはローカル開発用。無ければ環境変数だけで動く。
	_ = godotenv.Load()

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// DB接続
	gormDB, err := db.Connect()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Category{},
		&model.InventoryItem{},
		&model.InventoryChangeLog{},
	); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	// ADMIN_EMAIL/ADMIN_PASSWORDがあれば管理者を作る
	if err := db.SeedAdmin(gormDB); err != nil {
		slog.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	changeLogRepo := infraRepo.NewChangeLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator(userRepo))
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	itemUC := usecase.NewItemUsecase(itemRepo, categoryRepo, txManager)
	changeLogUC := usecase.NewChangeLogUsecase(changeLogRepo)

	// Handler生成
	refreshTTL := 30 * 24 * time.Hour
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC, refreshTTL),
		AdminUser:  handler.NewAdminUserHandler(authUC),
		Categories: handler.NewCategoryHandler(categoryUC),
		Items:      handler.NewItemHandler(itemUC),
		ChangeLogs: handler.NewChangeLogHandler(changeLogUC),
	}

	e := server.New(cfg, userRepo, handlers)

	addr := ":" + cfg.Port
	slog.Info("starting api server", "addr", addr)

	if err := server.Start(addr, e); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
