package db

import (
	"errors"
	"log/slog"
	"os"

	"app/internal/domain/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin はADMIN_EMAIL/ADMIN_PASSWORDから初期管理者を1人作る。
// すでに存在すれば何もしない。カテゴリ管理は管理者しかできないので、
// 空のDBでも運用を始められるようにする。
func SeedAdmin(gormDB *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		slog.Info("admin seed skipped: ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var existing model.User
	err := gormDB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     getenv("ADMIN_USERNAME", "admin"),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := gormDB.Create(&admin).Error; err != nil {
		return err
	}

	slog.Info("admin user seeded", "email", email)
	return nil
}
