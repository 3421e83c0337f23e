package models

import (
	"strings"

	"github.com/postdeck-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdministrator 初始化默认管理员账号
func InitDefaultAdministrator(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("is_administrator = ?", true).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@postdeck.local"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Email:           strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:    string(hash),
		DisplayName:     "Administrator",
		Status:          "active",
		IsAdministrator: true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_administrator_created_with_default_password", "email", admin.Email)
		logger.Warnw("default_administrator_password_change_required", "email", admin.Email)
	} else {
		logger.Warnw("default_administrator_created", "email", admin.Email, "password_hidden", true)
	}

	return nil
}
