package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/assetflow/assetflow_backend/config"
	"github.com/assetflow/assetflow_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const passwordResetTTL = 15 * time.Minute

// PasswordReset is a single-use emailed token.
type PasswordReset struct {
	ID        int        `gorm:"primary_key" json:"id"`
	Token     string     `gorm:"size:64;not null;unique" json:"-"`
	UserId    int        `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// RequestPasswordReset creates the token row, then emails it. The SMTP call
// happens after the row is committed, outside any transaction.
func RequestPasswordReset(ctx context.Context, username string) error {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil
	}
	if user.Email == nil || strings.TrimSpace(*user.Email) == "" {
		return nil
	}

	reset := PasswordReset{
		Token:     uuid.NewString(),
		UserId:    user.ID,
		ExpiresAt: time.Now().Add(passwordResetTTL),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}

	baseURL := os.Getenv("APP_BASE_URL")
	body := fmt.Sprintf(
		"Hello %s,\n\nA password reset was requested for your account.\nUse this token within 15 minutes:\n\n%s\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this message.",
		user.Name, reset.Token, baseURL, reset.Token)

	return utils.SendMail(*user.Email, "AssetFlow password reset", body)
}

// ConfirmPasswordReset validates expiry and single use, then re-hashes.
func ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must have at least 8 characters")
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset PasswordReset
		err := tx.Where("token = ?", strings.TrimSpace(token)).First(&reset).Error
		if err != nil {
			return errors.New("invalid or expired token")
		}
		if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
			return errors.New("invalid or expired token")
		}

		hashed, err := utils.HashPassword(newPassword)
		if err != nil {
			return err
		}
		if err := tx.Model(&User{}).Where("id = ?", reset.UserId).
			Update("password", string(hashed)).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&reset).Update("used_at", &now).Error
	})
}
