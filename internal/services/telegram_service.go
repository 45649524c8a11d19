package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "sprout/internal/errors"
	"sprout/internal/models"
)

const (
	linkCodeLength = 6
	linkCodeExpiry = 15 * time.Minute
)

// telegramService handles Telegram linking business logic.
type telegramService struct {
	db *gorm.DB
}

// NewTelegramService creates a new TelegramServicer.
func NewTelegramService(db *gorm.DB) TelegramServicer {
	return &telegramService{db: db}
}

// GenerateLinkCode issues a short-lived code the user sends to the bot to
// prove ownership of their Telegram account.
func (s *telegramService) GenerateLinkCode(userID string) (string, time.Time, error) {
	code, err := generateRandomCode(linkCodeLength)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiresAt := time.Now().Add(linkCodeExpiry)

	var link models.TelegramLink
	dbErr := s.db.Where("user_id = ?", userID).First(&link).Error
	if dbErr != nil {
		if !errors.Is(dbErr, gorm.ErrRecordNotFound) {
			return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, dbErr)
		}
		link = models.TelegramLink{
			UserID:            userID,
			LinkCode:          code,
			LinkCodeExpiresAt: &expiresAt,
			IsActive:          false,
		}
		if err := s.db.Create(&link).Error; err != nil {
			return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return code, expiresAt, nil
	}

	link.LinkCode = code
	link.LinkCodeExpiresAt = &expiresAt
	if err := s.db.Save(&link).Error; err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return code, expiresAt, nil
}

// CompleteLink verifies a code sent to the bot and activates the link.
func (s *telegramService) CompleteLink(code string, telegramUserID, chatID int64, username, firstName string) (*models.TelegramLink, error) {
	var link models.TelegramLink
	if err := s.db.Where("link_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidInviteCode
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if link.LinkCodeExpiresAt == nil || time.Now().After(*link.LinkCodeExpiresAt) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInviteCode, "Link code has expired")
	}

	// A Telegram account can only be linked to one user.
	var other models.TelegramLink
	err := s.db.Where("telegram_user_id = ? AND user_id != ?", telegramUserID, link.UserID).First(&other).Error
	if err == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "This Telegram account is already linked")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	link.TelegramUserID = telegramUserID
	link.ChatID = chatID
	link.TelegramUsername = username
	link.TelegramFirstName = firstName
	link.LinkCode = ""
	link.LinkCodeExpiresAt = nil
	link.IsActive = true

	if err := s.db.Save(&link).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &link, nil
}

// GetLinkStatus returns the user's Telegram link.
func (s *telegramService) GetLinkStatus(userID string) (*models.TelegramLink, error) {
	var link models.TelegramLink
	if err := s.db.Where("user_id = ?", userID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &link, nil
}

// Unlink removes a user's Telegram link.
func (s *telegramService) Unlink(userID string) error {
	result := s.db.Where("user_id = ?", userID).Delete(&models.TelegramLink{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ActiveLinksForHousehold returns active links for every member of a
// household, for payday notifications.
func (s *telegramService) ActiveLinksForHousehold(householdID string) ([]models.TelegramLink, error) {
	var links []models.TelegramLink
	err := s.db.
		Joins("JOIN users ON users.id = telegram_links.user_id").
		Where("users.household_id = ? AND telegram_links.is_active = ?", householdID, true).
		Find(&links).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return links, nil
}

// RecordMessage updates the last message timestamp and increments message count
func (s *telegramService) RecordMessage(telegramUserID int64) error {
	now := time.Now()
	result := s.db.Model(&models.TelegramLink{}).
		Where("telegram_user_id = ?", telegramUserID).
		Updates(map[string]interface{}{
			"last_message_at": now,
			"message_count":   gorm.Expr("message_count + 1"),
		})

	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return nil
}

// generateRandomCode generates a random alphanumeric code of specified length
func generateRandomCode(length int) (string, error) {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	code := hex.EncodeToString(bytes)[:length]
	return code, nil
}
