package models

import "time"

// TelegramLink connects a Telegram account to a Sprout user so the bot can
// send payday reminders and transfer summaries.
type TelegramLink struct {
	Base
	UserID            string     `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TelegramUserID    int64      `gorm:"index" json:"telegram_user_id"`
	TelegramUsername  string     `json:"telegram_username,omitempty"`
	TelegramFirstName string     `json:"telegram_first_name,omitempty"`
	ChatID            int64      `gorm:"not null" json:"chat_id"`
	LinkCode          string     `gorm:"size:6" json:"-"`
	LinkCodeExpiresAt *time.Time `json:"-"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty"`
	MessageCount      int64      `gorm:"default:0" json:"message_count"`
	User              User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
