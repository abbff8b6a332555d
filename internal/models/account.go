package models

import "time"

type Account struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	Username       string  `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash   string  `gorm:"not null" json:"-"`
	Mobile         string  `gorm:"uniqueIndex;not null" json:"mobile"`
	Balance        float64 `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	TelegramChatID *int64  `gorm:"uniqueIndex;default:null" json:"-"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
