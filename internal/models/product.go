package models

import "time"

type Product struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Price       float64 `gorm:"type:numeric(14,2);not null" json:"price"`
	Description string  `json:"description"`
	CreatedAt   time.Time `json:"-"`
}
