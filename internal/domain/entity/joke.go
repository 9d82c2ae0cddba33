package entity

import (
	"time"
)

// Joke представляет бонусную шутку, выдаваемую при завершении категории
type Joke struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:1000;not null" json:"text"`
	ImageURL  string    `gorm:"size:255;not null;default:''" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Joke) TableName() string {
	return "jokes"
}
