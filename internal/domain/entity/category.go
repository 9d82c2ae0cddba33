package entity

import (
	"time"
)

// Category представляет категорию викторины
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Image        string    `gorm:"size:255;not null;default:''" json:"image"`
	TotalTimeSec int       `gorm:"not null;default:0" json:"total_time_sec"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}
