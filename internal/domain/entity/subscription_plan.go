package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// UintArray - пользовательский тип для JSONB-массива идентификаторов
type UintArray []uint

// Scan реализует интерфейс sql.Scanner для UintArray
func (a *UintArray) Scan(value interface{}) error {
	if value == nil {
		*a = UintArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = UintArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для UintArray
func (a UintArray) Value() (driver.Value, error) {
	if a == nil || len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// SubscriptionPlan представляет тарифный план подписки.
// Премиум-план (имя задается конфигурацией) открывает все категории,
// остальные планы ограничены списком AllowedCategories.
type SubscriptionPlan struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	PriceCents        int       `gorm:"not null;default:0" json:"price_cents"`
	DurationDays      int       `gorm:"not null;default:30" json:"duration_days"`
	AllowedCategories UintArray `gorm:"type:jsonb;not null" json:"allowed_categories"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// AllowsCategory проверяет, входит ли категория в список разрешенных планом
func (p *SubscriptionPlan) AllowsCategory(categoryID uint) bool {
	for _, id := range p.AllowedCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}
