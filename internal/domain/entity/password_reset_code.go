package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PasswordResetCode представляет OTP-код для сброса пароля.
// В БД хранится только SHA-256 хеш кода, сам код уходит на почту.
type PasswordResetCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CodeHash  string    `gorm:"size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `gorm:"type:timestamp" json:"used_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PasswordResetCode) TableName() string {
	return "password_reset_codes"
}

// HashResetCode возвращает hex-представление SHA-256 хеша кода
func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// IsExpired проверяет, истек ли срок действия кода
func (c *PasswordResetCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsUsed проверяет, был ли код уже использован
func (c *PasswordResetCode) IsUsed() bool {
	return c.UsedAt != nil
}

// Matches сравнивает код с сохраненным хешем
func (c *PasswordResetCode) Matches(code string) bool {
	return c.CodeHash == HashResetCode(code)
}
