package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// PasswordResetRepo реализует repository.PasswordResetRepository
type PasswordResetRepo struct {
	db *gorm.DB
}

// NewPasswordResetRepo создает новый репозиторий OTP-кодов
func NewPasswordResetRepo(db *gorm.DB) *PasswordResetRepo {
	return &PasswordResetRepo{db: db}
}

// Create создает новый OTP-код, инвалидируя предыдущие коды пользователя
func (r *PasswordResetRepo) Create(code *entity.PasswordResetCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Действителен только последний выданный код
		if err := tx.Where("user_id = ? AND used_at IS NULL", code.UserID).
			Delete(&entity.PasswordResetCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// GetLatestByUser возвращает последний выданный код пользователя
func (r *PasswordResetRepo) GetLatestByUser(userID uint) (*entity.PasswordResetCode, error) {
	var code entity.PasswordResetCode
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// MarkUsed помечает код использованным
func (r *PasswordResetRepo) MarkUsed(id uint) error {
	now := time.Now()
	res := r.db.Model(&entity.PasswordResetCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// DeleteExpired удаляет истекшие коды, возвращает количество удаленных
func (r *PasswordResetRepo) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at < ?", time.Now()).
		Delete(&entity.PasswordResetCode{})
	return res.RowsAffected, res.Error
}
