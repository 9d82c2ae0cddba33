package repository

import (
	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByIDs(ids []uint) ([]entity.User, error)
	Update(user *entity.User) error
}

// SubscriptionPlanRepository определяет методы для работы с тарифными планами
type SubscriptionPlanRepository interface {
	Create(plan *entity.SubscriptionPlan) error
	GetByID(id uint) (*entity.SubscriptionPlan, error)
	List() ([]entity.SubscriptionPlan, error)
	Update(plan *entity.SubscriptionPlan) error
	Delete(id uint) error
}

// PasswordResetRepository определяет методы для работы с OTP-кодами сброса пароля
type PasswordResetRepository interface {
	Create(code *entity.PasswordResetCode) error
	GetLatestByUser(userID uint) (*entity.PasswordResetCode, error)
	MarkUsed(id uint) error
	DeleteExpired() (int64, error)
}
