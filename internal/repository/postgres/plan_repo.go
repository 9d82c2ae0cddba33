package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// PlanRepo реализует repository.SubscriptionPlanRepository
type PlanRepo struct {
	db *gorm.DB
}

// NewPlanRepo создает новый репозиторий тарифных планов
func NewPlanRepo(db *gorm.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Create создает новый план
func (r *PlanRepo) Create(plan *entity.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

// GetByID возвращает план по ID
func (r *PlanRepo) GetByID(id uint) (*entity.SubscriptionPlan, error) {
	var plan entity.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List возвращает все планы
func (r *PlanRepo) List() ([]entity.SubscriptionPlan, error) {
	var plans []entity.SubscriptionPlan
	err := r.db.Order("id").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Update обновляет план
func (r *PlanRepo) Update(plan *entity.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// Delete удаляет план
func (r *PlanRepo) Delete(id uint) error {
	return r.db.Delete(&entity.SubscriptionPlan{}, id).Error
}
