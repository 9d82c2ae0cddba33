package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает новую категорию
func (r *CategoryRepo) Create(category *entity.Category) error {
	return r.db.Create(category).Error
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// List возвращает все категории
func (r *CategoryRepo) List() ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.Order("id").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Count возвращает общее количество категорий
func (r *CategoryRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entity.Category{}).Count(&count).Error
	return count, err
}

// Update обновляет категорию
func (r *CategoryRepo) Update(category *entity.Category) error {
	return r.db.Save(category).Error
}

// Delete удаляет категорию
func (r *CategoryRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Category{}, id).Error
}
