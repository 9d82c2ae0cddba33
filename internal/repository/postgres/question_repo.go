package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает пакет вопросов
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetActiveByCategory возвращает активные вопросы категории
func (r *QuestionRepo) GetActiveByCategory(categoryID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CountActiveByCategory возвращает живое количество активных вопросов категории.
// Снапшот total_questions попытки обновляется этим значением при каждом ответе.
func (r *QuestionRepo) CountActiveByCategory(categoryID uint) (int, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error
	return int(count), err
}

// ExistsByTextAndCategory проверяет наличие вопроса с таким текстом в категории
func (r *QuestionRepo) ExistsByTextAndCategory(text string, categoryID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("text = ? AND category_id = ?", text, categoryID).
		Count(&count).Error
	return count > 0, err
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// SetActive включает или выключает вопрос
func (r *QuestionRepo) SetActive(id uint, active bool) error {
	res := r.db.Model(&entity.Question{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Question{}, id).Error
}
