package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// JokeRepo реализует repository.JokeRepository
type JokeRepo struct {
	db *gorm.DB
}

// NewJokeRepo создает новый репозиторий шуток
func NewJokeRepo(db *gorm.DB) *JokeRepo {
	return &JokeRepo{db: db}
}

// Create создает новую шутку
func (r *JokeRepo) Create(joke *entity.Joke) error {
	return r.db.Create(joke).Error
}

// GetRandom возвращает случайную шутку
func (r *JokeRepo) GetRandom() (*entity.Joke, error) {
	var joke entity.Joke
	err := r.db.Order("RANDOM()").First(&joke).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &joke, nil
}

// List возвращает все шутки
func (r *JokeRepo) List() ([]entity.Joke, error) {
	var jokes []entity.Joke
	err := r.db.Order("id").Find(&jokes).Error
	if err != nil {
		return nil, err
	}
	return jokes, nil
}

// Delete удаляет шутку
func (r *JokeRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Joke{}, id).Error
}
