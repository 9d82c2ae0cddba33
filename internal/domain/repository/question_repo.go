package repository

import (
	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetActiveByCategory(categoryID uint) ([]entity.Question, error)
	CountActiveByCategory(categoryID uint) (int, error)
	ExistsByTextAndCategory(text string, categoryID uint) (bool, error)
	Update(question *entity.Question) error
	SetActive(id uint, active bool) error
	Delete(id uint) error
}

// CategoryRepository определяет методы для работы с категориями викторин
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	List() ([]entity.Category, error)
	Count() (int64, error)
	Update(category *entity.Category) error
	Delete(id uint) error
}

// JokeRepository определяет методы для работы с бонусными шутками
type JokeRepository interface {
	Create(joke *entity.Joke) error
	GetRandom() (*entity.Joke, error)
	List() ([]entity.Joke, error)
	Delete(id uint) error
}
