package repository

import (
	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения категорий
type AttemptRepository interface {
	// AppendAnswer атомарно дописывает ответ в попытку пары (userID, categoryID),
	// создавая попытку при первом ответе. totalQuestions — живое количество
	// активных вопросов категории, записывается снапшотом.
	//
	// Возвращает попытку после операции и признак appended:
	// false означает идемпотентный реплей — ответ на этот вопрос уже был,
	// счетчики не изменены, в попытке лежит исходный результат.
	// Два конкурентных сабмита разных вопросов не теряют обновлений,
	// два конкурентных сабмита одного вопроса дают ровно один append.
	AppendAnswer(userID, categoryID uint, entry entity.AnswerEntry, totalQuestions int) (*entity.Attempt, bool, error)

	// GetByID возвращает попытку по ID
	GetByID(id uint) (*entity.Attempt, error)

	// GetByUserAndCategory возвращает попытку пары (userID, categoryID)
	GetByUserAndCategory(userID, categoryID uint) (*entity.Attempt, error)

	// SumScoreByUser возвращает суммарные очки пользователя по всем попыткам
	SumScoreByUser(userID uint) (int, error)

	// OverviewStats возвращает агрегат по всем попыткам пользователя
	OverviewStats(userID uint) (*entity.OverviewStats, error)

	// CategoryStats возвращает агрегаты попыток пользователя по категориям,
	// отсортированные по суммарным очкам по убыванию
	CategoryStats(userID uint) ([]entity.CategoryStats, error)

	// RecentAttempts возвращает последние попытки пользователя
	RecentAttempts(userID uint, limit int) ([]entity.Attempt, error)

	// DistinctCategoryCount возвращает количество категорий, сыгранных пользователем
	DistinctCategoryCount(userID uint) (int64, error)

	// TotalsByUser возвращает суммарные очки всех пользователей,
	// используется перестройкой лидерборда
	TotalsByUser() (map[uint]int, error)
}
