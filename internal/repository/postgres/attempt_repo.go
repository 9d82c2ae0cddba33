package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// AppendAnswer атомарно дописывает ответ в попытку пары (userID, categoryID).
//
// Конкурентная модель: вся модификация "append + инкременты счетчиков"
// выражена одним UPDATE с охранным условием отсутствия вопроса в answers.
// Два одновременных сабмита разных вопросов сериализуются блокировкой строки
// и оба применяются; два одновременных сабмита одного вопроса применяются
// ровно один раз — проигравший видит RowsAffected=0 и читает сохраненный
// ответ победителя (идемпотентный реплей).
func (r *AttemptRepo) AppendAnswer(userID, categoryID uint, entry entity.AnswerEntry, totalQuestions int) (*entity.Attempt, bool, error) {
	// Лениво создаем попытку при первом ответе
	err := r.db.Exec(`
		INSERT INTO quiz_attempts (user_id, category_id, answers, total_score, correct_count, total_questions, created_at, updated_at)
		VALUES (?, ?, '[]'::jsonb, 0, 0, ?, NOW(), NOW())
		ON CONFLICT (user_id, category_id) DO NOTHING`,
		userID, categoryID, totalQuestions).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure attempt row: %w", err)
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal answer entry: %w", err)
	}

	// Проба содержания: массив answers уже содержит элемент с этим question_id
	probeJSON, err := json.Marshal([]map[string]uint{{"question_id": entry.QuestionID}})
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal answer probe: %w", err)
	}

	correctInc := 0
	if entry.IsCorrect {
		correctInc = 1
	}

	res := r.db.Exec(`
		UPDATE quiz_attempts
		SET answers = answers || ?::jsonb,
		    total_score = total_score + ?,
		    correct_count = correct_count + ?,
		    total_questions = ?,
		    updated_at = NOW()
		WHERE user_id = ? AND category_id = ?
		  AND NOT (answers @> ?::jsonb)`,
		string(entryJSON), entry.Points, correctInc, totalQuestions,
		userID, categoryID, string(probeJSON))
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to append answer: %w", res.Error)
	}

	appended := res.RowsAffected > 0

	attempt, err := r.GetByUserAndCategory(userID, categoryID)
	if err != nil {
		return nil, appended, err
	}

	return attempt, appended, nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByUserAndCategory возвращает попытку пары (userID, categoryID)
func (r *AttemptRepo) GetByUserAndCategory(userID, categoryID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("user_id = ? AND category_id = ?", userID, categoryID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// SumScoreByUser возвращает суммарные очки пользователя по всем попыткам
func (r *AttemptRepo) SumScoreByUser(userID uint) (int, error) {
	var total int
	err := r.db.Raw(`
		SELECT COALESCE(SUM(total_score), 0)
		FROM quiz_attempts
		WHERE user_id = ?`, userID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// OverviewStats возвращает агрегат по всем попыткам пользователя
func (r *AttemptRepo) OverviewStats(userID uint) (*entity.OverviewStats, error) {
	var stats entity.OverviewStats
	err := r.db.Raw(`
		SELECT COUNT(*)                        AS quizzes_played,
		       COALESCE(SUM(total_score), 0)   AS total_score,
		       COALESCE(MAX(total_score), 0)   AS best_score,
		       COALESCE(AVG(total_score), 0)   AS average_score,
		       COALESCE(SUM(correct_count), 0) AS total_correct,
		       COALESCE(SUM(total_questions), 0) AS total_questions,
		       MAX(created_at)                 AS last_played_at
		FROM quiz_attempts
		WHERE user_id = ?`, userID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CategoryStats возвращает агрегаты попыток пользователя по категориям
func (r *AttemptRepo) CategoryStats(userID uint) ([]entity.CategoryStats, error) {
	var rows []entity.CategoryStats
	err := r.db.Raw(`
		SELECT a.category_id                     AS category_id,
		       c.name                            AS category_name,
		       c.image                           AS category_image,
		       COUNT(*)                          AS quizzes_played,
		       COALESCE(SUM(a.total_score), 0)   AS total_score,
		       COALESCE(MAX(a.total_score), 0)   AS best_score,
		       COALESCE(AVG(a.total_score), 0)   AS average_score,
		       COALESCE(SUM(a.correct_count), 0) AS total_correct,
		       COALESCE(SUM(a.total_questions), 0) AS total_questions,
		       MAX(a.created_at)                 AS last_played_at
		FROM quiz_attempts a
		JOIN categories c ON c.id = a.category_id
		WHERE a.user_id = ?
		GROUP BY a.category_id, c.name, c.image
		ORDER BY total_score DESC`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentAttempts возвращает последние попытки пользователя
func (r *AttemptRepo) RecentAttempts(userID uint, limit int) ([]entity.Attempt, error) {
	var attempts []entity.Attempt
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// DistinctCategoryCount возвращает количество сыгранных пользователем категорий
func (r *AttemptRepo) DistinctCategoryCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Attempt{}).
		Where("user_id = ?", userID).
		Distinct("category_id").
		Count(&count).Error
	return count, err
}

// TotalsByUser возвращает суммарные очки всех пользователей.
// Используется перестройкой лидерборда из попыток (производный индекс).
func (r *AttemptRepo) TotalsByUser() (map[uint]int, error) {
	var rows []struct {
		UserID uint
		Total  int
	}
	err := r.db.Raw(`
		SELECT user_id, COALESCE(SUM(total_score), 0) AS total
		FROM quiz_attempts
		GROUP BY user_id`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]int, len(rows))
	for _, row := range rows {
		totals[row.UserID] = row.Total
	}
	return totals, nil
}
