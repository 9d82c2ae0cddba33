package entity

import (
	"time"
)

// OverviewStats - агрегат по всем попыткам одного пользователя.
// Заполняется агрегирующим запросом репозитория попыток.
type OverviewStats struct {
	QuizzesPlayed  int64      `json:"quizzes_played"`
	TotalScore     int64      `json:"total_score"`
	BestScore      int64      `json:"best_score"`
	AverageScore   float64    `json:"average_score"`
	TotalCorrect   int64      `json:"total_correct"`
	TotalQuestions int64      `json:"total_questions_answered"`
	LastPlayedAt   *time.Time `json:"last_played_at"`
}

// CategoryStats - агрегат попыток пользователя, сгруппированный по категории
type CategoryStats struct {
	CategoryID     uint       `json:"category_id"`
	CategoryName   string     `json:"category_name"`
	CategoryImage  string     `json:"category_image"`
	QuizzesPlayed  int64      `json:"quizzes_played"`
	TotalScore     int64      `json:"total_score"`
	BestScore      int64      `json:"best_score"`
	AverageScore   float64    `json:"average_score"`
	TotalCorrect   int64      `json:"total_correct"`
	TotalQuestions int64      `json:"total_questions"`
	LastPlayedAt   *time.Time `json:"last_played_at"`
}

// AccuracyPercent возвращает точность по категории в процентах
func (s *CategoryStats) AccuracyPercent() int {
	return Percent(s.TotalCorrect, s.TotalQuestions)
}

// Percent возвращает округленное отношение a/b в процентах, 0 при b == 0
func Percent(a, b int64) int {
	if b == 0 {
		return 0
	}
	return int(float64(a)/float64(b)*100 + 0.5)
}
