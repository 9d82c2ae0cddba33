package dto

import (
	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/service"
)

// JokeResponse представляет бонусную шутку в формате для ответа клиенту
type JokeResponse struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// SubmitAnswerResponse представляет результат приема одного ответа.
// Поле replayed отличает повторную доставку от первого применения.
type SubmitAnswerResponse struct {
	IsCorrect          bool          `json:"is_correct"`
	CorrectOption      string        `json:"correct_option"`
	Explanation        string        `json:"explanation,omitempty"`
	AttemptID          uint          `json:"attempt_id"`
	RunningTotal       int           `json:"running_total"`
	CorrectCount       int           `json:"correct_count"`
	AnsweredCount      int           `json:"answered_count"`
	IsCategoryComplete bool          `json:"is_category_complete"`
	Replayed           bool          `json:"replayed"`
	LeaderboardUpdated bool          `json:"leaderboard_updated"`
	Bonus              *JokeResponse `json:"bonus,omitempty"`
}

// NewSubmitAnswerResponse создает DTO для результата приема ответа
func NewSubmitAnswerResponse(result *service.SubmissionResult) *SubmitAnswerResponse {
	resp := &SubmitAnswerResponse{
		IsCorrect:          result.IsCorrect,
		CorrectOption:      result.CorrectOption,
		Explanation:        result.Explanation,
		AttemptID:          result.AttemptID,
		RunningTotal:       result.RunningTotal,
		CorrectCount:       result.CorrectCount,
		AnsweredCount:      result.AnsweredCount,
		IsCategoryComplete: result.IsCategoryComplete,
		Replayed:           result.Replayed,
		LeaderboardUpdated: result.LeaderboardUpdated,
	}
	if result.Bonus != nil {
		resp.Bonus = &JokeResponse{Text: result.Bonus.Text, ImageURL: result.Bonus.ImageURL}
	}
	return resp
}

// AttemptResponse представляет попытку в формате для ответа клиенту
type AttemptResponse struct {
	ID              uint              `json:"id"`
	CategoryID      uint              `json:"category_id"`
	Answers         entity.AnswerList `json:"answers"`
	TotalScore      int               `json:"total_score"`
	CorrectCount    int               `json:"correct_count"`
	TotalQuestions  int               `json:"total_questions"`
	AccuracyPercent int               `json:"accuracy_percent"`
	IsComplete      bool              `json:"is_complete"`
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(attempt *entity.Attempt) *AttemptResponse {
	return &AttemptResponse{
		ID:              attempt.ID,
		CategoryID:      attempt.CategoryID,
		Answers:         attempt.Answers,
		TotalScore:      attempt.TotalScore,
		CorrectCount:    attempt.CorrectCount,
		TotalQuestions:  attempt.TotalQuestions,
		AccuracyPercent: attempt.AccuracyPercent(),
		IsComplete:      attempt.IsComplete(),
	}
}
