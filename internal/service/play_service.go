package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// SubmissionResult - результат приема одного ответа
type SubmissionResult struct {
	IsCorrect          bool
	CorrectOption      string
	Explanation        string
	AttemptID          uint
	RunningTotal       int
	CorrectCount       int
	AnsweredCount      int
	IsCategoryComplete bool
	// Replayed: ответ на этот вопрос уже был, возвращен сохраненный результат
	Replayed bool
	// LeaderboardUpdated=false означает, что попытка записана, но лидерборд
	// обновить не удалось (частичный успех, лидерборд догонит при следующем
	// ответе или фоновой сверке)
	LeaderboardUpdated bool
	// Bonus выдается ровно один раз — на ответе, завершившем категорию
	Bonus *entity.Joke
}

// CategoryInfo - метаданные категории в собранном наборе вопросов
type CategoryInfo struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	TotalTimeSec   int    `json:"total_time_sec"`
	TotalQuestions int    `json:"total_questions"`
}

// QuestionInfo - вопрос с изъятым правильным ответом
type QuestionInfo struct {
	ID         uint     `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	PointValue int      `json:"point_value"`
}

// QuestionSetPayload - собранный набор вопросов категории для старта викторины
type QuestionSetPayload struct {
	Category  CategoryInfo   `json:"category"`
	Questions []QuestionInfo `json:"questions"`
}

// PlayService реализует прием ответов с накоплением попытки и выдачу
// наборов вопросов через кеш
type PlayService struct {
	questionRepo repository.QuestionRepository
	categoryRepo repository.CategoryRepository
	attemptRepo  repository.AttemptRepository
	jokeRepo     repository.JokeRepository
	leaderboard  repository.LeaderboardRepository
	cacheRepo    repository.CacheRepository
	cacheTTL     time.Duration
}

// NewPlayService создает новый сервис прохождения викторин
func NewPlayService(
	questionRepo repository.QuestionRepository,
	categoryRepo repository.CategoryRepository,
	attemptRepo repository.AttemptRepository,
	jokeRepo repository.JokeRepository,
	leaderboard repository.LeaderboardRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *PlayService {
	return &PlayService{
		questionRepo: questionRepo,
		categoryRepo: categoryRepo,
		attemptRepo:  attemptRepo,
		jokeRepo:     jokeRepo,
		leaderboard:  leaderboard,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
	}
}

// SubmitAnswer принимает один ответ пользователя.
//
// Повторный сабмит уже отвеченного вопроса возвращает сохраненный результат
// без повторного начисления очков — ретраи сети не раздувают счет.
// После успешного (не реплейного) применения суммарные очки пользователя по
// всем категориям выталкиваются в лидерборд; неудача выталкивания не
// откатывает попытку, а помечается в результате.
func (s *PlayService) SubmitAnswer(userID, categoryID, questionID uint, selectedOption string) (*SubmissionResult, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if !question.IsActive {
		return nil, fmt.Errorf("%w: question is not active", apperrors.ErrNotFound)
	}
	if question.CategoryID != categoryID {
		return nil, fmt.Errorf("%w: question does not belong to the category", apperrors.ErrValidation)
	}

	// Живое количество активных вопросов: категория может вырасти между
	// сабмитами, снапшот в попытке всегда отражает последнее значение
	totalQuestions, err := s.questionRepo.CountActiveByCategory(categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count category questions: %w", err)
	}

	isCorrect := question.IsCorrect(selectedOption)
	entry := entity.AnswerEntry{
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		IsCorrect:      isCorrect,
		Points:         question.AwardedPoints(isCorrect),
	}

	attempt, appended, err := s.attemptRepo.AppendAnswer(userID, categoryID, entry, totalQuestions)
	if err != nil {
		return nil, err
	}

	result := &SubmissionResult{
		CorrectOption:      question.Answer,
		Explanation:        question.Explanation,
		AttemptID:          attempt.ID,
		RunningTotal:       attempt.TotalScore,
		CorrectCount:       attempt.CorrectCount,
		AnsweredCount:      len(attempt.Answers),
		IsCategoryComplete: attempt.IsComplete(),
		LeaderboardUpdated: true,
	}

	if !appended {
		// Идемпотентный реплей: отдаем исходный сохраненный результат
		stored, ok := attempt.FindAnswer(questionID)
		if !ok {
			return nil, fmt.Errorf("attempt %d is missing answer for question %d", attempt.ID, questionID)
		}
		result.IsCorrect = stored.IsCorrect
		result.Replayed = true
		return result, nil
	}

	result.IsCorrect = isCorrect

	// Выталкиваем суммарные очки по ВСЕМ категориям пользователя.
	// Лидерборд производный: его сбой не откатывает записанную попытку.
	if err := s.pushTotalScore(userID); err != nil {
		log.Printf("[PlayService] Не удалось обновить лидерборд для пользователя %d: %v", userID, err)
		result.LeaderboardUpdated = false
	}

	// Бонус выдается ровно на том ответе, который завершил категорию
	if result.IsCategoryComplete {
		joke, err := s.jokeRepo.GetRandom()
		if err != nil {
			log.Printf("[PlayService] Не удалось получить бонусную шутку: %v", err)
		} else {
			result.Bonus = joke
		}
	}

	return result, nil
}

// pushTotalScore пересчитывает и выталкивает суммарные очки пользователя
func (s *PlayService) pushTotalScore(userID uint) error {
	total, err := s.attemptRepo.SumScoreByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to sum user score: %w", err)
	}
	return s.leaderboard.Upsert(userID, total)
}

// startCacheKey возвращает ключ кеша набора вопросов категории
func startCacheKey(categoryID uint) string {
	return fmt.Sprintf("quiz:start:%d", categoryID)
}

// StartQuiz возвращает набор вопросов категории с изъятыми правильными
// ответами. Набор кешируется на фиксированный TTL; кеш исключительно
// оптимизация — любая его ошибка проваливается в сборку заново.
func (s *PlayService) StartQuiz(categoryID uint) (*QuestionSetPayload, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}

	key := startCacheKey(categoryID)

	var cached QuestionSetPayload
	cacheErr := s.cacheRepo.GetJSON(key, &cached)
	if cacheErr == nil {
		return &cached, nil
	}
	if !isCacheMiss(cacheErr) {
		log.Printf("[PlayService] Кеш недоступен для категории %d, собираем заново: %v", categoryID, cacheErr)
	}

	questions, err := s.questionRepo.GetActiveByCategory(categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category questions: %w", err)
	}

	payload := &QuestionSetPayload{
		Category: CategoryInfo{
			ID:             category.ID,
			Name:           category.Name,
			Image:          category.Image,
			TotalTimeSec:   category.TotalTimeSec,
			TotalQuestions: len(questions),
		},
		Questions: make([]QuestionInfo, 0, len(questions)),
	}
	for _, q := range questions {
		payload.Questions = append(payload.Questions, QuestionInfo{
			ID:         q.ID,
			Text:       q.Text,
			Options:    q.Options,
			PointValue: q.PointValue,
		})
	}

	// Заполнение кеша best-effort: гонка двух заполнителей безвредна,
	// оба собрали одинаковый набор
	if err := s.cacheRepo.SetJSON(key, payload, s.cacheTTL); err != nil {
		log.Printf("[PlayService] Не удалось записать набор категории %d в кеш: %v", categoryID, err)
	}

	return payload, nil
}

// isCacheMiss отличает штатный промах от недоступности кеша
func isCacheMiss(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// ReconcileLeaderboard перестраивает лидерборд из попыток.
// Ограничивает давность рассинхронизации после пропущенных выталкиваний.
func (s *PlayService) ReconcileLeaderboard() error {
	totals, err := s.attemptRepo.TotalsByUser()
	if err != nil {
		return fmt.Errorf("failed to load score totals: %w", err)
	}

	for userID, total := range totals {
		if err := s.leaderboard.Upsert(userID, total); err != nil {
			return fmt.Errorf("failed to upsert user %d during reconcile: %w", userID, err)
		}
	}

	log.Printf("[PlayService] Сверка лидерборда завершена, пользователей: %d", len(totals))
	return nil
}
