package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// QuizService реализует администрирование контента: категории, вопросы,
// шутки и тарифные планы. Изменение вопросов инвалидирует кеш набора
// вопросов категории.
type QuizService struct {
	categoryRepo repository.CategoryRepository
	questionRepo repository.QuestionRepository
	jokeRepo     repository.JokeRepository
	planRepo     repository.SubscriptionPlanRepository
	cacheRepo    repository.CacheRepository
}

// NewQuizService создает новый сервис управления контентом
func NewQuizService(
	categoryRepo repository.CategoryRepository,
	questionRepo repository.QuestionRepository,
	jokeRepo repository.JokeRepository,
	planRepo repository.SubscriptionPlanRepository,
	cacheRepo repository.CacheRepository,
) *QuizService {
	return &QuizService{
		categoryRepo: categoryRepo,
		questionRepo: questionRepo,
		jokeRepo:     jokeRepo,
		planRepo:     planRepo,
		cacheRepo:    cacheRepo,
	}
}

// invalidateStartCache сбрасывает кешированный набор вопросов категории.
// Ошибка только логируется: кеш истечет сам по TTL.
func (s *QuizService) invalidateStartCache(categoryID uint) {
	if err := s.cacheRepo.Delete(startCacheKey(categoryID)); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш категории %d: %v", categoryID, err)
	}
}

// --- Категории ---

// CreateCategory создает новую категорию
func (s *QuizService) CreateCategory(name, image string, totalTimeSec int) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if totalTimeSec < 0 {
		return nil, fmt.Errorf("%w: total time cannot be negative", apperrors.ErrValidation)
	}

	category := &entity.Category{
		Name:         name,
		Image:        image,
		TotalTimeSec: totalTimeSec,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory возвращает категорию по ID
func (s *QuizService) GetCategory(id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// ListCategories возвращает все категории
func (s *QuizService) ListCategories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// UpdateCategory обновляет категорию и сбрасывает ее кеш
func (s *QuizService) UpdateCategory(id uint, name, image string, totalTimeSec int) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		category.Name = name
	}
	if image != "" {
		category.Image = image
	}
	if totalTimeSec > 0 {
		category.TotalTimeSec = totalTimeSec
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.invalidateStartCache(id)
	return category, nil
}

// DeleteCategory удаляет категорию вместе с ее вопросами (каскад в БД)
func (s *QuizService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateStartCache(id)
	return nil
}

// --- Вопросы ---

// QuestionInput - данные одного вопроса при создании
type QuestionInput struct {
	Text        string
	Options     []string
	Answer      string
	Explanation string
	PointValue  int
}

func (in *QuestionInput) toEntity(categoryID uint) *entity.Question {
	return &entity.Question{
		CategoryID:  categoryID,
		Text:        strings.TrimSpace(in.Text),
		Options:     in.Options,
		Answer:      in.Answer,
		Explanation: in.Explanation,
		PointValue:  in.PointValue,
		IsActive:    true,
	}
}

// CreateQuestion создает вопрос в категории.
// Дубликат текста внутри категории отклоняется.
func (s *QuizService) CreateQuestion(categoryID uint, input QuestionInput) (*entity.Question, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}

	question := input.toEntity(categoryID)
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	exists, err := s.questionRepo.ExistsByTextAndCategory(question.Text, categoryID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: question with the same text already exists in the category", apperrors.ErrConflict)
	}

	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	s.invalidateStartCache(categoryID)
	return question, nil
}

// CreateQuestions создает пакет вопросов в категории.
// Пакет валидируется целиком до записи: либо все вопросы валидны,
// либо ни один не создан.
func (s *QuizService) CreateQuestions(categoryID uint, inputs []QuestionInput) ([]entity.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}

	questions := make([]entity.Question, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		q := in.toEntity(categoryID)
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", apperrors.ErrValidation, i+1, err)
		}
		if seen[q.Text] {
			return nil, fmt.Errorf("%w: question %d duplicates another question in the batch", apperrors.ErrValidation, i+1)
		}
		seen[q.Text] = true

		exists, err := s.questionRepo.ExistsByTextAndCategory(q.Text, categoryID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: question %d already exists in the category", apperrors.ErrConflict, i+1)
		}
		questions = append(questions, *q)
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	s.invalidateStartCache(categoryID)
	return questions, nil
}

// GetQuestion возвращает вопрос по ID
func (s *QuizService) GetQuestion(id uint) (*entity.Question, error) {
	return s.questionRepo.GetByID(id)
}

// UpdateQuestion обновляет вопрос целиком
func (s *QuizService) UpdateQuestion(id uint, input QuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	question.Text = strings.TrimSpace(input.Text)
	question.Options = input.Options
	question.Answer = input.Answer
	question.Explanation = input.Explanation
	question.PointValue = input.PointValue

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}
	s.invalidateStartCache(question.CategoryID)
	return question, nil
}

// SetQuestionActive включает или выключает вопрос.
// Выключенный вопрос пропадает из наборов, но сохраненные ответы на него
// остаются в попытках.
func (s *QuizService) SetQuestionActive(id uint, active bool) error {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.SetActive(id, active); err != nil {
		return err
	}
	s.invalidateStartCache(question.CategoryID)
	return nil
}

// DeleteQuestion удаляет вопрос
func (s *QuizService) DeleteQuestion(id uint) error {
	question, err := s.questionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateStartCache(question.CategoryID)
	return nil
}

// --- Импорт XLSX ---

// ImportReport - итог импорта вопросов из файла
type ImportReport struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}

// Колонки листа импорта: текст, до четырех вариантов, ответ, пояснение, очки
const importMinColumns = 6

// ImportQuestionsXLSX читает вопросы из XLSX-файла и создает их в категории.
// Формат листа: A - текст, B..E - варианты (пустые пропускаются),
// F - правильный ответ, G - пояснение, H - очки.
// Невалидные строки пропускаются и попадают в отчет, валидные создаются.
func (s *QuizService) ImportQuestionsXLSX(categoryID uint, r io.Reader) (*ImportReport, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read xlsx file: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet rows: %v", apperrors.ErrValidation, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file contains no question rows", apperrors.ErrValidation)
	}

	report := &ImportReport{}
	questions := make([]entity.Question, 0, len(rows)-1)
	seen := make(map[string]bool)

	// Первая строка - заголовки
	for i, row := range rows[1:] {
		rowNum := i + 2

		input, err := parseQuestionRow(row)
		if err != nil {
			report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		q := input.toEntity(categoryID)
		if err := q.Validate(); err != nil {
			report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if seen[q.Text] {
			report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: duplicate of another row", rowNum))
			continue
		}
		seen[q.Text] = true

		exists, err := s.questionRepo.ExistsByTextAndCategory(q.Text, categoryID)
		if err != nil {
			return nil, err
		}
		if exists {
			report.Skipped = append(report.Skipped, fmt.Sprintf("row %d: already exists in the category", rowNum))
			continue
		}

		questions = append(questions, *q)
	}

	if len(questions) > 0 {
		if err := s.questionRepo.CreateBatch(questions); err != nil {
			return nil, err
		}
		s.invalidateStartCache(categoryID)
	}
	report.Created = len(questions)

	log.Printf("[QuizService] Импорт в категорию %d: создано %d, пропущено %d", categoryID, report.Created, len(report.Skipped))
	return report, nil
}

// parseQuestionRow разбирает одну строку листа импорта
func parseQuestionRow(row []string) (*QuestionInput, error) {
	if len(row) < importMinColumns {
		return nil, errors.New("not enough columns")
	}

	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	options := make([]string, 0, 4)
	for idx := 1; idx <= 4; idx++ {
		if v := cell(idx); v != "" {
			options = append(options, v)
		}
	}

	points := 10
	if raw := cell(7); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid point value %q", raw)
		}
		points = parsed
	}

	return &QuestionInput{
		Text:        cell(0),
		Options:     options,
		Answer:      cell(5),
		Explanation: cell(6),
		PointValue:  points,
	}, nil
}

// --- Шутки ---

// CreateJoke добавляет бонусную шутку
func (s *QuizService) CreateJoke(text, imageURL string) (*entity.Joke, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: joke text is required", apperrors.ErrValidation)
	}
	joke := &entity.Joke{Text: text, ImageURL: imageURL}
	if err := s.jokeRepo.Create(joke); err != nil {
		return nil, err
	}
	return joke, nil
}

// ListJokes возвращает все шутки
func (s *QuizService) ListJokes() ([]entity.Joke, error) {
	return s.jokeRepo.List()
}

// DeleteJoke удаляет шутку
func (s *QuizService) DeleteJoke(id uint) error {
	return s.jokeRepo.Delete(id)
}

// --- Тарифные планы ---

// PlanInput - данные тарифного плана
type PlanInput struct {
	Name              string
	PriceCents        int
	DurationDays      int
	AllowedCategories []uint
}

// CreatePlan создает тарифный план
func (s *QuizService) CreatePlan(input PlanInput) (*entity.SubscriptionPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", apperrors.ErrValidation)
	}
	if input.PriceCents < 0 || input.DurationDays < 0 {
		return nil, fmt.Errorf("%w: price and duration cannot be negative", apperrors.ErrValidation)
	}

	plan := &entity.SubscriptionPlan{
		Name:              name,
		PriceCents:        input.PriceCents,
		DurationDays:      input.DurationDays,
		AllowedCategories: input.AllowedCategories,
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans возвращает все тарифные планы
func (s *QuizService) ListPlans() ([]entity.SubscriptionPlan, error) {
	return s.planRepo.List()
}

// GetPlan возвращает тарифный план по ID
func (s *QuizService) GetPlan(id uint) (*entity.SubscriptionPlan, error) {
	return s.planRepo.GetByID(id)
}

// UpdatePlan обновляет тарифный план
func (s *QuizService) UpdatePlan(id uint, input PlanInput) (*entity.SubscriptionPlan, error) {
	plan, err := s.planRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		plan.Name = name
	}
	if input.PriceCents >= 0 {
		plan.PriceCents = input.PriceCents
	}
	if input.DurationDays >= 0 {
		plan.DurationDays = input.DurationDays
	}
	if input.AllowedCategories != nil {
		plan.AllowedCategories = input.AllowedCategories
	}

	if err := s.planRepo.Update(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan удаляет тарифный план
func (s *QuizService) DeletePlan(id uint) error {
	return s.planRepo.Delete(id)
}
