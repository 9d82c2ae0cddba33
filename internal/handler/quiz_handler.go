package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizplay-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
	"github.com/yourusername/quizplay-api/internal/service"
)

// Предел размера загружаемого XLSX-файла
const maxImportFileSize = 10 << 20 // 10 MB

// QuizHandler обрабатывает управление контентом: категории, вопросы,
// шутки, тарифные планы и подписки
type QuizHandler struct {
	quizService   *service.QuizService
	accessService *service.AccessService
}

// NewQuizHandler создает новый обработчик контента
func NewQuizHandler(quizService *service.QuizService, accessService *service.AccessService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		accessService: accessService,
	}
}

// Структуры запросов

// CategoryRequest представляет запрос на создание или обновление категории
type CategoryRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Image        string `json:"image" binding:"omitempty,max=255"`
	TotalTimeSec int    `json:"total_time_sec" binding:"omitempty,min=0"`
}

// QuestionRequest представляет запрос на создание или обновление вопроса
type QuestionRequest struct {
	Text        string   `json:"text" binding:"required,min=3,max=1000"`
	Options     []string `json:"options" binding:"required,min=2,max=6"`
	Answer      string   `json:"answer" binding:"required"`
	Explanation string   `json:"explanation" binding:"omitempty,max=1000"`
	PointValue  int      `json:"point_value" binding:"omitempty,min=0"`
}

func (r *QuestionRequest) toInput() service.QuestionInput {
	points := r.PointValue
	if points == 0 {
		points = 10
	}
	return service.QuestionInput{
		Text:        r.Text,
		Options:     r.Options,
		Answer:      r.Answer,
		Explanation: r.Explanation,
		PointValue:  points,
	}
}

// BatchQuestionsRequest представляет запрос на пакетное создание вопросов
type BatchQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// SetActiveRequest представляет запрос на включение/выключение вопроса
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// JokeRequest представляет запрос на создание шутки
type JokeRequest struct {
	Text     string `json:"text" binding:"required,min=3,max=1000"`
	ImageURL string `json:"image_url" binding:"omitempty,max=255"`
}

// PlanRequest представляет запрос на создание или обновление тарифного плана
type PlanRequest struct {
	Name              string `json:"name" binding:"required,min=2,max=50"`
	PriceCents        int    `json:"price_cents" binding:"omitempty,min=0"`
	DurationDays      int    `json:"duration_days" binding:"omitempty,min=0"`
	AllowedCategories []uint `json:"allowed_categories"`
}

// SubscribeRequest представляет запрос на подключение тарифа
type SubscribeRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// --- Категории ---

// ListCategories возвращает все категории
func (h *QuizHandler) ListCategories(c *gin.Context) {
	categories, err := h.quizService.ListCategories()
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory возвращает одну категорию
func (h *QuizHandler) GetCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	category, err := h.quizService.GetCategory(categoryID)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory создает категорию
func (h *QuizHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.quizService.CreateCategory(req.Name, req.Image, req.TotalTimeSec)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory обновляет категорию
func (h *QuizHandler) UpdateCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.quizService.UpdateCategory(categoryID, req.Name, req.Image, req.TotalTimeSec)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory удаляет категорию
func (h *QuizHandler) DeleteCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	if err := h.quizService.DeleteCategory(categoryID); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// --- Вопросы ---

// CreateQuestion создает вопрос в категории
func (h *QuizHandler) CreateQuestion(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.CreateQuestion(categoryID, req.toInput())
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// CreateQuestions создает пакет вопросов в категории
func (h *QuizHandler) CreateQuestions(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	var req BatchQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		inputs = append(inputs, q.toInput())
	}

	questions, err := h.quizService.CreateQuestions(categoryID, inputs)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(questions), "questions": questions})
}

// ImportQuestions загружает вопросы категории из XLSX-файла (multipart поле "file")
func (h *QuizHandler) ImportQuestions(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required (multipart field \"file\")"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open uploaded file"})
		return
	}
	defer file.Close()

	report, err := h.quizService.ImportQuestionsXLSX(categoryID, file)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	log.Printf("[QuizHandler] Импорт вопросов в категорию %d: создано %d", categoryID, report.Created)
	c.JSON(http.StatusCreated, report)
}

// UpdateQuestion обновляет вопрос
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.UpdateQuestion(questionID, req.toInput())
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SetQuestionActive включает или выключает вопрос
func (h *QuizHandler) SetQuestionActive(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.SetQuestionActive(questionID, *req.IsActive); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question updated"})
}

// DeleteQuestion удаляет вопрос
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.quizService.DeleteQuestion(questionID); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// --- Шутки ---

// CreateJoke добавляет бонусную шутку
func (h *QuizHandler) CreateJoke(c *gin.Context) {
	var req JokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joke, err := h.quizService.CreateJoke(req.Text, req.ImageURL)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, joke)
}

// ListJokes возвращает все шутки
func (h *QuizHandler) ListJokes(c *gin.Context) {
	jokes, err := h.quizService.ListJokes()
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jokes": jokes})
}

// DeleteJoke удаляет шутку
func (h *QuizHandler) DeleteJoke(c *gin.Context) {
	jokeID := c.MustGet("jokeID").(uint)

	if err := h.quizService.DeleteJoke(jokeID); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joke deleted"})
}

// --- Тарифные планы и подписки ---

// ListPlans возвращает все тарифные планы (публично)
func (h *QuizHandler) ListPlans(c *gin.Context) {
	plans, err := h.quizService.ListPlans()
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreatePlan создает тарифный план
func (h *QuizHandler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.quizService.CreatePlan(service.PlanInput{
		Name:              req.Name,
		PriceCents:        req.PriceCents,
		DurationDays:      req.DurationDays,
		AllowedCategories: req.AllowedCategories,
	})
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// UpdatePlan обновляет тарифный план
func (h *QuizHandler) UpdatePlan(c *gin.Context) {
	planID := c.MustGet("planID").(uint)

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.quizService.UpdatePlan(planID, service.PlanInput{
		Name:              req.Name,
		PriceCents:        req.PriceCents,
		DurationDays:      req.DurationDays,
		AllowedCategories: req.AllowedCategories,
	})
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeletePlan удаляет тарифный план
func (h *QuizHandler) DeletePlan(c *gin.Context) {
	planID := c.MustGet("planID").(uint)

	if err := h.quizService.DeletePlan(planID); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Plan deleted"})
}

// Subscribe подключает текущему пользователю тарифный план
func (h *QuizHandler) Subscribe(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accessService.Subscribe(userID, req.PlanID)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Unsubscribe отключает подписку текущего пользователя
func (h *QuizHandler) Unsubscribe(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	user, err := h.accessService.Unsubscribe(userID)
	if err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// handleContentError преобразует ошибки сервисов в HTTP-статусы
func (h *QuizHandler) handleContentError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
