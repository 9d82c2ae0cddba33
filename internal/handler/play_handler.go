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

// PlayHandler обрабатывает игровые запросы: старт категории и прием ответов
type PlayHandler struct {
	playService *service.PlayService
}

// NewPlayHandler создает новый игровой обработчик
func NewPlayHandler(playService *service.PlayService) *PlayHandler {
	return &PlayHandler{playService: playService}
}

// SubmitAnswerRequest представляет запрос на прием одного ответа
type SubmitAnswerRequest struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedOption string `json:"selected_option" binding:"required"`
}

// StartQuiz возвращает набор вопросов категории без правильных ответов
func (h *PlayHandler) StartQuiz(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	payload, err := h.playService.StartQuiz(categoryID)
	if err != nil {
		h.handlePlayError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// SubmitAnswer принимает один ответ на вопрос категории
func (h *PlayHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	categoryID := c.MustGet("categoryID").(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.playService.SubmitAnswer(userID, categoryID, req.QuestionID, req.SelectedOption)
	if err != nil {
		h.handlePlayError(c, err)
		return
	}

	// Ответ записан, но суммарные очки не дошли до лидерборда:
	// сверка догонит, клиенту достаточно предупреждения
	if !result.LeaderboardUpdated {
		c.Header("X-Leaderboard-Stale", "true")
	}

	c.JSON(http.StatusOK, dto.NewSubmitAnswerResponse(result))
}

// handlePlayError преобразует ошибки сервисов в HTTP-статусы
func (h *PlayHandler) handlePlayError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in PlayHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
