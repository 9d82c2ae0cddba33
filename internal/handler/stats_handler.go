package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizplay-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
	"github.com/yourusername/quizplay-api/internal/service"
)

// StatsHandler обрабатывает запросы статистики и лидерборда
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler создает новый обработчик статистики
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetOverview возвращает сводку текущего пользователя
func (h *StatsHandler) GetOverview(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	overview, err := h.statsService.GetOverview(userID)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetCategoryBreakdown возвращает агрегаты пользователя по категориям
func (h *StatsHandler) GetCategoryBreakdown(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	breakdown, err := h.statsService.GetCategoryBreakdown(userID)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": breakdown})
}

// GetStanding возвращает позицию текущего пользователя в лидерборде
func (h *StatsHandler) GetStanding(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	standing, err := h.statsService.GetStanding(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"ranked": false})
			return
		}
		h.handleStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, standing)
}

// GetLeaderboard возвращает страницу лидерборда.
// Параметры запроса: page (1-based), page_size.
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	// Маршрут защищен RequireAuth, но идентичность используется только
	// для блока caller
	userID := c.MustGet("user_id").(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := h.statsService.GetLeaderboardPage(userID, page, pageSize)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttempt возвращает сводку одной попытки текущего пользователя
func (h *StatsHandler) GetAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)

	summary, err := h.statsService.GetAttemptSummary(userID, attemptID)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempt":          dto.NewAttemptResponse(summary.Attempt),
		"accuracy_percent": summary.AccuracyPercent,
		"is_complete":      summary.IsComplete,
	})
}

// GetRecentAttempts возвращает последние попытки текущего пользователя
func (h *StatsHandler) GetRecentAttempts(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	attempts, err := h.statsService.GetRecentAttempts(userID, limit)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}

	responses := make([]*dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, dto.NewAttemptResponse(&attempts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": responses})
}

// handleStatsError преобразует ошибки сервисов в HTTP-статусы.
// ErrUnavailable отдается как 503: лидерборд недоступен, ранги не выдумываются.
func (h *StatsHandler) handleStatsError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Leaderboard is temporarily unavailable"})
	} else {
		log.Printf("ERROR: Internal server error in StatsHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
