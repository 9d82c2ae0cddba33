package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
	"github.com/yourusername/quizplay-api/internal/service"
)

// AccessMiddleware закрывает игровые маршруты категорий проверкой тарифа.
// Должен применяться ПОСЛЕ RequireAuth и ExtractUintParam("categoryId", ...).
type AccessMiddleware struct {
	accessService *service.AccessService
}

// NewAccessMiddleware создает новый middleware проверки доступа к категориям
func NewAccessMiddleware(accessService *service.AccessService) *AccessMiddleware {
	return &AccessMiddleware{accessService: accessService}
}

// RequireCategoryAccess проверяет, что тариф пользователя включает категорию
func (m *AccessMiddleware) RequireCategoryAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		categoryID, exists := c.Get("categoryID")
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category is required"})
			c.Abort()
			return
		}

		err := m.accessService.CheckCategoryAccess(userID.(uint), categoryID.(uint))
		if err == nil {
			c.Next()
			return
		}

		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "subscription_required"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category access"})
		}
		c.Abort()
	}
}
