package dto

import (
	"time"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для ответа клиенту
type UserResponse struct {
	ID                 uint       `json:"id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	Avatar             string     `json:"avatar,omitempty"`
	Role               string     `json:"role"`
	PlanID             *uint      `json:"plan_id,omitempty"`
	SubscriptionActive bool       `json:"subscription_active"`
	SubscribedAt       *time.Time `json:"subscribed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:                 user.ID,
		FullName:           user.FullName,
		Email:              user.Email,
		Avatar:             user.Avatar,
		Role:               user.Role,
		PlanID:             user.PlanID,
		SubscriptionActive: user.SubscriptionActive,
		SubscribedAt:       user.SubscribedAt,
		CreatedAt:          user.CreatedAt,
	}
}

// AuthResponse представляет ответ с пользователем и токеном доступа
type AuthResponse struct {
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
}

// NewAuthResponse создает DTO для результата аутентификации
func NewAuthResponse(user *entity.User, token string) *AuthResponse {
	return &AuthResponse{
		User:        NewUserResponse(user),
		AccessToken: token,
		TokenType:   "Bearer",
	}
}
