package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
	"github.com/yourusername/quizplay-api/pkg/auth"
)

// AuthResult - пользователь и выданный токен
type AuthResult struct {
	User  *entity.User
	Token string
}

// AuthService реализует регистрацию, вход и сброс пароля через OTP-код
type AuthService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	emailSvc  EmailService
	jwtSvc    *auth.JWTService
	otpExpiry time.Duration
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	emailSvc EmailService,
	jwtSvc *auth.JWTService,
	otpExpiry time.Duration,
) *AuthService {
	if otpExpiry <= 0 {
		otpExpiry = 10 * time.Minute
	}
	return &AuthService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		emailSvc:  emailSvc,
		jwtSvc:    jwtSvc,
		otpExpiry: otpExpiry,
	}
}

// Register создает нового пользователя и сразу выдает токен
func (s *AuthService) Register(fullName, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", apperrors.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		FullName: fullName,
		Email:    email,
		Password: password, // хешируется в BeforeSave
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учетные данные и выдает токен.
// Несуществующий email и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile возвращает профиль пользователя
func (s *AuthService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет имя и аватар пользователя
func (s *AuthService) UpdateProfile(userID uint, fullName, avatar string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if fullName != "" {
		user.FullName = fullName
	}
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrUnauthorized)
	}

	user.Password = newPassword
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// RequestPasswordReset генерирует OTP-код и отправляет его на почту.
// Для несуществующего email возвращает успех, чтобы не раскрывать
// наличие аккаунта.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Запрошен сброс пароля для неизвестного email")
			return nil
		}
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	reset := &entity.PasswordResetCode{
		UserID:    user.ID,
		CodeHash:  entity.HashResetCode(code),
		ExpiresAt: time.Now().Add(s.otpExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.emailSvc.SendPasswordResetCode(ctx, user.Email, code, uuid.NewString()); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// validResetCode находит последний код пользователя и проверяет его,
// не помечая использованным
func (s *AuthService) validResetCode(email, code string) (*entity.User, *entity.PasswordResetCode, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid reset code", apperrors.ErrValidation)
		}
		return nil, nil, err
	}

	reset, err := s.resetRepo.GetLatestByUser(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: invalid reset code", apperrors.ErrValidation)
		}
		return nil, nil, err
	}

	if reset.IsUsed() {
		return nil, nil, fmt.Errorf("%w: reset code has already been used", apperrors.ErrValidation)
	}
	if reset.IsExpired(time.Now()) {
		return nil, nil, apperrors.ErrExpiredCode
	}
	if !reset.Matches(code) {
		return nil, nil, fmt.Errorf("%w: invalid reset code", apperrors.ErrValidation)
	}
	return user, reset, nil
}

// VerifyResetCode проверяет OTP-код, не расходуя его.
// Дает клиенту подтвердить код до экрана нового пароля.
func (s *AuthService) VerifyResetCode(email, code string) error {
	_, _, err := s.validResetCode(email, code)
	return err
}

// ResetPassword проверяет OTP-код и устанавливает новый пароль.
// Код одноразовый: успешный сброс помечает его использованным.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", apperrors.ErrValidation)
	}

	user, reset, err := s.validResetCode(email, code)
	if err != nil {
		return err
	}

	if err := s.resetRepo.MarkUsed(reset.ID); err != nil {
		return fmt.Errorf("failed to mark reset code used: %w", err)
	}

	user.Password = newPassword
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// CleanupExpiredResetCodes удаляет протухшие OTP-коды, вызывается фоново
func (s *AuthService) CleanupExpiredResetCodes() {
	deleted, err := s.resetRepo.DeleteExpired()
	if err != nil {
		log.Printf("[AuthService] Не удалось удалить протухшие коды сброса: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[AuthService] Удалено протухших кодов сброса: %d", deleted)
	}
}

// generateOTPCode возвращает криптослучайный 6-значный код
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
