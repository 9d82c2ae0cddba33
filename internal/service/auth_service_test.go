package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
	"github.com/yourusername/quizplay-api/pkg/auth"
)

func newAuthServiceForTest() (*AuthService, *MockUserRepo, *MockPasswordResetRepo, *MockEmailService) {
	userRepo := new(MockUserRepo)
	resetRepo := new(MockPasswordResetRepo)
	emailSvc := new(MockEmailService)

	jwtSvc, err := auth.NewJWTService("test-secret", 24)
	if err != nil {
		panic(err)
	}

	svc := NewAuthService(userRepo, resetRepo, emailSvc, jwtSvc, 10*time.Minute)
	return svc, userRepo, resetRepo, emailSvc
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	svc, userRepo, _, _ := newAuthServiceForTest()

	userRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "new@example.com" && u.Role == "user"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 7
	}).Return(nil)

	result, err := svc.Register("New User", "  New@Example.com ", "secret123")
	require.NoError(t, err)

	assert.Equal(t, uint(7), result.User.ID)
	assert.NotEmpty(t, result.Token, "Регистрация сразу выдает токен")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, userRepo, _, _ := newAuthServiceForTest()

	userRepo.On("GetByEmail", "taken@example.com").Return(&entity.User{ID: 1}, nil)

	_, err := svc.Register("User", "taken@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _, _ := newAuthServiceForTest()

	_, err := svc.Register("User", "u@example.com", "123")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, userRepo, _, _ := newAuthServiceForTest()

	user := &entity.User{ID: 7, Email: "u@example.com", Password: hashedPassword(t, "correct")}
	userRepo.On("GetByEmail", "u@example.com").Return(user, nil)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	_, wrongPass := svc.Login("u@example.com", "wrong")
	_, unknown := svc.Login("ghost@example.com", "whatever")

	assert.ErrorIs(t, wrongPass, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, unknown, apperrors.ErrUnauthorized)
	// Текст ошибок одинаков, наличие аккаунта не раскрывается
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLogin_Success(t *testing.T) {
	svc, userRepo, _, _ := newAuthServiceForTest()

	user := &entity.User{ID: 7, Email: "u@example.com", Role: "user", Password: hashedPassword(t, "correct")}
	userRepo.On("GetByEmail", "u@example.com").Return(user, nil)

	result, err := svc.Login("u@example.com", "correct")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, userRepo, resetRepo, emailSvc := newAuthServiceForTest()

	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err, "Неизвестный email не раскрывается ошибкой")

	resetRepo.AssertNotCalled(t, "Create", mock.Anything)
	emailSvc.AssertNotCalled(t, "SendPasswordResetCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_StoresHashAndSendsCode(t *testing.T) {
	svc, userRepo, resetRepo, emailSvc := newAuthServiceForTest()

	user := &entity.User{ID: 7, Email: "u@example.com"}
	userRepo.On("GetByEmail", "u@example.com").Return(user, nil)

	var storedHash string
	resetRepo.On("Create", mock.MatchedBy(func(c *entity.PasswordResetCode) bool {
		return c.UserID == 7 && len(c.CodeHash) == 64 && c.ExpiresAt.After(time.Now())
	})).Run(func(args mock.Arguments) {
		storedHash = args.Get(0).(*entity.PasswordResetCode).CodeHash
	}).Return(nil)

	var sentCode string
	emailSvc.On("SendPasswordResetCode", mock.Anything, "u@example.com", mock.MatchedBy(func(code string) bool {
		return len(code) == 6
	}), mock.Anything).Run(func(args mock.Arguments) {
		sentCode = args.Get(2).(string)
	}).Return(nil)

	err := svc.RequestPasswordReset(context.Background(), "u@example.com")
	require.NoError(t, err)

	// В БД лежит хеш именно того кода, что ушел на почту
	assert.Equal(t, entity.HashResetCode(sentCode), storedHash)
}

func TestVerifyResetCode_DoesNotConsumeCode(t *testing.T) {
	svc, userRepo, resetRepo, _ := newAuthServiceForTest()

	userRepo.On("GetByEmail", "u@example.com").Return(&entity.User{ID: 7}, nil)
	resetRepo.On("GetLatestByUser", uint(7)).Return(&entity.PasswordResetCode{
		ID:        3,
		UserID:    7,
		CodeHash:  entity.HashResetCode("123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil)

	require.NoError(t, svc.VerifyResetCode("u@example.com", "123456"))

	err := svc.VerifyResetCode("u@example.com", "654321")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Проверка кода не помечает его использованным
	resetRepo.AssertNotCalled(t, "MarkUsed", mock.Anything)
}

func TestResetPassword_Success(t *testing.T) {
	svc, userRepo, resetRepo, _ := newAuthServiceForTest()

	user := &entity.User{ID: 7, Email: "u@example.com"}
	userRepo.On("GetByEmail", "u@example.com").Return(user, nil)

	reset := &entity.PasswordResetCode{
		ID:        3,
		UserID:    7,
		CodeHash:  entity.HashResetCode("123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	resetRepo.On("GetLatestByUser", uint(7)).Return(reset, nil)
	resetRepo.On("MarkUsed", uint(3)).Return(nil)
	userRepo.On("Update", mock.MatchedBy(func(u *entity.User) bool {
		return u.Password == "newsecret"
	})).Return(nil)

	err := svc.ResetPassword("u@example.com", "123456", "newsecret")
	require.NoError(t, err)

	resetRepo.AssertExpectations(t)
}

func TestResetPassword_WrongCode(t *testing.T) {
	svc, userRepo, resetRepo, _ := newAuthServiceForTest()

	userRepo.On("GetByEmail", "u@example.com").Return(&entity.User{ID: 7}, nil)
	resetRepo.On("GetLatestByUser", uint(7)).Return(&entity.PasswordResetCode{
		ID:        3,
		UserID:    7,
		CodeHash:  entity.HashResetCode("123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil)

	err := svc.ResetPassword("u@example.com", "654321", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	resetRepo.AssertNotCalled(t, "MarkUsed", mock.Anything)
}

func TestResetPassword_ExpiredCode(t *testing.T) {
	svc, userRepo, resetRepo, _ := newAuthServiceForTest()

	userRepo.On("GetByEmail", "u@example.com").Return(&entity.User{ID: 7}, nil)
	resetRepo.On("GetLatestByUser", uint(7)).Return(&entity.PasswordResetCode{
		ID:        3,
		UserID:    7,
		CodeHash:  entity.HashResetCode("123456"),
		ExpiresAt: time.Now().Add(-1 * time.Minute),
	}, nil)

	err := svc.ResetPassword("u@example.com", "123456", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrExpiredCode)
}

func TestResetPassword_UsedCode(t *testing.T) {
	svc, userRepo, resetRepo, _ := newAuthServiceForTest()

	usedAt := time.Now().Add(-1 * time.Minute)
	userRepo.On("GetByEmail", "u@example.com").Return(&entity.User{ID: 7}, nil)
	resetRepo.On("GetLatestByUser", uint(7)).Return(&entity.PasswordResetCode{
		ID:        3,
		UserID:    7,
		CodeHash:  entity.HashResetCode("123456"),
		ExpiresAt: time.Now().Add(5 * time.Minute),
		UsedAt:    &usedAt,
	}, nil)

	err := svc.ResetPassword("u@example.com", "123456", "newsecret")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Код одноразовый")
}
