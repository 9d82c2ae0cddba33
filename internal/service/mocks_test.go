package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисов.
// Все моки собраны здесь, чтобы не плодить переименованные копии по файлам.
// ============================================================================

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetActiveByCategory(categoryID uint) ([]entity.Question, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountActiveByCategory(categoryID uint) (int, error) {
	args := m.Called(categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepo) ExistsByTextAndCategory(text string, categoryID uint) (bool, error) {
	args := m.Called(text, categoryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) SetActive(id uint, active bool) error {
	args := m.Called(id, active)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCategoryRepo реализует repository.CategoryRepository
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepo) GetByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepo) List() ([]entity.Category, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepo) Update(category *entity.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) AppendAnswer(userID, categoryID uint, entry entity.AnswerEntry, totalQuestions int) (*entity.Attempt, bool, error) {
	args := m.Called(userID, categoryID, entry, totalQuestions)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Attempt), args.Bool(1), args.Error(2)
}

func (m *MockAttemptRepo) GetByID(id uint) (*entity.Attempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) GetByUserAndCategory(userID, categoryID uint) (*entity.Attempt, error) {
	args := m.Called(userID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) SumScoreByUser(userID uint) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepo) OverviewStats(userID uint) (*entity.OverviewStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OverviewStats), args.Error(1)
}

func (m *MockAttemptRepo) CategoryStats(userID uint) ([]entity.CategoryStats, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CategoryStats), args.Error(1)
}

func (m *MockAttemptRepo) RecentAttempts(userID uint, limit int) ([]entity.Attempt, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) DistinctCategoryCount(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepo) TotalsByUser() (map[uint]int, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int), args.Error(1)
}

// MockJokeRepo реализует repository.JokeRepository
type MockJokeRepo struct {
	mock.Mock
}

func (m *MockJokeRepo) Create(joke *entity.Joke) error {
	args := m.Called(joke)
	return args.Error(0)
}

func (m *MockJokeRepo) GetRandom() (*entity.Joke, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Joke), args.Error(1)
}

func (m *MockJokeRepo) List() ([]entity.Joke, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Joke), args.Error(1)
}

func (m *MockJokeRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockLeaderboardRepo реализует repository.LeaderboardRepository
type MockLeaderboardRepo struct {
	mock.Mock
}

func (m *MockLeaderboardRepo) Upsert(userID uint, score int) error {
	args := m.Called(userID, score)
	return args.Error(0)
}

func (m *MockLeaderboardRepo) Rank(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboardRepo) ScoreOf(userID uint) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLeaderboardRepo) RangeByRank(start, stop int64) ([]entity.LeaderboardEntry, error) {
	args := m.Called(start, stop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboardRepo) Available() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockLeaderboardRepo) Remove(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDs(ids []uint) ([]entity.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockPlanRepo реализует repository.SubscriptionPlanRepository
type MockPlanRepo struct {
	mock.Mock
}

func (m *MockPlanRepo) Create(plan *entity.SubscriptionPlan) error {
	args := m.Called(plan)
	return args.Error(0)
}

func (m *MockPlanRepo) GetByID(id uint) (*entity.SubscriptionPlan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepo) List() ([]entity.SubscriptionPlan, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SubscriptionPlan), args.Error(1)
}

func (m *MockPlanRepo) Update(plan *entity.SubscriptionPlan) error {
	args := m.Called(plan)
	return args.Error(0)
}

func (m *MockPlanRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockPasswordResetRepo реализует repository.PasswordResetRepository
type MockPasswordResetRepo struct {
	mock.Mock
}

func (m *MockPasswordResetRepo) Create(code *entity.PasswordResetCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockPasswordResetRepo) GetLatestByUser(userID uint) (*entity.PasswordResetCode, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PasswordResetCode), args.Error(1)
}

func (m *MockPasswordResetRepo) MarkUsed(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPasswordResetRepo) DeleteExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPasswordResetCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}
