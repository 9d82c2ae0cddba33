package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

func newStatsServiceForTest() (*StatsService, *MockAttemptRepo, *MockUserRepo, *MockLeaderboardRepo, *MockCategoryRepo) {
	attemptRepo := new(MockAttemptRepo)
	userRepo := new(MockUserRepo)
	leaderboard := new(MockLeaderboardRepo)
	categoryRepo := new(MockCategoryRepo)
	access := NewAccessService(userRepo, new(MockPlanRepo), categoryRepo, "PREMIUM")
	return NewStatsService(attemptRepo, userRepo, leaderboard, access), attemptRepo, userRepo, leaderboard, categoryRepo
}

func TestGetStanding_FailsClosedWhenBackendDown(t *testing.T) {
	svc, _, _, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(fmt.Errorf("%w: redis down", apperrors.ErrUnavailable))

	_, err := svc.GetStanding(7)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable, "Устаревший ранг не отдается, бэкенд недоступен — запрос отклонен")

	leaderboard.AssertNotCalled(t, "Rank", mock.Anything)
}

func TestGetStanding_FirstPlace(t *testing.T) {
	svc, _, _, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(nil)
	leaderboard.On("Rank", uint(7)).Return(int64(0), nil)
	leaderboard.On("ScoreOf", uint(7)).Return(150, nil)
	leaderboard.On("Count").Return(int64(40), nil)

	standing, err := svc.GetStanding(7)
	require.NoError(t, err)

	assert.Equal(t, int64(1), standing.Rank, "Ранг наружу 1-based")
	assert.Equal(t, 150, standing.Score)
	assert.Equal(t, int64(40), standing.TotalPlayers)
	assert.Contains(t, standing.Message, "champion")
}

func TestGetLeaderboardPage_EnrichesEntriesWithUsers(t *testing.T) {
	svc, _, userRepo, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(nil)
	leaderboard.On("Count").Return(int64(3), nil)
	entries := []entity.LeaderboardEntry{
		{UserID: 2, Score: 30},
		{UserID: 1, Score: 20},
		{UserID: 3, Score: 10},
	}
	leaderboard.On("RangeByRank", int64(0), int64(9)).Return(entries, nil)
	leaderboard.On("RangeByRank", int64(0), int64(2)).Return(entries, nil)

	userRepo.On("GetByIDs", []uint{2, 1, 3}).Return([]entity.User{
		{ID: 1, FullName: "Alice"},
		{ID: 2, FullName: "Bob"},
		// ID 3 удален: строка остается с пустым именем
	}, nil)

	page, err := svc.GetLeaderboardPage(0, 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Entries, 3)
	assert.Equal(t, int64(1), page.Entries[0].Rank)
	assert.Equal(t, "Bob", page.Entries[0].FullName)
	assert.Equal(t, "Alice", page.Entries[1].FullName)
	assert.Equal(t, "", page.Entries[2].FullName, "Удаленный пользователь остается в выдаче без профиля")
	assert.Equal(t, int64(3), page.TotalPlayers)
	assert.Len(t, page.Top3, 3)
	assert.Nil(t, page.Caller, "Анонимный запрос не получает позицию")
}

func TestGetLeaderboardPage_CapsPageSize(t *testing.T) {
	svc, _, userRepo, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(nil)
	leaderboard.On("Count").Return(int64(0), nil)
	// Запрошенные 500 строк обрезаются до максимума
	leaderboard.On("RangeByRank", int64(0), int64(49)).Return([]entity.LeaderboardEntry{}, nil)
	leaderboard.On("RangeByRank", int64(0), int64(2)).Return([]entity.LeaderboardEntry{}, nil)
	userRepo.On("GetByIDs", mock.Anything).Return([]entity.User{}, nil)

	page, err := svc.GetLeaderboardPage(0, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, page.PageSize)

	leaderboard.AssertExpectations(t)
}

func TestGetLeaderboardPage_IncludesCallerStanding(t *testing.T) {
	svc, _, userRepo, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(nil)
	leaderboard.On("Count").Return(int64(100), nil)
	leaderboard.On("RangeByRank", mock.Anything, mock.Anything).Return([]entity.LeaderboardEntry{}, nil)
	userRepo.On("GetByIDs", mock.Anything).Return([]entity.User{}, nil)

	leaderboard.On("Rank", uint(7)).Return(int64(41), nil)
	leaderboard.On("ScoreOf", uint(7)).Return(55, nil)

	page, err := svc.GetLeaderboardPage(7, 1, 10)
	require.NoError(t, err)

	require.NotNil(t, page.Caller)
	assert.Equal(t, int64(42), page.Caller.Rank)
	assert.Equal(t, 55, page.Caller.Score)
}

func TestGetLeaderboardPage_CallerNotRankedYet(t *testing.T) {
	svc, _, userRepo, leaderboard, _ := newStatsServiceForTest()

	leaderboard.On("Available").Return(nil)
	leaderboard.On("Count").Return(int64(10), nil)
	leaderboard.On("RangeByRank", mock.Anything, mock.Anything).Return([]entity.LeaderboardEntry{}, nil)
	userRepo.On("GetByIDs", mock.Anything).Return([]entity.User{}, nil)

	leaderboard.On("Rank", uint(7)).Return(int64(0), apperrors.ErrNotFound)

	page, err := svc.GetLeaderboardPage(7, 1, 10)
	require.NoError(t, err, "Пользователь без очков получает страницу без своей позиции")
	assert.Nil(t, page.Caller)
}

func TestGetOverview_StandingIsBestEffort(t *testing.T) {
	svc, attemptRepo, userRepo, leaderboard, categoryRepo := newStatsServiceForTest()

	stats := &entity.OverviewStats{QuizzesPlayed: 3, TotalScore: 70, BestScore: 40}
	attemptRepo.On("OverviewStats", uint(7)).Return(stats, nil)
	attemptRepo.On("DistinctCategoryCount", uint(7)).Return(int64(3), nil)
	userRepo.On("GetByID", uint(7)).Return(&entity.User{ID: 7, Role: "admin"}, nil)
	categoryRepo.On("Count").Return(int64(5), nil)
	leaderboard.On("Rank", uint(7)).Return(int64(0), fmt.Errorf("%w: redis down", apperrors.ErrUnavailable))

	overview, err := svc.GetOverview(7)
	require.NoError(t, err, "Сводка отдается даже при недоступном лидерборде")

	assert.Equal(t, int64(70), overview.Stats.TotalScore)
	assert.Equal(t, int64(3), overview.CategoriesPlayed)
	assert.Equal(t, int64(5), overview.CategoriesAvailable)
	assert.Nil(t, overview.Standing)
}

func TestGetAttemptSummary_OwnershipEnforced(t *testing.T) {
	svc, attemptRepo, _, _, _ := newStatsServiceForTest()

	attempt := &entity.Attempt{ID: 9, UserID: 8, TotalQuestions: 2}
	attemptRepo.On("GetByID", uint(9)).Return(attempt, nil)

	_, err := svc.GetAttemptSummary(7, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Чужая попытка недоступна")
}

func TestGetAttemptSummary_Owner(t *testing.T) {
	svc, attemptRepo, _, _, _ := newStatsServiceForTest()

	attempt := &entity.Attempt{
		ID:     9,
		UserID: 7,
		Answers: entity.AnswerList{
			{QuestionID: 1, IsCorrect: true, Points: 10},
			{QuestionID: 2, IsCorrect: false, Points: 0},
			{QuestionID: 3, IsCorrect: true, Points: 10},
		},
		TotalScore:     20,
		CorrectCount:   2,
		TotalQuestions: 3,
	}
	attemptRepo.On("GetByID", uint(9)).Return(attempt, nil)

	summary, err := svc.GetAttemptSummary(7, 9)
	require.NoError(t, err)

	assert.True(t, summary.IsComplete)
	assert.Equal(t, 67, summary.AccuracyPercent, "2 из 3 округляется до 67")
}

func TestGetRecentAttempts_CapsLimit(t *testing.T) {
	svc, attemptRepo, _, _, _ := newStatsServiceForTest()

	attemptRepo.On("RecentAttempts", uint(7), 50).Return([]entity.Attempt{}, nil)

	_, err := svc.GetRecentAttempts(7, 1000)
	require.NoError(t, err)

	attemptRepo.AssertExpectations(t)
}
