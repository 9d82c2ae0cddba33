package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// newTestLeaderboard поднимает miniredis и репозиторий поверх него
func newTestLeaderboard(t *testing.T) (*LeaderboardRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis должен запуститься")
	t.Cleanup(mr.Close)

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })

	repo, err := NewLeaderboardRepo(client)
	require.NoError(t, err)
	return repo, mr
}

func TestLeaderboardRepo_UpsertAndScoreOf(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 10))

	score, err := repo.ScoreOf(1)
	require.NoError(t, err)
	assert.Equal(t, 10, score)

	// Upsert устанавливает абсолютное значение, а не дельту
	require.NoError(t, repo.Upsert(1, 25))
	score, err = repo.ScoreOf(1)
	require.NoError(t, err)
	assert.Equal(t, 25, score)
}

func TestLeaderboardRepo_ScoreOf_Absent(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	_, err := repo.ScoreOf(99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Отсутствующий пользователь — ErrNotFound")
}

func TestLeaderboardRepo_Rank_Descending(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 30))
	require.NoError(t, repo.Upsert(2, 50))
	require.NoError(t, repo.Upsert(3, 10))

	// Ранги 0-based по убыванию очков
	rank, err := repo.Rank(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rank)

	rank, err = repo.Rank(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)

	rank, err = repo.Rank(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank)

	_, err = repo.Rank(99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLeaderboardRepo_Rank_TieBreakByUserID(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	// Два пользователя с равными очками: политика (score desc, userID asc)
	require.NoError(t, repo.Upsert(1, 30))
	require.NoError(t, repo.Upsert(2, 30))

	rank1, err := repo.Rank(1)
	require.NoError(t, err)
	rank2, err := repo.Rank(2)
	require.NoError(t, err)

	assert.Equal(t, int64(0), rank1, "При ничьей меньший userID выше")
	assert.Equal(t, int64(1), rank2)
}

func TestLeaderboardRepo_RangeByRank_TopK(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 30))
	require.NoError(t, repo.Upsert(2, 50))
	require.NoError(t, repo.Upsert(3, 10))
	require.NoError(t, repo.Upsert(4, 40))

	entries, err := repo.RangeByRank(0, 2)
	require.NoError(t, err)

	assert.Equal(t, []entity.LeaderboardEntry{
		{UserID: 2, Score: 50},
		{UserID: 4, Score: 40},
		{UserID: 1, Score: 30},
	}, entries, "Диапазон должен вернуть k лучших по убыванию очков")
}

func TestLeaderboardRepo_RangeByRank_TiesDeterministic(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(5, 30))
	require.NoError(t, repo.Upsert(2, 30))
	require.NoError(t, repo.Upsert(9, 30))
	require.NoError(t, repo.Upsert(1, 40))

	entries, err := repo.RangeByRank(0, 3)
	require.NoError(t, err)

	assert.Equal(t, []entity.LeaderboardEntry{
		{UserID: 1, Score: 40},
		{UserID: 2, Score: 30},
		{UserID: 5, Score: 30},
		{UserID: 9, Score: 30},
	}, entries, "Равные очки упорядочены по возрастанию userID")
}

func TestLeaderboardRepo_RangeByRank_PageSplitsTieGroup(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	// Группа равных очков режется границей страницы — порядок остается
	// детерминированным и сквозным между страницами
	for id := uint(1); id <= 5; id++ {
		require.NoError(t, repo.Upsert(id, 30))
	}

	page1, err := repo.RangeByRank(0, 1)
	require.NoError(t, err)
	page2, err := repo.RangeByRank(2, 4)
	require.NoError(t, err)

	assert.Equal(t, []entity.LeaderboardEntry{
		{UserID: 1, Score: 30},
		{UserID: 2, Score: 30},
	}, page1)
	assert.Equal(t, []entity.LeaderboardEntry{
		{UserID: 3, Score: 30},
		{UserID: 4, Score: 30},
		{UserID: 5, Score: 30},
	}, page2)
}

func TestLeaderboardRepo_RangeByRank_CappedToAvailable(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 10))

	entries, err := repo.RangeByRank(0, 49)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "Диапазон обрезается по доступным записям")

	entries, err = repo.RangeByRank(5, 9)
	require.NoError(t, err)
	assert.Empty(t, entries, "Диапазон за пределами индекса пуст")
}

func TestLeaderboardRepo_RankScoreConsistency(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 100))
	require.NoError(t, repo.Upsert(2, 50))

	// scoreOf(A) > scoreOf(B) => rank(A) < rank(B)
	scoreA, err := repo.ScoreOf(1)
	require.NoError(t, err)
	scoreB, err := repo.ScoreOf(2)
	require.NoError(t, err)
	require.Greater(t, scoreA, scoreB)

	rankA, err := repo.Rank(1)
	require.NoError(t, err)
	rankB, err := repo.Rank(2)
	require.NoError(t, err)
	assert.Less(t, rankA, rankB)
}

func TestLeaderboardRepo_AvailableAfterBackendDown(t *testing.T) {
	repo, mr := newTestLeaderboard(t)

	require.NoError(t, repo.Available())

	mr.Close()

	err := repo.Available()
	assert.ErrorIs(t, err, apperrors.ErrUnavailable, "Недоступный бэкенд — типизированный отказ")
}

func TestLeaderboardRepo_Remove(t *testing.T) {
	repo, _ := newTestLeaderboard(t)

	require.NoError(t, repo.Upsert(1, 10))
	require.NoError(t, repo.Remove(1))

	_, err := repo.ScoreOf(1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
