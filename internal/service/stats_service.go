package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	"github.com/yourusername/quizplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// Границы выдачи лидерборда и истории попыток
const (
	maxLeaderboardPageSize = 50
	defaultPageSize        = 10
	maxRecentAttempts      = 50
)

// LeaderboardRow - одна строка лидерборда, обогащенная профилем пользователя
type LeaderboardRow struct {
	Rank     int64  `json:"rank"`
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
	Score    int    `json:"score"`
}

// LeaderboardStanding - позиция одного пользователя в лидерборде
type LeaderboardStanding struct {
	Rank         int64  `json:"rank"`
	Score        int    `json:"score"`
	TotalPlayers int64  `json:"total_players"`
	TopPercent   int    `json:"top_percent"`
	Message      string `json:"message"`
}

// LeaderboardPage - страница лидерборда с топ-3 и позицией запросившего
type LeaderboardPage struct {
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	TotalPlayers int64                `json:"total_players"`
	Top3         []LeaderboardRow     `json:"top3"`
	Entries      []LeaderboardRow     `json:"entries"`
	Caller       *LeaderboardStanding `json:"caller,omitempty"`
}

// UserOverview - сводка пользователя: агрегаты попыток плюс позиция в лидерборде
type UserOverview struct {
	Stats               *entity.OverviewStats `json:"stats"`
	CategoriesPlayed    int64                 `json:"categories_played"`
	CategoriesAvailable int64                 `json:"categories_available"`
	Standing            *LeaderboardStanding  `json:"standing,omitempty"`
}

// AttemptSummary - развернутая сводка одной попытки
type AttemptSummary struct {
	Attempt         *entity.Attempt `json:"attempt"`
	AccuracyPercent int             `json:"accuracy_percent"`
	IsComplete      bool            `json:"is_complete"`
}

// StatsService отдает read-проекции: агрегаты попыток и выдачу лидерборда
type StatsService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	leaderboard repository.LeaderboardRepository
	access      *AccessService
}

// NewStatsService создает новый сервис статистики
func NewStatsService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	leaderboard repository.LeaderboardRepository,
	access *AccessService,
) *StatsService {
	return &StatsService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
		access:      access,
	}
}

// GetOverview возвращает сводку пользователя. Позиция в лидерборде
// best-effort: при недоступном бэкенде сводка отдается без нее.
func (s *StatsService) GetOverview(userID uint) (*UserOverview, error) {
	stats, err := s.attemptRepo.OverviewStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load overview stats: %w", err)
	}

	played, err := s.attemptRepo.DistinctCategoryCount(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count played categories: %w", err)
	}

	overview := &UserOverview{
		Stats:            stats,
		CategoriesPlayed: played,
	}

	available, err := s.access.AccessibleCategoryCount(userID)
	if err != nil {
		log.Printf("[StatsService] Не удалось определить доступные категории для пользователя %d: %v", userID, err)
	} else {
		overview.CategoriesAvailable = available
	}

	standing, err := s.standing(userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[StatsService] Позиция в лидерборде недоступна для пользователя %d: %v", userID, err)
		}
	} else {
		overview.Standing = standing
	}

	return overview, nil
}

// GetCategoryBreakdown возвращает агрегаты пользователя по категориям
func (s *StatsService) GetCategoryBreakdown(userID uint) ([]entity.CategoryStats, error) {
	return s.attemptRepo.CategoryStats(userID)
}

// GetStanding возвращает позицию пользователя в лидерборде.
// При недоступном бэкенде возвращает ошибку ErrUnavailable — устаревший
// ранг хуже честного отказа.
func (s *StatsService) GetStanding(userID uint) (*LeaderboardStanding, error) {
	if err := s.leaderboard.Available(); err != nil {
		return nil, err
	}
	return s.standing(userID)
}

func (s *StatsService) standing(userID uint) (*LeaderboardStanding, error) {
	rank, err := s.leaderboard.Rank(userID)
	if err != nil {
		return nil, err
	}
	score, err := s.leaderboard.ScoreOf(userID)
	if err != nil {
		return nil, err
	}
	total, err := s.leaderboard.Count()
	if err != nil {
		return nil, err
	}

	topPercent := 100
	if total > 0 {
		topPercent = int(float64(rank+1) / float64(total) * 100)
		if topPercent < 1 {
			topPercent = 1
		}
	}

	return &LeaderboardStanding{
		Rank:         rank + 1,
		Score:        score,
		TotalPlayers: total,
		TopPercent:   topPercent,
		Message:      motivationMessage(rank, topPercent),
	}, nil
}

// motivationMessage подбирает сообщение по позиции в лидерборде
func motivationMessage(rank int64, topPercent int) string {
	switch {
	case rank == 0:
		return "You are the champion! Defend your crown!"
	case rank < 3:
		return "You are on the podium! The top spot is within reach!"
	case topPercent <= 10:
		return fmt.Sprintf("Amazing! You are in the top %d%% of all players!", topPercent)
	case topPercent <= 50:
		return fmt.Sprintf("Great progress! You are ahead of %d%% of players!", 100-topPercent)
	default:
		return "Keep playing to climb the leaderboard!"
	}
}

// GetLeaderboardPage возвращает страницу лидерборда.
// page 1-based; pageSize ограничен сверху. Бэкенд проверяется заранее:
// страница либо целиком свежая, либо запрос отклонен.
func (s *StatsService) GetLeaderboardPage(callerID uint, page, pageSize int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxLeaderboardPageSize {
		pageSize = maxLeaderboardPageSize
	}

	if err := s.leaderboard.Available(); err != nil {
		return nil, err
	}

	total, err := s.leaderboard.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count leaderboard: %w", err)
	}

	start := int64(page-1) * int64(pageSize)
	stop := start + int64(pageSize) - 1

	entries, err := s.leaderboard.RangeByRank(start, stop)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard page: %w", err)
	}

	top3, err := s.leaderboard.RangeByRank(0, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard top: %w", err)
	}

	result := &LeaderboardPage{
		Page:         page,
		PageSize:     pageSize,
		TotalPlayers: total,
	}

	result.Entries, err = s.enrichRows(entries, start)
	if err != nil {
		return nil, err
	}
	result.Top3, err = s.enrichRows(top3, 0)
	if err != nil {
		return nil, err
	}

	if callerID != 0 {
		standing, err := s.standing(callerID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		result.Caller = standing
	}

	return result, nil
}

// enrichRows дополняет записи индекса именами и аватарами пользователей
func (s *StatsService) enrichRows(entries []entity.LeaderboardEntry, firstRank int64) ([]LeaderboardRow, error) {
	rows := make([]LeaderboardRow, 0, len(entries))
	if len(entries) == 0 {
		return rows, nil
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	users, err := s.userRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard users: %w", err)
	}
	byID := make(map[uint]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for i, e := range entries {
		row := LeaderboardRow{
			Rank:   firstRank + int64(i) + 1,
			UserID: e.UserID,
			Score:  e.Score,
		}
		// Удаленный пользователь мог остаться в индексе до сверки
		if u, ok := byID[e.UserID]; ok {
			row.FullName = u.FullName
			row.Avatar = u.Avatar
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetAttemptSummary возвращает сводку попытки с проверкой владения
func (s *StatsService) GetAttemptSummary(userID, attemptID uint) (*AttemptSummary, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt belongs to another user", apperrors.ErrForbidden)
	}

	return &AttemptSummary{
		Attempt:         attempt,
		AccuracyPercent: attempt.AccuracyPercent(),
		IsComplete:      attempt.IsComplete(),
	}, nil
}

// GetRecentAttempts возвращает последние попытки пользователя
func (s *StatsService) GetRecentAttempts(userID uint, limit int) ([]entity.Attempt, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxRecentAttempts {
		limit = maxRecentAttempts
	}
	return s.attemptRepo.RecentAttempts(userID, limit)
}
