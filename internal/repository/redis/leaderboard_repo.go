package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/quizplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizplay-api/internal/pkg/errors"
)

// leaderboardKey - ключ сортированного множества с суммарными очками
const leaderboardKey = "leaderboard:all"

// LeaderboardRepo реализует repository.LeaderboardRepository поверх Redis ZSET.
// ZSET дает O(log N) upsert/rank и O(log N + k) диапазоны.
//
// Члены множества — user ID с ведущими нулями фиксированной ширины, поэтому
// лексикографический порядок Redis внутри равных очков совпадает с числовым.
// Политика ничьих (score desc, userID asc) реализуется чтением группы равных
// очков в возрастающем лексикографическом порядке.
type LeaderboardRepo struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewLeaderboardRepo создает новый репозиторий лидерборда
func NewLeaderboardRepo(client redis.UniversalClient) (*LeaderboardRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for LeaderboardRepo")
	}
	return &LeaderboardRepo{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// member форматирует userID в член множества фиксированной ширины
func member(userID uint) string {
	return fmt.Sprintf("%012d", userID)
}

// parseMember разбирает член множества обратно в userID
func parseMember(m string) (uint, error) {
	id, err := strconv.ParseUint(m, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed leaderboard member %q: %w", m, err)
	}
	return uint(id), nil
}

// Upsert устанавливает абсолютное значение суммарных очков пользователя
func (r *LeaderboardRepo) Upsert(userID uint, score int) error {
	return r.client.ZAdd(r.ctx, leaderboardKey, &redis.Z{
		Score:  float64(score),
		Member: member(userID),
	}).Err()
}

// ScoreOf возвращает суммарные очки пользователя
func (r *LeaderboardRepo) ScoreOf(userID uint) (int, error) {
	score, err := r.client.ZScore(r.ctx, leaderboardKey, member(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperrors.ErrNotFound
		}
		return 0, err
	}
	return int(score), nil
}

// Rank возвращает 0-based ранг по убыванию очков с политикой ничьих
// (score desc, userID asc): ранг = число пользователей со строго большими
// очками + позиция среди равных по возрастанию ID.
func (r *LeaderboardRepo) Rank(userID uint) (int64, error) {
	score, err := r.ScoreOf(userID)
	if err != nil {
		return 0, err
	}

	greater, err := r.countStrictlyGreater(score)
	if err != nil {
		return 0, err
	}

	peers, err := r.membersWithScore(score)
	if err != nil {
		return 0, err
	}

	m := member(userID)
	for i, peer := range peers {
		if peer == m {
			return greater + int64(i), nil
		}
	}

	// Очки прочитаны, но члена нет среди равных — конкурентное удаление
	return 0, apperrors.ErrNotFound
}

// RangeByRank возвращает срез [start, stop] (включительно, 0-based) в порядке
// убывания очков. Группы равных очков переупорядочиваются по возрастанию ID,
// поэтому граничные группы перечитываются целиком по их значению очков.
func (r *LeaderboardRepo) RangeByRank(start, stop int64) ([]entity.LeaderboardEntry, error) {
	if start < 0 {
		start = 0
	}
	if stop < start {
		return nil, nil
	}

	raw, err := r.client.ZRevRangeWithScores(r.ctx, leaderboardKey, start, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headScore := int(raw[0].Score)
	total := len(raw)

	greater, err := r.countStrictlyGreater(headScore)
	if err != nil {
		return nil, err
	}
	// Смещение внутри головной группы равных очков
	offset := int(start - greater)

	// Различные значения очков в окне, по убыванию
	distinct := make([]int, 0, total)
	for _, z := range raw {
		s := int(z.Score)
		if len(distinct) == 0 || distinct[len(distinct)-1] != s {
			distinct = append(distinct, s)
		}
	}

	entries := make([]entity.LeaderboardEntry, 0, total)
	for _, s := range distinct {
		members, err := r.membersWithScore(s)
		if err != nil {
			return nil, err
		}
		if s == headScore && offset > 0 {
			if offset >= len(members) {
				continue
			}
			members = members[offset:]
		}
		for _, m := range members {
			if len(entries) == total {
				return entries, nil
			}
			userID, err := parseMember(m)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entity.LeaderboardEntry{UserID: userID, Score: s})
		}
	}

	return entries, nil
}

// Count возвращает количество пользователей в индексе
func (r *LeaderboardRepo) Count() (int64, error) {
	return r.client.ZCard(r.ctx, leaderboardKey).Result()
}

// Available проверяет доступность бэкенда лидерборда.
// Чтения лидерборда при недоступности отвечают отказом, а не нулями.
func (r *LeaderboardRepo) Available() error {
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: leaderboard backend unreachable: %v", apperrors.ErrUnavailable, err)
	}
	return nil
}

// Remove удаляет пользователя из индекса
func (r *LeaderboardRepo) Remove(userID uint) error {
	return r.client.ZRem(r.ctx, leaderboardKey, member(userID)).Err()
}

// countStrictlyGreater возвращает число пользователей со строго большими очками
func (r *LeaderboardRepo) countStrictlyGreater(score int) (int64, error) {
	return r.client.ZCount(r.ctx, leaderboardKey, "("+strconv.Itoa(score), "+inf").Result()
}

// membersWithScore возвращает членов с данными очками в возрастающем
// лексикографическом порядке (равен числовому из-за фиксированной ширины)
func (r *LeaderboardRepo) membersWithScore(score int) ([]string, error) {
	s := strconv.Itoa(score)
	return r.client.ZRangeByScore(r.ctx, leaderboardKey, &redis.ZRangeBy{
		Min: s,
		Max: s,
	}).Result()
}
