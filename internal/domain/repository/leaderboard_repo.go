package repository

import (
	"github.com/yourusername/quizplay-api/internal/domain/entity"
)

// LeaderboardRepository определяет методы ранжированного индекса суммарных очков.
// Индекс производный: его можно полностью перестроить из попыток,
// поэтому ни один метод не является источником истины.
//
// Политика ничьих фиксирована: (score по убыванию, userID по возрастанию) —
// два пользователя с равными очками упорядочены детерминированно.
type LeaderboardRepository interface {
	// Upsert устанавливает абсолютное (не дельту) значение суммарных очков
	Upsert(userID uint, score int) error

	// Rank возвращает 0-based ранг по убыванию очков.
	// Возвращает errors.ErrNotFound, если пользователя нет в индексе.
	Rank(userID uint) (int64, error)

	// ScoreOf возвращает суммарные очки пользователя.
	// Возвращает errors.ErrNotFound, если пользователя нет в индексе.
	ScoreOf(userID uint) (int, error)

	// RangeByRank возвращает срез [start, stop] (включительно, 0-based)
	// в порядке убывания очков, обрезанный по доступным записям
	RangeByRank(start, stop int64) ([]entity.LeaderboardEntry, error)

	// Count возвращает количество пользователей в индексе
	Count() (int64, error)

	// Available проверяет доступность бэкенда.
	// При недоступности возвращает ошибку, оборачивающую errors.ErrUnavailable.
	Available() error

	// Remove удаляет пользователя из индекса (административная операция)
	Remove(userID uint) error
}
