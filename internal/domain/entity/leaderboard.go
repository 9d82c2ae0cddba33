package entity

// LeaderboardEntry представляет позицию пользователя в глобальном лидерборде.
// Score всегда равен сумме TotalScore по всем попыткам пользователя
// на момент последнего успешного обновления (производный индекс).
type LeaderboardEntry struct {
	UserID uint `json:"user_id"`
	Score  int  `json:"score"`
}
