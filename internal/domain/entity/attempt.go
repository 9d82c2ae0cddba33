package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnswerEntry представляет один ответ пользователя внутри попытки.
// Хранится элементом JSONB-массива в строке попытки.
type AnswerEntry struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	IsCorrect      bool   `json:"is_correct"`
	Points         int    `json:"points"`
}

// AnswerList - пользовательский тип для JSONB-массива ответов
type AnswerList []AnswerEntry

// Scan реализует интерфейс sql.Scanner для AnswerList
func (a *AnswerList) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = AnswerList{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для AnswerList
func (a AnswerList) Value() (driver.Value, error) {
	if a == nil || len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Attempt представляет накапливаемую запись ответов одного пользователя
// в одной категории. Одна строка на пару (user_id, category_id),
// создается лениво при первом ответе и никогда не удаляется ядром.
type Attempt struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index;uniqueIndex:idx_user_category" json:"user_id"`
	CategoryID     uint       `gorm:"not null;index;uniqueIndex:idx_user_category" json:"category_id"`
	Answers        AnswerList `gorm:"type:jsonb;not null" json:"answers"`
	TotalScore     int        `gorm:"not null;default:0" json:"total_score"`
	CorrectCount   int        `gorm:"not null;default:0" json:"correct_count"`
	TotalQuestions int        `gorm:"not null;default:0" json:"total_questions"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "quiz_attempts"
}

// FindAnswer возвращает сохраненный ответ на вопрос, если он уже дан
func (a *Attempt) FindAnswer(questionID uint) (*AnswerEntry, bool) {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i], true
		}
	}
	return nil, false
}

// IsComplete сообщает, отвечены ли все активные вопросы категории.
// TotalQuestions — снапшот живого количества, обновляемый при каждом ответе.
func (a *Attempt) IsComplete() bool {
	return a.TotalQuestions > 0 && len(a.Answers) == a.TotalQuestions
}

// IncorrectCount возвращает количество неправильных ответов
func (a *Attempt) IncorrectCount() int {
	n := a.TotalQuestions - a.CorrectCount
	if n < 0 {
		return 0
	}
	return n
}

// AccuracyPercent возвращает точность в процентах (целое, округленное)
func (a *Attempt) AccuracyPercent() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return int(float64(a.CorrectCount)/float64(a.TotalQuestions)*100 + 0.5)
}
