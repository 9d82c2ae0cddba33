package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос викторины в каталоге категории
type Question struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CategoryID  uint        `gorm:"not null;index" json:"category_id"`
	Text        string      `gorm:"size:1000;not null" json:"text"`
	Options     StringArray `gorm:"type:jsonb;not null" json:"options"`
	Answer      string      `gorm:"size:255;not null" json:"-"` // Правильный вариант, скрыт от клиента
	Explanation string      `gorm:"size:1000" json:"-"`         // Пояснение к ответу, скрыто до сабмита
	PointValue  int         `gorm:"not null;default:0" json:"point_value"`
	IsActive    bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, совпадает ли выбранный вариант с правильным ответом.
// Несовпадающий с вариантами текст не ошибка — он просто неправильный.
func (q *Question) IsCorrect(selectedOption string) bool {
	return selectedOption == q.Answer
}

// AwardedPoints возвращает количество очков за ответ
func (q *Question) AwardedPoints(isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return q.PointValue
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// Validate проверяет инварианты вопроса:
// минимум два уникальных варианта, ответ присутствует среди вариантов,
// неотрицательное количество очков.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text is required")
	}
	if len(q.Options) < 2 {
		return errors.New("at least two options are required")
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if opt == "" {
			return errors.New("options must not be empty")
		}
		if _, dup := seen[opt]; dup {
			return errors.New("options must be unique")
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.Answer]; !ok {
		return errors.New("answer must be one of the options")
	}
	if q.PointValue < 0 {
		return errors.New("point value must be non-negative")
	}
	return nil
}
