package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Difficulties lists the tiers in iteration order: easy, medium, hard.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Question is one generated question as persisted inside a QuizContent row.
type Question struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Options     []string `json:"options,omitempty"`
	Difficulty  string   `json:"difficulty"`
}

// QuestionSet holds the generated questions for one quiz type, bucketed by
// difficulty. Stored as a JSON column.
type QuestionSet struct {
	Easy   []Question `json:"easy"`
	Medium []Question `json:"medium"`
	Hard   []Question `json:"hard"`
}

// Bucket returns the questions for a difficulty tier.
func (qs QuestionSet) Bucket(difficulty string) []Question {
	switch difficulty {
	case DifficultyEasy:
		return qs.Easy
	case DifficultyMedium:
		return qs.Medium
	case DifficultyHard:
		return qs.Hard
	}
	return nil
}

func (qs QuestionSet) Value() (driver.Value, error) {
	return json.Marshal(qs)
}

func (qs *QuestionSet) Scan(value interface{}) error {
	if value == nil {
		*qs = QuestionSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, qs)
	case string:
		return json.Unmarshal([]byte(v), qs)
	default:
		return errors.New("unsupported column type for QuestionSet")
	}
}

type QuizContent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QuizID      string         `json:"quiz_id" gorm:"uniqueIndex:idx_quiz_type;not null"`
	TypeID      string         `json:"type_id" gorm:"uniqueIndex:idx_quiz_type;not null"`
	EasyCount   int            `json:"easy_questions_count" gorm:"default:0"`
	MediumCount int            `json:"medium_questions_count" gorm:"default:0"`
	HardCount   int            `json:"hard_questions_count" gorm:"default:0"`
	Questions   QuestionSet    `json:"generated_questions" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
