package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StringList stores an ordered list of document references as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported column type for StringList")
	}
}

type Quiz struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QuizID      string         `json:"quiz_id" gorm:"uniqueIndex;not null"`
	QuizName    string         `json:"quiz_name" gorm:"not null"`
	Description string         `json:"description"`
	ChapterList StringList     `json:"chapter_list" gorm:"type:jsonb"`
	IsPrivate   bool           `json:"is_private" gorm:"default:false"`
	QuickQuiz   bool           `json:"quick_quiz" gorm:"default:false"`
	CreatedBy   uint           `json:"created_by" gorm:"not null"`
	Subject     string         `json:"subject"`
	Completed   bool           `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Creator User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}
