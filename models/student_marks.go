package models

import (
	"time"

	"gorm.io/gorm"
)

// StudentMarks holds one graded result per (user, quiz) pair. Resubmission
// overwrites the previous values.
type StudentMarks struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	UserID                uint           `json:"user_id" gorm:"uniqueIndex:idx_user_quiz;not null"`
	QuizID                string         `json:"quiz_id" gorm:"uniqueIndex:idx_user_quiz;not null"`
	McqPercentage         float64        `json:"mcq_percentage"`
	DescriptivePercentage float64        `json:"descriptive_percentage"`
	NumericalPercentage   float64        `json:"numerical_percentage"`
	TotalPercentage       float64        `json:"total_percentage"`
	Grade                 string         `json:"grade" gorm:"not null"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`
}
