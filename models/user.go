package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserStats is a derived snapshot of a user's quiz and book counts, refreshed
// after quiz lifecycle changes.
type UserStats struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalQuizzes   int       `json:"total_quizzes"`
	PublicQuizzes  int       `json:"public_quizzes"`
	PrivateQuizzes int       `json:"private_quizzes"`
	NormalQuizzes  int       `json:"normal_quizzes"`
	QuickQuizzes   int       `json:"quick_quizzes"`
	TotalBooks     int       `json:"total_books"`
	PublicBooks    int       `json:"public_books"`
	PrivateBooks   int       `json:"private_books"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
