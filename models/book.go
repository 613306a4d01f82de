package models

import (
	"time"

	"gorm.io/gorm"
)

type Subject struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SubjectID   string         `json:"subject_id" gorm:"uniqueIndex;not null"`
	SubjectName string         `json:"subject_name" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

type Book struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	BookID      string         `json:"book_id" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null"`
	Description string         `json:"description"`
	CoverImage  string         `json:"cover_image"`
	Private     bool           `json:"private" gorm:"default:false"`
	UserID      uint           `json:"user_id" gorm:"not null"`
	SubjectID   uint           `json:"subject_id" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Subject  Subject   `json:"subject,omitempty"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:BookID"`
}

type Chapter struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ChapterID   string         `json:"chapter_id" gorm:"uniqueIndex;not null"`
	ChapterName string         `json:"chapter_name" gorm:"not null"`
	Description string         `json:"description"`
	ChapterURL  string         `json:"chapter_url" gorm:"uniqueIndex;not null"`
	BookID      uint           `json:"book_id" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
