package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizType struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TypeID    string         `json:"type_id" gorm:"uniqueIndex;not null"`
	TypeName  string         `json:"type_name" gorm:"uniqueIndex;not null"`
	Order     int            `json:"order" gorm:"column:sort_order;uniqueIndex;not null"`
	CreatedBy uint           `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
