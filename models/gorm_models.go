// models/gorm_models.go
package models

import (
	"time"
)

// Word is one entry of the drawing vocabulary.
type Word struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:100;uniqueIndex;not null"`
	Category  string    `gorm:"size:50;default:general;not null"`
	CreatedAt time.Time
}

func (Word) TableName() string {
	return "words"
}
