package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is an optional descriptive tag on a post, managed through the
// admin endpoints only.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeDelete clears the location reference on posts instead of deleting them.
func (l *Location) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Post{}).Where("location_id = ?", l.ID).Update("location_id", nil).Error
}
