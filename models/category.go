package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts under a unique URL-safe slug. Categories are
// administrative data managed through the admin endpoints only.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Slug        string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeDelete clears the category reference on posts instead of deleting
// them (clear-on-delete, not cascade).
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Post{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error
}
