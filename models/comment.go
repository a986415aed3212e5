package models

import "time"

// Comment represents a reply to a post. Comments always reference an
// existing post and author; both cascades are enforced by the parent hooks.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index;not null" json:"post_id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
}

// OwnerID reports the author for ownership authorization.
func (c Comment) OwnerID() uint { return c.AuthorID }
