package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog publication. PubDate may sit in the future for
// deferred publication; such posts stay hidden from everyone but the author.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	LocationID  *uint      `gorm:"index" json:"location_id"`
	Title       string     `gorm:"size:256;not null" json:"title"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	Image       string     `gorm:"size:512" json:"image"`
	PubDate     time.Time  `gorm:"index;not null" json:"pub_date"`
	IsPublished bool       `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Location    *Location  `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Comments    []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// Filled by the comment-count annotation in list queries, never stored.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// OwnerID reports the author for ownership authorization.
func (p Post) OwnerID() uint { return p.AuthorID }

// VisibleAt reports whether the post is publicly visible at the given
// instant: its own flag is set, the publication timestamp has passed, and
// the category, when present, is itself published. A post without a
// category passes the category condition vacuously.
func (p Post) VisibleAt(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	if p.Category != nil {
		return p.Category.IsPublished
	}
	return true
}

// BeforeDelete cascades deletion to the post's comments.
func (p *Post) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("post_id = ?", p.ID).Delete(&Comment{}).Error
}
