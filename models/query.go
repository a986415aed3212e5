package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility query engine for posts. Every list mode annotates a per-post
// comment count, orders by publication timestamp descending and eager-loads
// the author, category and location so handlers need no further round-trips.

const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// WithRelated preloads the associations every presentation path needs.
func WithRelated(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").Preload("Location")
}

// PublishedOnly keeps posts that are publicly visible at the given instant:
// own flag set, pub_date not in the future, and the category, when assigned,
// itself published. The LEFT JOIN lets posts without a category through.
func PublishedOnly(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("posts.category_id IS NULL OR categories.is_published = ?", true)
	}
}

func postList(db *gorm.DB) *gorm.DB {
	return WithRelated(db.Model(&Post{})).
		Select(commentCountSelect).
		Order("posts.pub_date DESC")
}

// PostsForIndex returns the query for the public index view.
func PostsForIndex(db *gorm.DB, now time.Time) *gorm.DB {
	return postList(db).Scopes(PublishedOnly(now))
}

// PostsForCategory returns the query for the category view. The caller is
// responsible for resolving the category and confirming it is published.
func PostsForCategory(db *gorm.DB, categoryID uint, now time.Time) *gorm.DB {
	return postList(db).Scopes(PublishedOnly(now)).Where("posts.category_id = ?", categoryID)
}

// PostsForProfile returns the viewed author's publicly visible posts, the
// mode used when someone else looks at a profile.
func PostsForProfile(db *gorm.DB, authorID uint, now time.Time) *gorm.DB {
	return postList(db).Scopes(PublishedOnly(now)).Where("posts.author_id = ?", authorID)
}

// PostsForProfileSelf returns every post of the author regardless of flags
// or future timestamps, so authors can preview drafts and scheduled posts.
func PostsForProfileSelf(db *gorm.DB, authorID uint) *gorm.DB {
	return postList(db).Where("posts.author_id = ?", authorID)
}

// PostComments returns a post's comments with authors in stable insertion
// order.
func PostComments(db *gorm.DB, postID uint) *gorm.DB {
	return db.Model(&Comment{}).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC")
}
