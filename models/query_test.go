package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// openDryRun builds a gorm handle that renders SQL without touching a
// server, so the query engine's generated statements can be asserted.
func openDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "blogicum:blogicum@tcp(127.0.0.1:3306)/blogicum_test?charset=utf8mb4&parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func findSQL(q *gorm.DB) string {
	var posts []Post
	return q.Find(&posts).Statement.SQL.String()
}

func TestPostsForIndexSQL(t *testing.T) {
	db := openDryRun(t)
	now := time.Date(2024, 7, 19, 12, 0, 0, 0, time.UTC)

	sql := findSQL(PostsForIndex(db, now))

	assert.Contains(t, sql, "LEFT JOIN categories ON categories.id = posts.category_id")
	assert.Contains(t, sql, "posts.is_published = ?")
	assert.Contains(t, sql, "posts.pub_date <= ?")
	assert.Contains(t, sql, "posts.category_id IS NULL OR categories.is_published = ?")
	assert.Contains(t, sql, "ORDER BY posts.pub_date DESC")
	assert.Contains(t, sql, "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

func TestPostsForCategorySQL(t *testing.T) {
	db := openDryRun(t)

	sql := findSQL(PostsForCategory(db, 5, time.Now()))

	assert.Contains(t, sql, "posts.category_id = ?")
	assert.Contains(t, sql, "posts.is_published = ?")
	assert.Contains(t, sql, "ORDER BY posts.pub_date DESC")
}

func TestPostsForProfileSQL(t *testing.T) {
	db := openDryRun(t)

	sql := findSQL(PostsForProfile(db, 3, time.Now()))

	assert.Contains(t, sql, "posts.author_id = ?")
	assert.Contains(t, sql, "posts.is_published = ?")
	assert.Contains(t, sql, "posts.pub_date <= ?")
}

func TestPostsForProfileSelfSQL(t *testing.T) {
	db := openDryRun(t)

	// Self view must not filter on visibility: drafts and scheduled posts
	// are part of the author's own profile.
	sql := findSQL(PostsForProfileSelf(db, 3))

	assert.Contains(t, sql, "posts.author_id = ?")
	assert.NotContains(t, sql, "is_published")
	assert.NotContains(t, sql, "pub_date <=")
	assert.Contains(t, sql, "ORDER BY posts.pub_date DESC")
}

func TestPostCommentsSQL(t *testing.T) {
	db := openDryRun(t)

	var comments []Comment
	sql := PostComments(db, 11).Find(&comments).Statement.SQL.String()

	assert.Contains(t, sql, "post_id = ?")
	assert.Contains(t, sql, "ORDER BY created_at ASC, id ASC")
}
