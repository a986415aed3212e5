package models

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqlRecorder captures every statement gorm renders, hook statements
// included, so delete cascades can be asserted without a server.
type sqlRecorder struct {
	stmts []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.stmts = append(r.stmts, sql)
}

// openRecorded builds a dry-run handle whose logger keeps the rendered SQL.
// Default transactions are skipped so no connection is ever dialed.
func openRecorded(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "blogicum:blogicum@tcp(127.0.0.1:3306)/blogicum_test?charset=utf8mb4&parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

func stmtIndex(stmts []string, substr string) int {
	for i, s := range stmts {
		if strings.Contains(s, substr) {
			return i
		}
	}
	return -1
}

func TestDeletePostRemovesItsComments(t *testing.T) {
	db, rec := openRecorded(t)
	require.NoError(t, db.Delete(&Post{ID: 7}).Error)

	comments := stmtIndex(rec.stmts, "DELETE FROM `comments` WHERE post_id = 7")
	post := stmtIndex(rec.stmts, "DELETE FROM `posts`")
	require.GreaterOrEqual(t, comments, 0, "post delete must remove its comments")
	require.GreaterOrEqual(t, post, 0)
	assert.Less(t, comments, post, "comments go before their post")
}

func TestDeleteCategoryClearsPostReferences(t *testing.T) {
	db, rec := openRecorded(t)
	require.NoError(t, db.Delete(&Category{ID: 3}).Error)

	cleared := stmtIndex(rec.stmts, "UPDATE `posts` SET `category_id`=NULL")
	deleted := stmtIndex(rec.stmts, "DELETE FROM `categories`")
	require.GreaterOrEqual(t, cleared, 0, "category delete must null the reference on posts")
	require.GreaterOrEqual(t, deleted, 0)
	assert.Contains(t, rec.stmts[cleared], "category_id = 3")
	assert.Less(t, cleared, deleted)
	// Posts themselves survive a category delete.
	assert.Equal(t, -1, stmtIndex(rec.stmts, "DELETE FROM `posts`"))
}

func TestDeleteLocationClearsPostReferences(t *testing.T) {
	db, rec := openRecorded(t)
	require.NoError(t, db.Delete(&Location{ID: 6}).Error)

	cleared := stmtIndex(rec.stmts, "UPDATE `posts` SET `location_id`=NULL")
	deleted := stmtIndex(rec.stmts, "DELETE FROM `locations`")
	require.GreaterOrEqual(t, cleared, 0, "location delete must null the reference on posts")
	require.GreaterOrEqual(t, deleted, 0)
	assert.Contains(t, rec.stmts[cleared], "location_id = 6")
	assert.Less(t, cleared, deleted)
	assert.Equal(t, -1, stmtIndex(rec.stmts, "DELETE FROM `posts`"))
}

func TestDeleteUserRemovesAuthoredContent(t *testing.T) {
	db, rec := openRecorded(t)
	require.NoError(t, db.Delete(&User{ID: 4}).Error)

	ownComments := stmtIndex(rec.stmts, "DELETE FROM `comments` WHERE author_id = 4")
	commentsOnPosts := stmtIndex(rec.stmts, "post_id IN (SELECT")
	posts := stmtIndex(rec.stmts, "DELETE FROM `posts` WHERE author_id = 4")
	user := stmtIndex(rec.stmts, "DELETE FROM `users`")

	require.GreaterOrEqual(t, ownComments, 0, "user delete must remove authored comments")
	require.GreaterOrEqual(t, commentsOnPosts, 0, "user delete must remove comments under the user's posts")
	require.GreaterOrEqual(t, posts, 0, "user delete must remove the user's posts")
	require.GreaterOrEqual(t, user, 0)
	assert.Contains(t, rec.stmts[commentsOnPosts], "author_id = 4")

	// Comments in both groups must be gone before their posts, and
	// everything before the user row itself.
	assert.Less(t, ownComments, commentsOnPosts)
	assert.Less(t, commentsOnPosts, posts)
	assert.Less(t, posts, user)
}
