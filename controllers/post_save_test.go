package controllers

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

	"github.com/plushevij/blogicum/models"
)

// sqlRecorder keeps every statement gorm renders under dry-run so writes can
// be asserted without a server.
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

func TestSavePostWritesOnlyThePostRow(t *testing.T) {
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

	p := NewPostController(db)
	catID := uint(2)
	post := models.Post{
		ID:          5,
		AuthorID:    1,
		CategoryID:  &catID,
		Title:       "Hello",
		Text:        "body",
		PubDate:     time.Now(),
		IsPublished: true,
		// As loaded by the detail/edit path: author preloaded for display.
		Author: models.User{ID: 1, Username: "alice"},
	}
	require.NoError(t, p.savePost(&post))

	updates := 0
	for _, s := range rec.stmts {
		if strings.Contains(s, "UPDATE `posts`") {
			updates++
		}
		// The preloaded author row must never be written back.
		assert.NotContains(t, s, "`users`")
	}
	assert.Equal(t, 1, updates)
}
