package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostVisibleAt(t *testing.T) {
	now := time.Date(2024, 7, 19, 12, 0, 0, 0, time.UTC)
	published := Category{Title: "Travel", Slug: "travel", IsPublished: true}
	hidden := Category{Title: "Drafts", Slug: "drafts", IsPublished: false}

	tests := []struct {
		name    string
		post    Post
		visible bool
	}{
		{
			name:    "published post without category",
			post:    Post{IsPublished: true, PubDate: now.Add(-time.Hour)},
			visible: true,
		},
		{
			name:    "published post in published category",
			post:    Post{IsPublished: true, PubDate: now.Add(-time.Hour), Category: &published},
			visible: true,
		},
		{
			name:    "post hidden by own flag",
			post:    Post{IsPublished: false, PubDate: now.Add(-time.Hour)},
			visible: false,
		},
		{
			name:    "scheduled post stays hidden until pub_date",
			post:    Post{IsPublished: true, PubDate: now.Add(24 * time.Hour)},
			visible: false,
		},
		{
			name:    "pub_date exactly now counts as published",
			post:    Post{IsPublished: true, PubDate: now},
			visible: true,
		},
		{
			name:    "unpublished category hides the post",
			post:    Post{IsPublished: true, PubDate: now.Add(-time.Hour), Category: &hidden},
			visible: false,
		},
		{
			name:    "unpublished category and unpublished post",
			post:    Post{IsPublished: false, PubDate: now.Add(-time.Hour), Category: &hidden},
			visible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, tt.post.VisibleAt(now))
		})
	}
}

func TestPostOwnership(t *testing.T) {
	post := Post{AuthorID: 7}
	assert.Equal(t, uint(7), post.OwnerID())

	comment := Comment{AuthorID: 9, PostID: 3}
	assert.Equal(t, uint(9), comment.OwnerID())
}
