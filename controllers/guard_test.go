package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plushevij/blogicum/models"
)

func TestAuthorize(t *testing.T) {
	alice, bob := uint(1), uint(2)
	post := models.Post{ID: 10, AuthorID: alice}
	comment := models.Comment{ID: 20, PostID: 10, AuthorID: bob}

	t.Run("author may mutate their post", func(t *testing.T) {
		assert.True(t, Authorize(alice, post))
	})

	t.Run("other viewers may not", func(t *testing.T) {
		assert.False(t, Authorize(bob, post))
	})

	t.Run("anonymous viewers may not", func(t *testing.T) {
		assert.False(t, Authorize(0, post))
	})

	t.Run("comment ownership is independent of the post owner", func(t *testing.T) {
		// bob commented on alice's post: bob may delete the comment,
		// alice may not, even though the post is hers.
		assert.True(t, Authorize(bob, comment))
		assert.False(t, Authorize(alice, comment))
	})
}

func TestCanonicalPaths(t *testing.T) {
	assert.Equal(t, "/api/v1/posts/42", postDetailPath(42))
	assert.Equal(t, "/api/v1/profiles/alice", profilePath("alice"))
}
