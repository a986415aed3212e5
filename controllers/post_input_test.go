package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/plushevij/blogicum/models"
)

func TestApplyPostInputValidation(t *testing.T) {
	p := &PostController{}

	t.Run("rejects empty title", func(t *testing.T) {
		post := models.Post{}
		fields := p.applyPostInput(&post, &PostInput{Title: "   ", Text: "body"})
		assert.Contains(t, fields, "title")
	})

	t.Run("rejects markup-only title", func(t *testing.T) {
		post := models.Post{}
		fields := p.applyPostInput(&post, &PostInput{Title: "<script>x()</script>", Text: "body"})
		assert.Contains(t, fields, "title")
	})

	t.Run("rejects empty text", func(t *testing.T) {
		post := models.Post{}
		fields := p.applyPostInput(&post, &PostInput{Title: "Hello", Text: " "})
		assert.Contains(t, fields, "text")
	})

	t.Run("rejects foreign image URLs", func(t *testing.T) {
		post := models.Post{}
		fields := p.applyPostInput(&post, &PostInput{Title: "Hello", Text: "body", Image: "https://evil.example/x.png"})
		assert.Contains(t, fields, "image")
	})

	t.Run("no mutation on validation failure", func(t *testing.T) {
		post := models.Post{Title: "Original", Text: "Original body"}
		fields := p.applyPostInput(&post, &PostInput{Title: "", Text: ""})
		assert.NotEmpty(t, fields)
		assert.Equal(t, "Original", post.Title)
		assert.Equal(t, "Original body", post.Text)
	})

	t.Run("repeating the same invalid input yields the same errors", func(t *testing.T) {
		input := &PostInput{Title: "", Text: ""}
		post := models.Post{}
		first := p.applyPostInput(&post, input)
		second := p.applyPostInput(&post, input)
		assert.Equal(t, first, second)
	})

	t.Run("copies valid input onto the post", func(t *testing.T) {
		pub := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
		hidden := false
		post := models.Post{IsPublished: true, PubDate: time.Now()}
		fields := p.applyPostInput(&post, &PostInput{
			Title:       " Hello ",
			Text:        "Body <b>bold</b>",
			PubDate:     &pub,
			Image:       "/media/blog_images/2024/08/01/pic.png",
			IsPublished: &hidden,
		})
		assert.Empty(t, fields)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, pub, post.PubDate)
		assert.False(t, post.IsPublished)
		assert.Contains(t, post.Text, "<b>bold</b>")
	})
}
