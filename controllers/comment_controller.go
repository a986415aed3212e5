package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plushevij/blogicum/models"
	"github.com/plushevij/blogicum/utils"
)

// CommentController manages comments under posts. Mutations are guarded by
// comment ownership; denial redirects to the parent post's detail view.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// CommentInput is the typed mutation payload for comments.
type CommentInput struct {
	Text string `json:"text" binding:"required"`
}

// CreateComment adds a comment to a post the viewer can see.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post, ok := c.loadPost(ctx)
	if !ok {
		return
	}
	// The same no-leak rule as the detail view: a post hidden from the
	// viewer reads as missing.
	if userID != post.AuthorID && !post.VisibleAt(time.Now()) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	var input CommentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	text := utils.Sanitize(input.Text)
	if strings.TrimSpace(text) == "" {
		utils.ValidationError(ctx, 40041, map[string]string{"text": "text cannot be empty"})
		return
	}

	comment := models.Comment{
		PostID:      post.ID,
		AuthorID:    userID,
		Text:        text,
		IsPublished: true,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create comment")
		return
	}
	if err := c.db.Preload("Author").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment, "redirect": postDetailPath(post.ID)})
}

// UpdateComment lets the comment's author edit its text. Anyone else is
// redirected to the post without mutation.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	comment, ok := c.loadComment(ctx)
	if !ok {
		return
	}

	viewerID, _ := getUserID(ctx)
	if !Authorize(viewerID, comment) {
		denyToPost(ctx, comment.PostID)
		return
	}

	var input CommentInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}
	text := utils.Sanitize(input.Text)
	if strings.TrimSpace(text) == "" {
		utils.ValidationError(ctx, 40043, map[string]string{"text": "text cannot be empty"})
		return
	}

	comment.Text = text
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to update comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment, "redirect": postDetailPath(comment.PostID)})
}

// DeleteComment lets the comment's author remove it. Anyone else is
// redirected to the post without mutation.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	comment, ok := c.loadComment(ctx)
	if !ok {
		return
	}

	viewerID, _ := getUserID(ctx)
	if !Authorize(viewerID, comment) {
		denyToPost(ctx, comment.PostID)
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted", "redirect": postDetailPath(comment.PostID)})
}

func (c *CommentController) loadPost(ctx *gin.Context) (models.Post, bool) {
	var post models.Post
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return post, false
	}
	if err := models.WithRelated(c.db).First(&post, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return post, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load post")
		return post, false
	}
	return post, true
}

// loadComment resolves the comment by path id and checks it belongs to the
// post in the path, so comment routes cannot be replayed under another post.
func (c *CommentController) loadComment(ctx *gin.Context) (models.Comment, bool) {
	var comment models.Comment
	postID, err1 := strconv.ParseUint(ctx.Param("id"), 10, 64)
	commentID, err2 := strconv.ParseUint(ctx.Param("commentID"), 10, 64)
	if err1 != nil || err2 != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		return comment, false
	}
	if err := c.db.First(&comment, uint(commentID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return comment, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to load comment")
		return comment, false
	}
	if comment.PostID != uint(postID) {
		utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		return comment, false
	}
	return comment, true
}
