package controllers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plushevij/blogicum/config"
	"github.com/plushevij/blogicum/models"
	"github.com/plushevij/blogicum/utils"
)

// PostController serves the four read modes of the visibility query engine
// and the owner-guarded post mutations.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// PostInput is the typed mutation payload for creating and editing posts,
// decoupled from the storage entity.
type PostInput struct {
	Title       string     `json:"title" binding:"required,max=256"`
	Text        string     `json:"text" binding:"required"`
	PubDate     *time.Time `json:"pub_date"`
	CategoryID  *uint      `json:"category_id"`
	LocationID  *uint      `json:"location_id"`
	Image       string     `json:"image"`
	IsPublished *bool      `json:"is_published"`
}

// ListPosts returns the public index view: every publicly visible post,
// newest publication first, paginated.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var posts []models.Post
	var total int64

	q := models.PostsForIndex(p.db, time.Now())
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	utils.Success(ctx, paginated(posts, page, pageSize, total))
}

// ListCategoryPosts returns the category view. A slug that does not resolve
// to a published category is NotFound, not an empty list.
func (p *PostController) ListCategoryPosts(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))

	var category models.Category
	if err := p.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "category not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load category")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var posts []models.Post
	var total int64

	q := models.PostsForCategory(p.db, category.ID, time.Now())
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list posts")
		return
	}

	payload := paginated(posts, page, pageSize, total)
	payload["category"] = category
	utils.Success(ctx, payload)
}

// GetProfile returns a user's profile with their posts. The viewed author
// sees all of their own posts, drafts and scheduled ones included; everyone
// else sees only the publicly visible subset.
func (p *PostController) GetProfile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))

	var user models.User
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load user")
		return
	}

	viewerID, _ := getUserID(ctx)
	var q *gorm.DB
	if viewerID == user.ID {
		q = models.PostsForProfileSelf(p.db, user.ID)
	} else {
		q = models.PostsForProfile(p.db, user.ID, time.Now())
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var posts []models.Post
	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to count posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to list posts")
		return
	}

	payload := paginated(posts, page, pageSize, total)
	payload["profile"] = gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"created_at": user.CreatedAt,
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post with its comments. Authors always see their
// own posts; everyone else only sees the post when it satisfies the full
// visibility rule, and gets NotFound otherwise so hidden posts stay
// indistinguishable from missing ones.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	viewerID, _ := getUserID(ctx)
	if viewerID != post.AuthorID && !post.VisibleAt(time.Now()) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	var comments []models.Comment
	if err := models.PostComments(p.db, post.ID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load comments")
		return
	}
	post.Comments = comments
	post.CommentCount = int64(len(comments))

	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost allows authenticated users to publish a new post. A future
// pub_date defers publication; the author still sees it on their profile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var input PostInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	post := models.Post{AuthorID: userID, IsPublished: true, PubDate: time.Now()}
	if fields := p.applyPostInput(&post, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40021, fields)
		return
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.Success(ctx, gin.H{"post": post, "redirect": profilePath(currentUsername(ctx))})
}

// UpdatePost lets the author edit their post. Anyone else is redirected to
// the post's read-only view without any mutation being applied.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	viewerID, _ := getUserID(ctx)
	if !Authorize(viewerID, post) {
		denyToPost(ctx, post.ID)
		return
	}

	var input PostInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	if fields := p.applyPostInput(&post, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40025, fields)
		return
	}

	if err := p.savePost(&post); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to update post")
		return
	}

	utils.Success(ctx, gin.H{"post": post, "redirect": postDetailPath(post.ID)})
}

// DeletePost lets the author delete their post; its comments are removed by
// cascade. Non-authors are redirected to the post without mutation.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	viewerID, _ := getUserID(ctx)
	if !Authorize(viewerID, post) {
		denyToPost(ctx, post.ID)
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete post")
		return
	}

	utils.Success(ctx, gin.H{"message": "post deleted", "redirect": profilePath(currentUsername(ctx))})
}

// UploadImage stores a post image under the media directory and returns its
// public URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40031, "unsupported image type")
		return
	}

	const maxSize = 10 * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40032, "file size exceeds 10MB")
		return
	}

	now := time.Now()
	relDir := filepath.Join("blog_images", now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(config.Get().MediaDir, relDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to create upload directory")
		return
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)
	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40032, "failed to store file")
		return
	}

	utils.Success(ctx, gin.H{"url": "/media/" + filepath.ToSlash(filepath.Join(relDir, name))})
}

// savePost persists the post row alone. The preloaded associations are
// display data and must never be written back.
func (p *PostController) savePost(post *models.Post) error {
	return p.db.Omit(clause.Associations).Save(post).Error
}

// loadPost fetches a post by path id with its display associations, writing
// the NotFound/error response itself when the lookup fails.
func (p *PostController) loadPost(ctx *gin.Context) (models.Post, bool) {
	var post models.Post
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return post, false
	}
	err = models.WithRelated(p.db).First(&post, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return post, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load post")
		return post, false
	}
	return post, true
}

// applyPostInput validates and copies a mutation payload onto the post,
// returning per-field messages on failure. Nothing is persisted here.
func (p *PostController) applyPostInput(post *models.Post, input *PostInput) map[string]string {
	fields := map[string]string{}

	title := utils.SanitizePlain(strings.TrimSpace(input.Title))
	if title == "" {
		fields["title"] = "title cannot be empty"
	}
	text := utils.Sanitize(input.Text)
	if strings.TrimSpace(text) == "" {
		fields["text"] = "text cannot be empty"
	}

	if input.CategoryID != nil {
		var n int64
		if err := p.db.Model(&models.Category{}).Where("id = ?", *input.CategoryID).Count(&n).Error; err != nil || n == 0 {
			fields["category_id"] = "category does not exist"
		}
	}
	if input.LocationID != nil {
		var n int64
		if err := p.db.Model(&models.Location{}).Where("id = ?", *input.LocationID).Count(&n).Error; err != nil || n == 0 {
			fields["location_id"] = "location does not exist"
		}
	}
	if input.Image != "" && !strings.HasPrefix(input.Image, "/media/") {
		fields["image"] = "image must be an uploaded media URL"
	}

	if len(fields) > 0 {
		return fields
	}

	post.Title = title
	post.Text = text
	post.CategoryID = input.CategoryID
	post.LocationID = input.LocationID
	post.Image = input.Image
	if input.PubDate != nil {
		post.PubDate = *input.PubDate
	}
	if input.IsPublished != nil {
		post.IsPublished = *input.IsPublished
	}
	// Drop stale preloads so the response reflects the new references.
	post.Category = nil
	post.Location = nil
	return nil
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := config.Get().PostsPerPage
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginated(items interface{}, page, pageSize int, total int64) gin.H {
	return gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
}
