package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plushevij/blogicum/models"
	"github.com/plushevij/blogicum/utils"
)

// AdminController is the privileged management interface for the
// administrative data: categories and locations. Ordinary users never write
// these tables.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// CategoryInput is the typed payload for category management. When the slug
// is omitted it is derived from the title.
type CategoryInput struct {
	Title       string `json:"title" binding:"required,max=256"`
	Description string `json:"description"`
	Slug        string `json:"slug" binding:"omitempty,max=64"`
	IsPublished *bool  `json:"is_published"`
}

// LocationInput is the typed payload for location management.
type LocationInput struct {
	Name        string `json:"name" binding:"required,max=256"`
	IsPublished *bool  `json:"is_published"`
}

// ListCategories returns all categories, published or not, for management.
func (a *AdminController) ListCategories(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}
	var categories []models.Category
	if err := a.db.Order("title ASC").Find(&categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"items": categories})
}

// CreateCategory creates a category with a unique URL-safe slug.
func (a *AdminController) CreateCategory(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	var input CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	category := models.Category{IsPublished: true}
	if fields := a.applyCategoryInput(&category, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40051, fields)
		return
	}

	if err := a.db.Create(&category).Error; err != nil {
		if isDuplicateKey(err) {
			utils.ValidationError(ctx, 40052, map[string]string{"slug": "slug already exists"})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// UpdateCategory edits an existing category.
func (a *AdminController) UpdateCategory(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	category, ok := a.loadCategory(ctx)
	if !ok {
		return
	}

	var input CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid request payload")
		return
	}
	if fields := a.applyCategoryInput(&category, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40054, fields)
		return
	}

	if err := a.db.Save(&category).Error; err != nil {
		if isDuplicateKey(err) {
			utils.ValidationError(ctx, 40052, map[string]string{"slug": "slug already exists"})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update category")
		return
	}
	utils.Success(ctx, gin.H{"category": category})
}

// DeleteCategory removes a category. Posts referencing it survive with the
// reference cleared.
func (a *AdminController) DeleteCategory(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	category, ok := a.loadCategory(ctx)
	if !ok {
		return
	}
	if err := a.db.Delete(&category).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to delete category")
		return
	}
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

// ListLocations returns all locations for management.
func (a *AdminController) ListLocations(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}
	var locations []models.Location
	if err := a.db.Order("name ASC").Find(&locations).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to list locations")
		return
	}
	utils.Success(ctx, gin.H{"items": locations})
}

// CreateLocation creates a location.
func (a *AdminController) CreateLocation(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	var input LocationInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid request payload")
		return
	}

	location := models.Location{IsPublished: true}
	if fields := applyLocationInput(&location, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40056, fields)
		return
	}
	if err := a.db.Create(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to create location")
		return
	}
	utils.Success(ctx, gin.H{"location": location})
}

// UpdateLocation edits an existing location.
func (a *AdminController) UpdateLocation(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	location, ok := a.loadLocation(ctx)
	if !ok {
		return
	}

	var input LocationInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40057, "invalid request payload")
		return
	}
	if fields := applyLocationInput(&location, &input); len(fields) > 0 {
		utils.ValidationError(ctx, 40058, fields)
		return
	}
	if err := a.db.Save(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to update location")
		return
	}
	utils.Success(ctx, gin.H{"location": location})
}

// DeleteLocation removes a location, clearing the reference on posts.
func (a *AdminController) DeleteLocation(ctx *gin.Context) {
	if !a.requireAdmin(ctx) {
		return
	}

	location, ok := a.loadLocation(ctx)
	if !ok {
		return
	}
	if err := a.db.Delete(&location).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to delete location")
		return
	}
	utils.Success(ctx, gin.H{"message": "location deleted"})
}

func (a *AdminController) requireAdmin(ctx *gin.Context) bool {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40310, "admin access required")
		return false
	}
	return true
}

func (a *AdminController) applyCategoryInput(category *models.Category, input *CategoryInput) map[string]string {
	fields := map[string]string{}

	title := utils.SanitizePlain(strings.TrimSpace(input.Title))
	if title == "" {
		fields["title"] = "title cannot be empty"
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = utils.Slugify(title, 64)
	}
	if !utils.ValidSlug(slug) {
		fields["slug"] = "slug may contain latin letters, digits, hyphen and underscore"
	}

	if len(fields) > 0 {
		return fields
	}

	category.Title = title
	category.Description = utils.Sanitize(input.Description)
	category.Slug = slug
	if input.IsPublished != nil {
		category.IsPublished = *input.IsPublished
	}
	return nil
}

func applyLocationInput(location *models.Location, input *LocationInput) map[string]string {
	name := utils.SanitizePlain(strings.TrimSpace(input.Name))
	if name == "" {
		return map[string]string{"name": "name cannot be empty"}
	}
	location.Name = name
	if input.IsPublished != nil {
		location.IsPublished = *input.IsPublished
	}
	return nil
}

func (a *AdminController) loadCategory(ctx *gin.Context) (models.Category, bool) {
	var category models.Category
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
		return category, false
	}
	if err := a.db.First(&category, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "category not found")
			return category, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to load category")
		return category, false
	}
	return category, true
}

func (a *AdminController) loadLocation(ctx *gin.Context) (models.Location, bool) {
	var location models.Location
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40431, "location not found")
		return location, false
	}
	if err := a.db.First(&location, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "location not found")
			return location, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50059, "failed to load location")
		return location, false
	}
	return location, true
}

// isDuplicateKey detects unique constraint violations from the MySQL driver
// so they can surface as field-level validation failures.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
