package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plushevij/blogicum/config"
	"github.com/plushevij/blogicum/middleware"
)

// Owned is implemented by entities that belong to exactly one author.
type Owned interface {
	OwnerID() uint
}

// Authorize reports whether the acting viewer may mutate the entity. It is a
// pure decision: callers redirect to the entity's read view on denial, the
// guard itself never writes a response.
func Authorize(viewerID uint, entity Owned) bool {
	return viewerID != 0 && entity.OwnerID() == viewerID
}

// postDetailPath is the canonical read-only view of a post, used both as the
// post-mutation redirect target and as the denial fallback.
func postDetailPath(postID uint) string {
	return fmt.Sprintf("/api/v1/posts/%d", postID)
}

// profilePath is the canonical redirect target after deleting a post.
func profilePath(username string) string {
	return "/api/v1/profiles/" + username
}

// denyToPost recovers a Denied decision locally: redirect the viewer to the
// post's detail view without applying any mutation. Denials are never
// surfaced as hard error pages.
func denyToPost(ctx *gin.Context, postID uint) {
	ctx.Redirect(http.StatusSeeOther, postDetailPath(postID))
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func currentUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	uname, _ := value.(string)
	return uname
}

// isAdmin checks the configured admin usernames (case-insensitive).
func isAdmin(ctx *gin.Context) bool {
	uname := currentUsername(ctx)
	if uname == "" {
		return false
	}
	cfg := config.Get()
	for _, u := range cfg.AdminUsernames {
		if strings.EqualFold(strings.TrimSpace(u), uname) {
			return true
		}
	}
	return false
}
