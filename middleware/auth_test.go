package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plushevij/blogicum/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func performRequest(handler gin.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, *uint) {
	var seen *uint
	r := gin.New()
	r.GET("/probe", handler, func(ctx *gin.Context) {
		if v, ok := ctx.Get(ContextUserIDKey); ok {
			id := v.(uint)
			seen = &id
		}
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestAuthRequired(t *testing.T) {
	t.Run("missing header is rejected", func(t *testing.T) {
		w, seen := performRequest(AuthRequired(), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		w, _ := performRequest(AuthRequired(), "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		token, err := utils.GenerateToken(7, "alice", time.Hour)
		require.NoError(t, err)

		w, seen := performRequest(AuthRequired(), "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, uint(7), *seen)
	})
}

func TestAuthOptional(t *testing.T) {
	t.Run("anonymous requests pass through", func(t *testing.T) {
		w, seen := performRequest(AuthOptional(), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		w, seen := performRequest(AuthOptional(), "Bearer garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token resolves the viewer", func(t *testing.T) {
		token, err := utils.GenerateToken(9, "bob", time.Hour)
		require.NoError(t, err)

		w, seen := performRequest(AuthOptional(), "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, seen)
		assert.Equal(t, uint(9), *seen)
	})
}
