package userControllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/zeriouslyzen/cosmic-sub000/auth"
	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

func newProfileRouter(t *testing.T) (*gin.Engine, store.Store) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	s, err := store.OpenLocal(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/user/profile", middleware.ValidateToken, GetProfile(s))
	return r, s
}

func getProfile(t *testing.T, r *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set("Authorization", token)
	r.ServeHTTP(w, req)
	return w
}

func TestGetProfileCreatesLazily(t *testing.T) {
	r, s := newProfileRouter(t)

	token, err := auth.IssueToken("u1", "astra@example.com", "user")
	require.NoError(t, err)

	w := getProfile(t, r, token)
	require.Equal(t, http.StatusOK, w.Code)

	profile, err := s.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "astra@example.com", profile.Email)
}

func TestGetProfileRejectsTokenWithoutEmail(t *testing.T) {
	r, s := newProfileRouter(t)

	// email is a unique column; two lazily created profiles with an empty
	// one would collide, so such tokens are rejected up front
	first, err := auth.IssueToken("u1", "", "user")
	require.NoError(t, err)
	second, err := auth.IssueToken("u2", "", "user")
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, getProfile(t, r, first).Code)
	require.Equal(t, http.StatusUnauthorized, getProfile(t, r, second).Code)

	_, err = s.GetProfile(context.Background(), "u1")
	require.ErrorIs(t, err, store.ErrNotFound, "no empty-email profile is written")
}
