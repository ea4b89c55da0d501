package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// SignIn exchanges an email for a signed token, creating the profile lazily
// on first access. Identity verification itself is an external concern; this
// endpoint only anchors a user id for the session.
// POST /auth/signin
func SignIn(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email  string `json:"email" binding:"required,email"`
			Zodiac string `json:"zodiac"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		profile, err := s.GetProfileByEmail(ctx, req.Email)
		if errors.Is(err, store.ErrNotFound) {
			profile = &models.Profile{
				ID:      "user_" + generateRandomString(16),
				Email:   strings.ToLower(req.Email),
				Zodiac:  req.Zodiac,
				IsOwner: isOwnerEmail(req.Email),
			}
			if err := s.UpsertProfile(ctx, profile); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up profile"})
			return
		}

		role := "user"
		if profile.IsOwner {
			role = "owner"
		}
		token, err := IssueToken(profile.ID, profile.Email, role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Sign in successful",
			"token":   token,
			"profile": profile,
		})
	}
}

// SignOut tears down the user's cart session.
// POST /auth/signout
func SignOut(closeSession func(userID string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please sign in"})
			return
		}
		userID, _ := userIDVal.(string)
		closeSession(userID)
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
	}
}

// IssueToken generates an HS256 JWT for a user.
func IssueToken(userID, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func isOwnerEmail(email string) bool {
	owner := os.Getenv("OWNER_EMAIL")
	return owner != "" && strings.EqualFold(owner, email)
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_user"
	}
	return hex.EncodeToString(bytes)
}
