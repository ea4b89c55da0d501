package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zeriouslyzen/cosmic-sub000/middleware"
	"github.com/zeriouslyzen/cosmic-sub000/models"
	"github.com/zeriouslyzen/cosmic-sub000/store"
)

type updateProfileInput struct {
	Email  string `json:"email" binding:"omitempty,email"`
	Phone  string `json:"phone"`
	Zodiac string `json:"zodiac"`
}

// GetProfile returns the signed-in user's profile, creating it lazily on
// first access.
// GET /user/profile
func GetProfile(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please sign in"})
			return
		}

		ctx := c.Request.Context()
		profile, err := s.GetProfile(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			email, _ := c.Get("email")
			emailStr, _ := email.(string)
			if emailStr == "" {
				// email is a unique column; a token without one cannot
				// anchor a profile
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
				return
			}
			profile = &models.Profile{ID: userID, Email: emailStr}
			if err := s.UpsertProfile(ctx, profile); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfile edits contact details and the zodiac sign. The stardust
// balance is owned by the ledger and cannot be set here.
// PUT /user/profile
func UpdateProfile(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please sign in"})
			return
		}
		var input updateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		profile, err := s.GetProfile(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
			}
			return
		}

		if input.Email != "" {
			profile.Email = input.Email
		}
		if input.Phone != "" {
			profile.Phone = input.Phone
		}
		if input.Zodiac != "" {
			profile.Zodiac = input.Zodiac
		}
		if err := s.UpsertProfile(ctx, profile); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// GetStardustHistory lists the user's ledger entries, newest first, with the
// cached balance.
// GET /user/stardust
func GetStardustHistory(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please sign in"})
			return
		}

		ctx := c.Request.Context()
		balance := 0
		if profile, err := s.GetProfile(ctx, userID); err == nil {
			balance = profile.StardustBalance
		} else if !errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
			return
		}

		txns, err := s.ListStardust(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch star dust history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"stardust_balance": balance,
			"transactions":     txns,
		})
	}
}
