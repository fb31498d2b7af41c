package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/config"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

// AuthMiddleware validates the bearer access token and re-fetches the user
// so school scope and verification status are current, not the snapshot
// baked into the token.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.SendError(c, utils.Unauthorized("Authorization header required"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil || claims.Type != string(utils.AccessToken) {
			utils.SendError(c, utils.Unauthorized("Invalid token"))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.SendError(c, utils.Unauthorized("Invalid token"))
			} else {
				utils.SendError(c, err)
			}
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("school_id", user.SchoolID)
		c.Set("email_verified", user.EmailVerified)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a valid token is present
// and silently continues when it is not. Handlers use it to personalize
// public listings with vote and save flags.
func OptionalAuthMiddleware(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil || claims.Type != string(utils.AccessToken) {
			c.Next()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.Next()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("school_id", user.SchoolID)
		c.Set("email_verified", user.EmailVerified)
		c.Next()
	}
}

// RequireVerified gates write endpoints behind email verification. Must
// run after AuthMiddleware.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("email_verified") {
			utils.SendError(c, utils.NewAppError(403, "EMAIL_NOT_VERIFIED", "Please verify your email address first"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}
