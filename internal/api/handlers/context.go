package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

// currentUserID returns the authenticated user's id. Only valid behind
// AuthMiddleware.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("user_id").(uuid.UUID)
}

func currentSchoolID(c *gin.Context) uuid.UUID {
	return c.MustGet("school_id").(uuid.UUID)
}

// optionalUserID returns the user id when OptionalAuthMiddleware resolved
// one, nil otherwise.
func optionalUserID(c *gin.Context) *uuid.UUID {
	value, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// parseIDParam parses a uuid path parameter, sending INVALID_ID and
// returning false on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_ID", "Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
