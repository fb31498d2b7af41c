package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/pkg/logger"
)

type errorBody struct {
	Error *AppError `json:"error"`
}

// SendError turns any error into the API error envelope. AppErrors keep
// their status and code; anything else is logged and masked as a generic
// internal error.
func SendError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, errorBody{Error: appErr})
		return
	}

	logger.Error("unexpected error: ", err)
	c.JSON(http.StatusInternalServerError, errorBody{
		Error: &AppError{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"},
	})
}

func SendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func SendMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
