package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	resp, err := h.authService.RefreshTokens(req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req services.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	user, err := h.authService.VerifyEmail(req.Token)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, user)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetUser(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, user)
}
