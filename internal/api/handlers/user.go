package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, profile)
}

func (h *UserHandler) GetReviews(c *gin.Context) {
	reviews, err := h.userService.GetUserReviews(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"reviews": reviews})
}

func (h *UserHandler) GetResources(c *gin.Context) {
	resources, err := h.userService.GetUserResources(currentUserID(c), c.Query("type"))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"resources": resources})
}

func (h *UserHandler) GetSavedResources(c *gin.Context) {
	resources, err := h.userService.GetSavedResources(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"resources": resources})
}

func (h *UserHandler) SaveResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.userService.SaveResource(resourceID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusCreated, "Resource saved")
}

func (h *UserHandler) UnsaveResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.userService.UnsaveResource(resourceID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Resource unsaved")
}

func (h *UserHandler) GetReputation(c *gin.Context) {
	breakdown, err := h.userService.GetReputationBreakdown(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, breakdown)
}

func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.userService.GetActivityStats(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, stats)
}
