package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type ResourceHandler struct {
	resourceService *services.ResourceService
	voteService     *services.VoteService
}

func NewResourceHandler(resourceService *services.ResourceService, voteService *services.VoteService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService, voteService: voteService}
}

func (h *ResourceHandler) CreateFlashcardSet(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var req services.CreateFlashcardSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	resource, err := h.resourceService.CreateFlashcardSet(currentUserID(c), courseID, req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusCreated, resource)
}

func (h *ResourceHandler) CreateNotes(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var req services.CreateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	resource, err := h.resourceService.CreateNotesResource(currentUserID(c), courseID, req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusCreated, resource)
}

func (h *ResourceHandler) GetResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	resource, err := h.resourceService.GetResource(resourceID, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resource)
}

func (h *ResourceHandler) ListFlashcardSets(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var filter services.ListResourcesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid query parameters"))
		return
	}

	resp, err := h.resourceService.ListFlashcardSets(courseID, filter, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *ResourceHandler) ListNotes(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var filter services.ListResourcesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid query parameters"))
		return
	}

	resp, err := h.resourceService.ListNotes(courseID, filter, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	var req services.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	resource, err := h.resourceService.UpdateResource(resourceID, currentUserID(c), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resource)
}

func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.resourceService.DeleteResource(resourceID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Resource deleted")
}

func (h *ResourceHandler) Upvote(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.voteService.CastUpvote(resourceID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusCreated, "Upvoted")
}

func (h *ResourceHandler) RemoveUpvote(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.voteService.RemoveUpvote(resourceID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Upvote removed")
}

func (h *ResourceHandler) IncrementUsage(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	if err := h.voteService.IncrementUsage(resourceID); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Usage recorded")
}
