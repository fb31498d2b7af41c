package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
	voteService   *services.VoteService
}

func NewReviewHandler(reviewService *services.ReviewService, voteService *services.VoteService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, voteService: voteService}
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	review, err := h.reviewService.CreateReview(currentUserID(c), courseID, req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusCreated, review)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(reviewID, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, review)
}

func (h *ReviewHandler) ListReviews(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	var filter services.ListReviewsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid query parameters"))
		return
	}

	resp, err := h.reviewService.ListReviews(courseID, filter, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *ReviewHandler) GetCourseStats(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	stats, err := h.reviewService.GetCourseStats(courseID)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, stats)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	review, err := h.reviewService.UpdateReview(reviewID, currentUserID(c), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(reviewID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Review deleted")
}

func (h *ReviewHandler) VoteHelpful(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := h.voteService.VoteHelpful(reviewID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusCreated, "Marked as helpful")
}

func (h *ReviewHandler) RemoveHelpfulVote(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := h.voteService.RemoveHelpfulVote(reviewID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Helpful vote removed")
}
