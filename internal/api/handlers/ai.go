package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

func (h *AIHandler) GenerateFlashcards(c *gin.Context) {
	var req services.GenerateFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	result, err := h.aiService.GenerateFlashcards(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, result)
}

func (h *AIHandler) GenerateFlashcardsFromResource(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	count, _ := strconv.Atoi(c.DefaultQuery("count", "10"))

	result, err := h.aiService.GenerateFlashcardsFromResource(c.Request.Context(), resourceID, count)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, result)
}

func (h *AIHandler) GenerateStudyGuide(c *gin.Context) {
	var req services.GenerateStudyGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	guide, err := h.aiService.GenerateStudyGuide(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, guide)
}

func (h *AIHandler) GenerateQuiz(c *gin.Context) {
	var req services.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid request data"))
		return
	}

	quiz, err := h.aiService.GenerateQuiz(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, quiz)
}

func (h *AIHandler) SummarizeNotes(c *gin.Context) {
	resourceID, ok := parseIDParam(c, "resourceId")
	if !ok {
		return
	}

	summary, err := h.aiService.SummarizeNotes(c.Request.Context(), resourceID)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, summary)
}
