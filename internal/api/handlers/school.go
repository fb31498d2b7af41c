package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type SchoolHandler struct {
	schoolService *services.SchoolService
}

func NewSchoolHandler(schoolService *services.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolService: schoolService}
}

func (h *SchoolHandler) ListSchools(c *gin.Context) {
	schools, err := h.schoolService.ListSchools()
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"schools": schools})
}
