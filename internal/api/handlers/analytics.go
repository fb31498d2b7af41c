package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) GetStudyStats(c *gin.Context) {
	stats, err := h.analyticsService.GetUserStudyStats(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, stats)
}

func (h *AnalyticsHandler) GetStreak(c *gin.Context) {
	streak, err := h.analyticsService.GetStudyStreak(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, streak)
}

func (h *AnalyticsHandler) GetWeakAreas(c *gin.Context) {
	areas, err := h.analyticsService.GetWeakAreas(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, areas)
}

func (h *AnalyticsHandler) GetRank(c *gin.Context) {
	rank, err := h.analyticsService.GetUserRank(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, rank)
}

func (h *AnalyticsHandler) GetLeaderboard(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "all")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.analyticsService.GetSchoolLeaderboard(currentSchoolID(c), timeframe, limit)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"leaderboard": entries, "timeframe": timeframe})
}

func (h *AnalyticsHandler) GetCourseInsights(c *gin.Context) {
	insights, err := h.analyticsService.GetCourseInsights(currentSchoolID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, insights)
}
