package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhive/studyhive-backend/internal/services"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

type CourseHandler struct {
	courseService *services.CourseService
}

func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	var filter services.CourseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendError(c, utils.BadRequest("INVALID_REQUEST", "Invalid query parameters"))
		return
	}

	resp, err := h.courseService.ListCourses(currentSchoolID(c), filter)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, resp)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	details, err := h.courseService.GetCourseDetails(courseID, optionalUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, details)
}

func (h *CourseHandler) SaveCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	if err := h.courseService.SaveCourse(courseID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusCreated, "Course saved")
}

func (h *CourseHandler) UnsaveCourse(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}

	if err := h.courseService.UnsaveCourse(courseID, currentUserID(c)); err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendMessage(c, http.StatusOK, "Course unsaved")
}

func (h *CourseHandler) ListDepartments(c *gin.Context) {
	departments, err := h.courseService.ListDepartments(currentSchoolID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"departments": departments})
}

func (h *CourseHandler) GetSavedCourses(c *gin.Context) {
	courses, err := h.courseService.GetSavedCourses(currentUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.SendJSON(c, http.StatusOK, gin.H{"courses": courses})
}
