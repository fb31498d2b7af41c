package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &CourseService{db: db}
}

type CourseFilter struct {
	DepartmentID string `form:"department_id"`
	Search       string `form:"search"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

type CourseWithStats struct {
	models.Course
	ReviewCount             int64   `json:"review_count"`
	ResourceCount           int64   `json:"resource_count"`
	AverageOverallRating    float64 `json:"average_overall_rating"`
	AverageWorkloadRating   float64 `json:"average_workload_rating"`
	AverageDifficultyRating float64 `json:"average_difficulty_rating"`
}

type CourseListResponse struct {
	Courses    []CourseWithStats `json:"courses"`
	Pagination Pagination        `json:"pagination"`
}

type CourseDetails struct {
	CourseWithStats
	School                    models.School `json:"school"`
	AttendanceRequiredPercent int           `json:"attendance_required_percent"`
	FlashcardsCount           int64         `json:"flashcards_count"`
	NotesCount                int64         `json:"notes_count"`
	IsSaved                   bool          `json:"is_saved"`
}

// ListCourses is scoped to the caller's school.
func (s *CourseService) ListCourses(schoolID uuid.UUID, filter CourseFilter) (*CourseListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultResourcePageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	query := s.db.Model(&models.Course{}).Where("school_id = ?", schoolID)
	if filter.DepartmentID != "" {
		departmentID, err := uuid.Parse(filter.DepartmentID)
		if err != nil {
			return nil, utils.BadRequest("INVALID_ID", "Invalid department ID")
		}
		query = query.Where("department_id = ?", departmentID)
	}
	if search := utils.SanitizeString(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(course_code) LIKE LOWER(?) OR LOWER(title) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var courses []models.Course
	err := query.Preload("Department").
		Order("course_code ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	result := make([]CourseWithStats, 0, len(courses))
	for _, course := range courses {
		stats, err := s.courseStats(course.ID)
		if err != nil {
			return nil, err
		}
		stats.Course = course
		result = append(result, *stats)
	}

	return &CourseListResponse{
		Courses:    result,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *CourseService) courseStats(courseID uuid.UUID) (*CourseWithStats, error) {
	var reviews []models.CourseReview
	err := s.db.Select("overall_rating", "workload_rating", "difficulty_rating").
		Where("course_id = ?", courseID).Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	stats := &CourseWithStats{ReviewCount: int64(len(reviews))}
	s.db.Model(&models.StudyResource{}).Where("course_id = ?", courseID).Count(&stats.ResourceCount)

	if len(reviews) > 0 {
		var overall, workload, difficulty int
		for _, r := range reviews {
			overall += r.OverallRating
			workload += r.WorkloadRating
			difficulty += r.DifficultyRating
		}
		n := float64(len(reviews))
		stats.AverageOverallRating = roundToTenth(float64(overall) / n)
		stats.AverageWorkloadRating = roundToTenth(float64(workload) / n)
		stats.AverageDifficultyRating = roundToTenth(float64(difficulty) / n)
	}

	return stats, nil
}

func (s *CourseService) GetCourseDetails(courseID uuid.UUID, userID *uuid.UUID) (*CourseDetails, error) {
	var course models.Course
	err := s.db.Preload("Department").Preload("School").First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Course not found")
		}
		return nil, err
	}

	stats, err := s.courseStats(courseID)
	if err != nil {
		return nil, err
	}
	stats.Course = course

	details := &CourseDetails{
		CourseWithStats: *stats,
		School:          course.School,
	}

	var attendance int64
	s.db.Model(&models.CourseReview{}).
		Where("course_id = ? AND attendance_required = ?", courseID, true).Count(&attendance)
	if stats.ReviewCount > 0 {
		details.AttendanceRequiredPercent = int(float64(attendance)/float64(stats.ReviewCount)*100 + 0.5)
	}

	s.db.Model(&models.StudyResource{}).
		Where("course_id = ? AND type = ?", courseID, models.ResourceTypeFlashcards).
		Count(&details.FlashcardsCount)
	s.db.Model(&models.StudyResource{}).
		Where("course_id = ? AND type = ?", courseID, models.ResourceTypeNotes).
		Count(&details.NotesCount)

	if userID != nil {
		var saved int64
		s.db.Model(&models.SavedCourse{}).
			Where("user_id = ? AND course_id = ?", *userID, courseID).Count(&saved)
		details.IsSaved = saved > 0
	}

	return details, nil
}

func (s *CourseService) SaveCourse(courseID, userID uuid.UUID) error {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Course not found")
		}
		return err
	}

	var existing models.SavedCourse
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return utils.BadRequest("ALREADY_SAVED", "Course already saved")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	saved := models.SavedCourse{UserID: userID, CourseID: courseID}
	if err := s.db.Create(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest("ALREADY_SAVED", "Course already saved")
		}
		return err
	}
	return nil
}

func (s *CourseService) UnsaveCourse(courseID, userID uuid.UUID) error {
	res := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&models.SavedCourse{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.BadRequest("NOT_SAVED", "Course not saved")
	}
	return nil
}

type DepartmentSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CourseCount int64     `json:"course_count"`
}

func (s *CourseService) ListDepartments(schoolID uuid.UUID) ([]DepartmentSummary, error) {
	var departments []models.Department
	err := s.db.Where("school_id = ?", schoolID).Order("name ASC").Find(&departments).Error
	if err != nil {
		return nil, err
	}

	result := make([]DepartmentSummary, 0, len(departments))
	for _, dept := range departments {
		var count int64
		s.db.Model(&models.Course{}).Where("department_id = ?", dept.ID).Count(&count)
		result = append(result, DepartmentSummary{ID: dept.ID, Name: dept.Name, CourseCount: count})
	}
	return result, nil
}

func (s *CourseService) GetSavedCourses(userID uuid.UUID) ([]CourseWithStats, error) {
	var saved []models.SavedCourse
	err := s.db.Preload("Course.Department").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}

	result := make([]CourseWithStats, 0, len(saved))
	for _, sc := range saved {
		stats, err := s.courseStats(sc.CourseID)
		if err != nil {
			return nil, err
		}
		stats.Course = sc.Course
		result = append(result, *stats)
	}
	return result, nil
}
