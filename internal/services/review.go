package services

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

// ReviewService is the lifecycle manager for course reviews: one review
// per (user, course), ratings in [1,5], school-scoped writes.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &ReviewService{db: db}
}

type CreateReviewRequest struct {
	WorkloadRating     int    `json:"workload_rating" binding:"required"`
	DifficultyRating   int    `json:"difficulty_rating" binding:"required"`
	OverallRating      int    `json:"overall_rating" binding:"required"`
	ExamStyle          string `json:"exam_style"`
	AttendanceRequired bool   `json:"attendance_required"`
	ReviewText         string `json:"review_text"`
}

type UpdateReviewRequest struct {
	WorkloadRating     *int    `json:"workload_rating"`
	DifficultyRating   *int    `json:"difficulty_rating"`
	OverallRating      *int    `json:"overall_rating"`
	ExamStyle          *string `json:"exam_style"`
	AttendanceRequired *bool   `json:"attendance_required"`
	ReviewText         *string `json:"review_text"`
}

type ReviewWithStatus struct {
	models.CourseReview
	HasVoted bool `json:"has_voted"`
}

type ReviewListResponse struct {
	Reviews    []ReviewWithStatus `json:"reviews"`
	Pagination Pagination         `json:"pagination"`
}

type ListReviewsFilter struct {
	Sort  string `form:"sort"` // helpful or recent
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

type CourseReviewStats struct {
	ReviewCount               int64   `json:"review_count"`
	AverageOverallRating      float64 `json:"average_overall_rating"`
	AverageWorkloadRating     float64 `json:"average_workload_rating"`
	AverageDifficultyRating   float64 `json:"average_difficulty_rating"`
	AttendanceRequiredPercent int     `json:"attendance_required_percent"`
}

func (s *ReviewService) CreateReview(userID, courseID uuid.UUID, req CreateReviewRequest) (*models.CourseReview, error) {
	if !utils.IsValidRating(req.WorkloadRating) ||
		!utils.IsValidRating(req.DifficultyRating) ||
		!utils.IsValidRating(req.OverallRating) {
		return nil, utils.BadRequest("INVALID_RATING", "Ratings must be between 1 and 5")
	}

	var user models.User
	if err := s.db.Select("id", "school_id").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}

	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("COURSE_NOT_FOUND", "Course not found")
		}
		return nil, err
	}

	if course.SchoolID != user.SchoolID {
		return nil, utils.Forbidden("Cannot review courses from other schools")
	}

	var existing models.CourseReview
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return nil, utils.Conflict("ALREADY_REVIEWED", "You have already reviewed this course")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := models.CourseReview{
		UserID:             userID,
		CourseID:           courseID,
		WorkloadRating:     req.WorkloadRating,
		DifficultyRating:   req.DifficultyRating,
		OverallRating:      req.OverallRating,
		ExamStyle:          utils.SanitizeString(req.ExamStyle),
		AttendanceRequired: req.AttendanceRequired,
		ReviewText:         utils.SanitizeString(req.ReviewText),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", ReputationPerReview)).Error
	})
	if err != nil {
		// The unique (user_id, course_id) index backstops the pre-check
		// against a concurrent duplicate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.Conflict("ALREADY_REVIEWED", "You have already reviewed this course")
		}
		return nil, err
	}

	s.db.Preload("User").First(&review, "id = ?", review.ID)
	return &review, nil
}

func (s *ReviewService) GetReview(reviewID uuid.UUID, userID *uuid.UUID) (*ReviewWithStatus, error) {
	var review models.CourseReview
	err := s.db.Preload("User").Preload("Course").First(&review, "id = ?", reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Review not found")
		}
		return nil, err
	}

	result := ReviewWithStatus{CourseReview: review}
	if userID != nil {
		var votes int64
		s.db.Model(&models.HelpfulVote{}).
			Where("user_id = ? AND review_id = ?", *userID, reviewID).Count(&votes)
		result.HasVoted = votes > 0
	}
	return &result, nil
}

func (s *ReviewService) ListReviews(courseID uuid.UUID, filter ListReviewsFilter, userID *uuid.UUID) (*ReviewListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultReviewPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	order := "helpful_votes DESC"
	if filter.Sort == "recent" {
		order = "created_at DESC"
	}

	var total int64
	if err := s.db.Model(&models.CourseReview{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return nil, err
	}

	var reviews []models.CourseReview
	err := s.db.Preload("User").
		Where("course_id = ?", courseID).
		Order(order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	result := make([]ReviewWithStatus, 0, len(reviews))
	for _, review := range reviews {
		item := ReviewWithStatus{CourseReview: review}
		if userID != nil {
			var votes int64
			s.db.Model(&models.HelpfulVote{}).
				Where("user_id = ? AND review_id = ?", *userID, review.ID).Count(&votes)
			item.HasVoted = votes > 0
		}
		result = append(result, item)
	}

	return &ReviewListResponse{
		Reviews:    result,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *ReviewService) UpdateReview(reviewID, userID uuid.UUID, req UpdateReviewRequest) (*models.CourseReview, error) {
	var review models.CourseReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Review not found")
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, utils.Forbidden("You can only edit your own reviews")
	}

	for _, rating := range []*int{req.WorkloadRating, req.DifficultyRating, req.OverallRating} {
		if rating != nil && !utils.IsValidRating(*rating) {
			return nil, utils.BadRequest("INVALID_RATING", "Ratings must be between 1 and 5")
		}
	}

	updates := map[string]interface{}{}
	if req.WorkloadRating != nil {
		updates["workload_rating"] = *req.WorkloadRating
	}
	if req.DifficultyRating != nil {
		updates["difficulty_rating"] = *req.DifficultyRating
	}
	if req.OverallRating != nil {
		updates["overall_rating"] = *req.OverallRating
	}
	if req.ExamStyle != nil {
		updates["exam_style"] = utils.SanitizeString(*req.ExamStyle)
	}
	if req.AttendanceRequired != nil {
		updates["attendance_required"] = *req.AttendanceRequired
	}
	if req.ReviewText != nil {
		updates["review_text"] = utils.SanitizeString(*req.ReviewText)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&review).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.db.Preload("User").First(&review, "id = ?", reviewID)
	return &review, nil
}

// DeleteReview removes the review and its helpful-vote rows. The +10
// awarded on creation is kept.
func (s *ReviewService) DeleteReview(reviewID, userID uuid.UUID) error {
	var review models.CourseReview
	if err := s.db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Review not found")
		}
		return err
	}

	if review.UserID != userID {
		return utils.Forbidden("You can only delete your own reviews")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.HelpfulVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&review).Error
	})
}

func (s *ReviewService) GetCourseStats(courseID uuid.UUID) (*CourseReviewStats, error) {
	var reviews []models.CourseReview
	err := s.db.Select("workload_rating", "difficulty_rating", "overall_rating", "attendance_required").
		Where("course_id = ?", courseID).Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	stats := &CourseReviewStats{ReviewCount: int64(len(reviews))}
	if len(reviews) == 0 {
		return stats, nil
	}

	var workload, difficulty, overall, attendance int
	for _, r := range reviews {
		workload += r.WorkloadRating
		difficulty += r.DifficultyRating
		overall += r.OverallRating
		if r.AttendanceRequired {
			attendance++
		}
	}

	n := float64(len(reviews))
	stats.AverageOverallRating = roundToTenth(float64(overall) / n)
	stats.AverageWorkloadRating = roundToTenth(float64(workload) / n)
	stats.AverageDifficultyRating = roundToTenth(float64(difficulty) / n)
	stats.AttendanceRequiredPercent = int(math.Round(float64(attendance) / n * 100))
	return stats, nil
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
