package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseReview is a user's one-and-only review of a course. helpful_votes
// is denormalized and always matches the number of HelpfulVote rows.
type CourseReview struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_course_reviews_user_course"`
	CourseID           uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_course_reviews_user_course"`
	WorkloadRating     int       `json:"workload_rating" gorm:"not null;check:workload_rating >= 1 AND workload_rating <= 5"`
	DifficultyRating   int       `json:"difficulty_rating" gorm:"not null;check:difficulty_rating >= 1 AND difficulty_rating <= 5"`
	OverallRating      int       `json:"overall_rating" gorm:"not null;check:overall_rating >= 1 AND overall_rating <= 5"`
	ExamStyle          string    `json:"exam_style"`
	AttendanceRequired bool      `json:"attendance_required" gorm:"default:false"`
	ReviewText         string    `json:"review_text"`
	HelpfulVotes       int       `json:"helpful_votes" gorm:"default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	User   User   `json:"user,omitempty"`
	Course Course `json:"course,omitempty"`
}

func (r *CourseReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HelpfulVote is the per-user endorsement of a review. One row per
// (user, review) pair, enforced by the unique index.
type HelpfulVote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_helpful_votes_user_review"`
	ReviewID  uuid.UUID `json:"review_id" gorm:"type:uuid;not null;uniqueIndex:idx_helpful_votes_user_review"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *HelpfulVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
