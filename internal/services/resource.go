package services

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

const (
	DefaultReviewPageSize   = 10
	DefaultResourcePageSize = 20
	MaxPageSize             = 100
)

// ResourceService is the lifecycle manager for study resources: creation,
// mutation and deletion with ownership and school-scoping checks.
type ResourceService struct {
	db *gorm.DB
}

func NewResourceService(db *gorm.DB) *ResourceService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &ResourceService{db: db}
}

type FlashcardInput struct {
	Front string `json:"front" binding:"required"`
	Back  string `json:"back" binding:"required"`
}

type CreateFlashcardSetRequest struct {
	Title      string           `json:"title" binding:"required"`
	ExamTag    string           `json:"exam_tag"`
	Flashcards []FlashcardInput `json:"flashcards" binding:"required,min=1,dive"`
}

type UpdateResourceRequest struct {
	Title      *string          `json:"title"`
	ExamTag    *string          `json:"exam_tag"`
	Flashcards []FlashcardInput `json:"flashcards"`
}

type CreateNotesRequest struct {
	Title   string `json:"title" binding:"required"`
	ExamTag string `json:"exam_tag"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

type ResourceWithStatus struct {
	models.StudyResource
	FlashcardCount int  `json:"flashcard_count"`
	HasUpvoted     bool `json:"has_upvoted"`
	IsSaved        bool `json:"is_saved"`
}

type ResourceListResponse struct {
	Resources  []ResourceWithStatus `json:"resources"`
	Pagination Pagination           `json:"pagination"`
}

type ListResourcesFilter struct {
	ExamTag string `form:"exam_tag"`
	Sort    string `form:"sort"` // popular or recent
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

func (f *ListResourcesFilter) normalize(defaultSort string) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultResourcePageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Sort != "popular" && f.Sort != "recent" {
		f.Sort = defaultSort
	}
}

// checkSchoolScope loads the course and rejects cross-school writes.
func (s *ResourceService) checkSchoolScope(userID, courseID uuid.UUID) (*models.Course, error) {
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
		return nil, utils.Forbidden("Cannot create resources for courses from other schools")
	}

	return &course, nil
}

func (s *ResourceService) CreateFlashcardSet(userID, courseID uuid.UUID, req CreateFlashcardSetRequest) (*models.StudyResource, error) {
	if _, err := s.checkSchoolScope(userID, courseID); err != nil {
		return nil, err
	}

	resource := models.StudyResource{
		UserID:   userID,
		CourseID: courseID,
		Type:     models.ResourceTypeFlashcards,
		Title:    utils.SanitizeString(req.Title),
		ExamTag:  utils.SanitizeString(req.ExamTag),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&resource).Error; err != nil {
			return err
		}
		for i, card := range req.Flashcards {
			fc := models.Flashcard{
				ResourceID: resource.ID,
				Front:      utils.SanitizeString(card.Front),
				Back:       utils.SanitizeString(card.Back),
				Order:      i,
			}
			if err := tx.Create(&fc).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", ReputationPerResource)).Error
	})
	if err != nil {
		return nil, err
	}

	return s.loadResource(resource.ID)
}

func (s *ResourceService) CreateNotesResource(userID, courseID uuid.UUID, req CreateNotesRequest) (*models.StudyResource, error) {
	if _, err := s.checkSchoolScope(userID, courseID); err != nil {
		return nil, err
	}

	resource := models.StudyResource{
		UserID:   userID,
		CourseID: courseID,
		Type:     models.ResourceTypeNotes,
		Title:    utils.SanitizeString(req.Title),
		ExamTag:  utils.SanitizeString(req.ExamTag),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&resource).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", ReputationPerResource)).Error
	})
	if err != nil {
		return nil, err
	}

	return s.loadResource(resource.ID)
}

func (s *ResourceService) loadResource(resourceID uuid.UUID) (*models.StudyResource, error) {
	var resource models.StudyResource
	err := s.db.
		Preload("Flashcards", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Files").
		Preload("User").
		Preload("Course").
		First(&resource, "id = ?", resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return nil, err
	}
	return &resource, nil
}

// GetResource returns one resource with its cards in order plus the
// caller's upvote/save status when authenticated.
func (s *ResourceService) GetResource(resourceID uuid.UUID, userID *uuid.UUID) (*ResourceWithStatus, error) {
	resource, err := s.loadResource(resourceID)
	if err != nil {
		return nil, err
	}

	result := ResourceWithStatus{
		StudyResource:  *resource,
		FlashcardCount: len(resource.Flashcards),
	}
	if userID != nil {
		result.HasUpvoted, result.IsSaved = s.voteAndSaveStatus(resourceID, *userID)
	}
	return &result, nil
}

func (s *ResourceService) voteAndSaveStatus(resourceID, userID uuid.UUID) (hasUpvoted, isSaved bool) {
	var upvotes int64
	s.db.Model(&models.ResourceUpvote{}).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).Count(&upvotes)
	var saves int64
	s.db.Model(&models.SavedResource{}).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).Count(&saves)
	return upvotes > 0, saves > 0
}

func (s *ResourceService) ListFlashcardSets(courseID uuid.UUID, filter ListResourcesFilter, userID *uuid.UUID) (*ResourceListResponse, error) {
	filter.normalize("popular")
	return s.listResources(courseID, models.ResourceTypeFlashcards, filter, userID)
}

func (s *ResourceService) ListNotes(courseID uuid.UUID, filter ListResourcesFilter, userID *uuid.UUID) (*ResourceListResponse, error) {
	filter.normalize("recent")
	return s.listResources(courseID, models.ResourceTypeNotes, filter, userID)
}

func (s *ResourceService) listResources(courseID uuid.UUID, resourceType string, filter ListResourcesFilter, userID *uuid.UUID) (*ResourceListResponse, error) {
	query := s.db.Model(&models.StudyResource{}).
		Where("course_id = ? AND type = ?", courseID, resourceType)
	if filter.ExamTag != "" {
		query = query.Where("exam_tag = ?", filter.ExamTag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	order := "created_at DESC"
	if filter.Sort == "popular" {
		order = "upvotes DESC, used_count DESC"
	}

	var resources []models.StudyResource
	err := query.
		Preload("User").
		Preload("Course").
		Order(order).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&resources).Error
	if err != nil {
		return nil, err
	}

	result := make([]ResourceWithStatus, 0, len(resources))
	for _, resource := range resources {
		var cardCount int64
		s.db.Model(&models.Flashcard{}).Where("resource_id = ?", resource.ID).Count(&cardCount)

		item := ResourceWithStatus{
			StudyResource:  resource,
			FlashcardCount: int(cardCount),
		}
		if userID != nil {
			item.HasUpvoted, item.IsSaved = s.voteAndSaveStatus(resource.ID, *userID)
		}
		result = append(result, item)
	}

	return &ResourceListResponse{
		Resources:  result,
		Pagination: newPagination(filter.Page, filter.Limit, total),
	}, nil
}

// UpdateResource patches title/exam tag and, when a card list is supplied,
// replaces the whole child set. No diffing: delete all, recreate with
// position derived from array index.
func (s *ResourceService) UpdateResource(resourceID, userID uuid.UUID, req UpdateResourceRequest) (*models.StudyResource, error) {
	var resource models.StudyResource
	if err := s.db.First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return nil, err
	}

	if resource.UserID != userID {
		return nil, utils.Forbidden("You can only edit your own resources")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = utils.SanitizeString(*req.Title)
	}
	if req.ExamTag != nil {
		updates["exam_tag"] = utils.SanitizeString(*req.ExamTag)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&resource).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Flashcards != nil {
			if err := tx.Where("resource_id = ?", resourceID).Delete(&models.Flashcard{}).Error; err != nil {
				return err
			}
			for i, card := range req.Flashcards {
				fc := models.Flashcard{
					ResourceID: resourceID,
					Front:      utils.SanitizeString(card.Front),
					Back:       utils.SanitizeString(card.Back),
					Order:      i,
				}
				if err := tx.Create(&fc).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadResource(resourceID)
}

// DeleteResource removes the resource and everything hanging off it:
// flashcards, uploaded file records, upvote rows and saved-resource rows.
// Awarded reputation stays with the creator.
func (s *ResourceService) DeleteResource(resourceID, userID uuid.UUID) error {
	var resource models.StudyResource
	if err := s.db.First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return err
	}

	if resource.UserID != userID {
		return utils.Forbidden("You can only delete your own resources")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.Flashcard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.UploadedFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.ResourceUpvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&models.SavedResource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&resource).Error
	})
}
