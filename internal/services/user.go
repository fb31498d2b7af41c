package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &UserService{db: db}
}

type UserProfile struct {
	models.User
	ReviewCount        int64 `json:"review_count"`
	ResourceCount      int64 `json:"resource_count"`
	SavedCourseCount   int64 `json:"saved_course_count"`
	SavedResourceCount int64 `json:"saved_resource_count"`
}

func (s *UserService) GetProfile(userID uuid.UUID) (*UserProfile, error) {
	var user models.User
	err := s.db.Preload("School").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}

	profile := &UserProfile{User: user}
	s.db.Model(&models.CourseReview{}).Where("user_id = ?", userID).Count(&profile.ReviewCount)
	s.db.Model(&models.StudyResource{}).Where("user_id = ?", userID).Count(&profile.ResourceCount)
	s.db.Model(&models.SavedCourse{}).Where("user_id = ?", userID).Count(&profile.SavedCourseCount)
	s.db.Model(&models.SavedResource{}).Where("user_id = ?", userID).Count(&profile.SavedResourceCount)
	return profile, nil
}

func (s *UserService) GetUserReviews(userID uuid.UUID) ([]models.CourseReview, error) {
	var reviews []models.CourseReview
	err := s.db.Preload("Course.Department").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *UserService) GetUserResources(userID uuid.UUID, resourceType string) ([]ResourceWithStatus, error) {
	query := s.db.Preload("Course").Where("user_id = ?", userID)
	if resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []models.StudyResource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return nil, err
	}

	result := make([]ResourceWithStatus, 0, len(resources))
	for _, resource := range resources {
		var cardCount int64
		s.db.Model(&models.Flashcard{}).Where("resource_id = ?", resource.ID).Count(&cardCount)
		result = append(result, ResourceWithStatus{
			StudyResource:  resource,
			FlashcardCount: int(cardCount),
		})
	}
	return result, nil
}

func (s *UserService) GetSavedResources(userID uuid.UUID) ([]ResourceWithStatus, error) {
	var saved []models.SavedResource
	err := s.db.Preload("Resource.Course").Preload("Resource.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, err
	}

	result := make([]ResourceWithStatus, 0, len(saved))
	for _, sr := range saved {
		var cardCount int64
		s.db.Model(&models.Flashcard{}).Where("resource_id = ?", sr.ResourceID).Count(&cardCount)
		result = append(result, ResourceWithStatus{
			StudyResource:  sr.Resource,
			FlashcardCount: int(cardCount),
			IsSaved:        true,
		})
	}
	return result, nil
}

func (s *UserService) SaveResource(resourceID, userID uuid.UUID) error {
	var resource models.StudyResource
	if err := s.db.Select("id").First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return err
	}

	var existing models.SavedResource
	err := s.db.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&existing).Error
	if err == nil {
		return utils.BadRequest("ALREADY_SAVED", "Resource already saved")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	saved := models.SavedResource{UserID: userID, ResourceID: resourceID}
	if err := s.db.Create(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest("ALREADY_SAVED", "Resource already saved")
		}
		return err
	}
	return nil
}

func (s *UserService) UnsaveResource(resourceID, userID uuid.UUID) error {
	res := s.db.Where("user_id = ? AND resource_id = ?", userID, resourceID).Delete(&models.SavedResource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.BadRequest("NOT_SAVED", "Resource not saved")
	}
	return nil
}

type ReputationSource struct {
	Count   int64 `json:"count"`
	Points  int64 `json:"points"`
	PerItem int   `json:"per_item"`
}

type ReputationBreakdown struct {
	FromReviews         ReputationSource `json:"from_reviews"`
	FromHelpfulVotes    ReputationSource `json:"from_helpful_votes"`
	FromResources       ReputationSource `json:"from_resources"`
	FromResourceUpvotes ReputationSource `json:"from_resource_upvotes"`
	Total               int64            `json:"total"`
}

// GetReputationBreakdown recomputes the score from its sources. Because
// awards are never revoked, this can lag the stored reputation_score after
// deletions or unvotes; the stored score stays authoritative.
func (s *UserService) GetReputationBreakdown(userID uuid.UUID) (*ReputationBreakdown, error) {
	var reviews, helpfulVotes, resources, upvotes int64

	if err := s.db.Model(&models.CourseReview{}).Where("user_id = ?", userID).Count(&reviews).Error; err != nil {
		return nil, err
	}
	s.db.Model(&models.HelpfulVote{}).
		Joins("JOIN course_reviews ON course_reviews.id = helpful_votes.review_id").
		Where("course_reviews.user_id = ?", userID).
		Count(&helpfulVotes)
	s.db.Model(&models.StudyResource{}).Where("user_id = ?", userID).Count(&resources)
	s.db.Model(&models.ResourceUpvote{}).
		Joins("JOIN study_resources ON study_resources.id = resource_upvotes.resource_id").
		Where("study_resources.user_id = ?", userID).
		Count(&upvotes)

	breakdown := &ReputationBreakdown{
		FromReviews:         ReputationSource{Count: reviews, Points: reviews * ReputationPerReview, PerItem: ReputationPerReview},
		FromHelpfulVotes:    ReputationSource{Count: helpfulVotes, Points: helpfulVotes * ReputationPerVoteReceived, PerItem: ReputationPerVoteReceived},
		FromResources:       ReputationSource{Count: resources, Points: resources * ReputationPerResource, PerItem: ReputationPerResource},
		FromResourceUpvotes: ReputationSource{Count: upvotes, Points: upvotes * ReputationPerVoteReceived, PerItem: ReputationPerVoteReceived},
	}
	breakdown.Total = breakdown.FromReviews.Points +
		breakdown.FromHelpfulVotes.Points +
		breakdown.FromResources.Points +
		breakdown.FromResourceUpvotes.Points
	return breakdown, nil
}

type ActivityStats struct {
	ReviewCount          int64 `json:"review_count"`
	ResourceCount        int64 `json:"resource_count"`
	UpvotesReceived      int64 `json:"upvotes_received"`
	HelpfulVotesReceived int64 `json:"helpful_votes_received"`
	Reputation           int   `json:"reputation"`
}

func (s *UserService) GetActivityStats(userID uuid.UUID) (*ActivityStats, error) {
	var user models.User
	if err := s.db.Select("id", "reputation_score").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}

	stats := &ActivityStats{Reputation: user.ReputationScore}
	s.db.Model(&models.CourseReview{}).Where("user_id = ?", userID).Count(&stats.ReviewCount)
	s.db.Model(&models.StudyResource{}).Where("user_id = ?", userID).Count(&stats.ResourceCount)
	s.db.Model(&models.ResourceUpvote{}).
		Joins("JOIN study_resources ON study_resources.id = resource_upvotes.resource_id").
		Where("study_resources.user_id = ?", userID).
		Count(&stats.UpvotesReceived)
	s.db.Model(&models.HelpfulVote{}).
		Joins("JOIN course_reviews ON course_reviews.id = helpful_votes.review_id").
		Where("course_reviews.user_id = ?", userID).
		Count(&stats.HelpfulVotesReceived)
	return stats, nil
}
