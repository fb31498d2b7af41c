package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

// Reputation deltas. Awards are never reversed on unvote or delete; the
// removal operations only touch the denormalized counters.
const (
	ReputationPerReview       = 10
	ReputationPerResource     = 5
	ReputationPerVoteReceived = 1
)

// VoteService keeps at-most-one-vote-per-(user, target) state and the
// denormalized upvotes / helpful_votes / used_count counters consistent.
// Counters are only ever moved by in-store increments inside the same
// transaction as the join-row write.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &VoteService{db: db}
}

func (s *VoteService) CastUpvote(resourceID, userID uuid.UUID) error {
	var resource models.StudyResource
	if err := s.db.Select("id", "user_id").First(&resource, "id = ?", resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return err
	}

	var existing models.ResourceUpvote
	err := s.db.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&existing).Error
	if err == nil {
		return utils.BadRequest("ALREADY_UPVOTED", "Already upvoted")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		upvote := models.ResourceUpvote{UserID: userID, ResourceID: resourceID}
		if err := tx.Create(&upvote).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.StudyResource{}).Where("id = ?", resourceID).
			UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", resource.UserID).
			UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", ReputationPerVoteReceived)).Error
	})
	if err != nil {
		// Lost the race against a concurrent cast; the unique index wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest("ALREADY_UPVOTED", "Already upvoted")
		}
		return err
	}

	return nil
}

func (s *VoteService) RemoveUpvote(resourceID, userID uuid.UUID) error {
	var existing models.ResourceUpvote
	err := s.db.Where("user_id = ? AND resource_id = ?", userID, resourceID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest("NOT_UPVOTED", "Not upvoted")
		}
		return err
	}

	// The owner keeps the reputation point; only the counter goes back down.
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND resource_id = ?", userID, resourceID).
			Delete(&models.ResourceUpvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.BadRequest("NOT_UPVOTED", "Not upvoted")
		}
		return tx.Model(&models.StudyResource{}).Where("id = ?", resourceID).
			UpdateColumn("upvotes", gorm.Expr("upvotes - ?", 1)).Error
	})
}

func (s *VoteService) VoteHelpful(reviewID, userID uuid.UUID) error {
	var review models.CourseReview
	if err := s.db.Select("id", "user_id").First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "Review not found")
		}
		return err
	}

	if review.UserID == userID {
		return utils.BadRequest("CANNOT_VOTE_OWN", "Cannot vote on your own review")
	}

	var existing models.HelpfulVote
	err := s.db.Where("user_id = ? AND review_id = ?", userID, reviewID).First(&existing).Error
	if err == nil {
		return utils.BadRequest("ALREADY_VOTED", "Already voted")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		vote := models.HelpfulVote{UserID: userID, ReviewID: reviewID}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CourseReview{}).Where("id = ?", reviewID).
			UpdateColumn("helpful_votes", gorm.Expr("helpful_votes + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", review.UserID).
			UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", ReputationPerVoteReceived)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.BadRequest("ALREADY_VOTED", "Already voted")
		}
		return err
	}

	return nil
}

func (s *VoteService) RemoveHelpfulVote(reviewID, userID uuid.UUID) error {
	var existing models.HelpfulVote
	err := s.db.Where("user_id = ? AND review_id = ?", userID, reviewID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BadRequest("NOT_VOTED", "Vote not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND review_id = ?", userID, reviewID).
			Delete(&models.HelpfulVote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.BadRequest("NOT_VOTED", "Vote not found")
		}
		return tx.Model(&models.CourseReview{}).Where("id = ?", reviewID).
			UpdateColumn("helpful_votes", gorm.Expr("helpful_votes - ?", 1)).Error
	})
}

// IncrementUsage bumps used_count. Not a vote: every call counts, no
// authentication, no idempotency.
func (s *VoteService) IncrementUsage(resourceID uuid.UUID) error {
	res := s.db.Model(&models.StudyResource{}).Where("id = ?", resourceID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFound("NOT_FOUND", "Resource not found")
	}
	return nil
}
