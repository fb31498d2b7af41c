package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/models"
)

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")
	seedReview(t, db, user.ID, course.ID)
	seedResource(t, db, user.ID, course.ID, models.ResourceTypeFlashcards)

	profile, err := svc.GetProfile(user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, int64(1), profile.ReviewCount)
	assert.Equal(t, int64(1), profile.ResourceCount)

	_, err = svc.GetProfile(uuid.New())
	assert.Equal(t, "USER_NOT_FOUND", appErrCode(t, err))
}

func TestSaveAndUnsaveResource(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	school := seedSchool(t, db, "test.edu")
	owner := seedUser(t, db, school.ID, "owner@test.edu")
	saver := seedUser(t, db, school.ID, "saver@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")
	resource := seedResource(t, db, owner.ID, course.ID, models.ResourceTypeFlashcards)

	require.NoError(t, svc.SaveResource(resource.ID, saver.ID))

	err := svc.SaveResource(resource.ID, saver.ID)
	assert.Equal(t, "ALREADY_SAVED", appErrCode(t, err))

	saved, err := svc.GetSavedResources(saver.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, resource.ID, saved[0].ID)

	require.NoError(t, svc.UnsaveResource(resource.ID, saver.ID))

	err = svc.UnsaveResource(resource.ID, saver.ID)
	assert.Equal(t, "NOT_SAVED", appErrCode(t, err))
}

func TestGetUserResourcesTypeFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")
	flashcards := seedResource(t, db, user.ID, course.ID, models.ResourceTypeFlashcards)
	seedResource(t, db, user.ID, course.ID, models.ResourceTypeNotes)

	all, err := svc.GetUserResources(user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyFlashcards, err := svc.GetUserResources(user.ID, models.ResourceTypeFlashcards)
	require.NoError(t, err)
	require.Len(t, onlyFlashcards, 1)
	assert.Equal(t, flashcards.ID, onlyFlashcards[0].ID)
}

func TestGetReputationBreakdown(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	votes := NewVoteService(db)
	reviews := NewReviewService(db)
	resources := NewResourceService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	voter := seedUser(t, db, school.ID, "voter@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	review, err := reviews.CreateReview(user.ID, course.ID, CreateReviewRequest{
		WorkloadRating: 3, DifficultyRating: 3, OverallRating: 4,
	})
	require.NoError(t, err)

	resource, err := resources.CreateFlashcardSet(user.ID, course.ID, CreateFlashcardSetRequest{
		Title:      "Set",
		Flashcards: []FlashcardInput{{Front: "a", Back: "1"}},
	})
	require.NoError(t, err)

	require.NoError(t, votes.VoteHelpful(review.ID, voter.ID))
	require.NoError(t, votes.CastUpvote(resource.ID, voter.ID))

	breakdown, err := svc.GetReputationBreakdown(user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), breakdown.FromReviews.Count)
	assert.Equal(t, int64(ReputationPerReview), breakdown.FromReviews.Points)
	assert.Equal(t, int64(1), breakdown.FromResources.Count)
	assert.Equal(t, int64(ReputationPerResource), breakdown.FromResources.Points)
	assert.Equal(t, int64(1), breakdown.FromHelpfulVotes.Count)
	assert.Equal(t, int64(1), breakdown.FromResourceUpvotes.Count)
	assert.Equal(t, int64(17), breakdown.Total)

	// Breakdown agrees with the stored score while nothing was deleted.
	assert.Equal(t, 17, reputationOf(t, db, user.ID))
}

func TestGetActivityStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	votes := NewVoteService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	voter := seedUser(t, db, school.ID, "voter@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	resource := seedResource(t, db, user.ID, course.ID, models.ResourceTypeFlashcards)
	require.NoError(t, votes.CastUpvote(resource.ID, voter.ID))

	stats, err := svc.GetActivityStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.ResourceCount)
	assert.Equal(t, int64(1), stats.UpvotesReceived)
	assert.Equal(t, 1, stats.Reputation)
}
