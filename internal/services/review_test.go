package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/models"
)

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	review, err := svc.CreateReview(user.ID, course.ID, CreateReviewRequest{
		WorkloadRating:     4,
		DifficultyRating:   3,
		OverallRating:      5,
		ExamStyle:          "open book",
		AttendanceRequired: true,
		ReviewText:         "Great course",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, review.OverallRating)
	assert.Equal(t, ReputationPerReview, reputationOf(t, db, user.ID))
}

func TestCreateReviewInvalidRating(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateReview(user.ID, course.ID, CreateReviewRequest{
			WorkloadRating:   rating,
			DifficultyRating: 3,
			OverallRating:    3,
		})
		assert.Equal(t, "INVALID_RATING", appErrCode(t, err))
	}
	assert.Equal(t, 0, reputationOf(t, db, user.ID))
}

func TestCreateReviewDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	req := CreateReviewRequest{WorkloadRating: 3, DifficultyRating: 3, OverallRating: 3}
	_, err := svc.CreateReview(user.ID, course.ID, req)
	require.NoError(t, err)

	_, err = svc.CreateReview(user.ID, course.ID, req)
	assert.Equal(t, "ALREADY_REVIEWED", appErrCode(t, err))
	assert.Equal(t, ReputationPerReview, reputationOf(t, db, user.ID))
}

func TestCreateReviewCrossSchoolRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	schoolA := seedSchool(t, db, "a.edu")
	schoolB := seedSchool(t, db, "b.edu")
	user := seedUser(t, db, schoolA.ID, "student@a.edu")
	course := seedCourse(t, db, schoolB.ID, "CS101")

	_, err := svc.CreateReview(user.ID, course.ID, CreateReviewRequest{
		WorkloadRating: 3, DifficultyRating: 3, OverallRating: 3,
	})
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestUpdateReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	other := seedUser(t, db, school.ID, "other@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")
	review := seedReview(t, db, user.ID, course.ID)

	newRating := 5
	updated, err := svc.UpdateReview(review.ID, user.ID, UpdateReviewRequest{OverallRating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.OverallRating)
	// Untouched fields keep their values.
	assert.Equal(t, 3, updated.WorkloadRating)

	bad := 9
	_, err = svc.UpdateReview(review.ID, user.ID, UpdateReviewRequest{WorkloadRating: &bad})
	assert.Equal(t, "INVALID_RATING", appErrCode(t, err))

	_, err = svc.UpdateReview(review.ID, other.ID, UpdateReviewRequest{OverallRating: &newRating})
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestDeleteReviewKeepsReputation(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	votes := NewVoteService(db)

	school := seedSchool(t, db, "test.edu")
	author := seedUser(t, db, school.ID, "author@test.edu")
	voter := seedUser(t, db, school.ID, "voter@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	review, err := svc.CreateReview(author.ID, course.ID, CreateReviewRequest{
		WorkloadRating: 3, DifficultyRating: 3, OverallRating: 4,
	})
	require.NoError(t, err)
	require.NoError(t, votes.VoteHelpful(review.ID, voter.ID))

	require.NoError(t, svc.DeleteReview(review.ID, author.ID))

	var votesLeft int64
	db.Model(&models.HelpfulVote{}).Where("review_id = ?", review.ID).Count(&votesLeft)
	assert.Zero(t, votesLeft)
	assert.Equal(t, ReputationPerReview+ReputationPerVoteReceived, reputationOf(t, db, author.ID))

	// Deleting frees the slot: the author can review the course again.
	_, err = svc.CreateReview(author.ID, course.ID, CreateReviewRequest{
		WorkloadRating: 2, DifficultyRating: 2, OverallRating: 2,
	})
	require.NoError(t, err)
}

func TestListReviewsSort(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)
	votes := NewVoteService(db)

	school := seedSchool(t, db, "test.edu")
	first := seedUser(t, db, school.ID, "first@test.edu")
	second := seedUser(t, db, school.ID, "second@test.edu")
	voter := seedUser(t, db, school.ID, "voter@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	seedReview(t, db, first.ID, course.ID)
	helpful := seedReview(t, db, second.ID, course.ID)
	require.NoError(t, votes.VoteHelpful(helpful.ID, voter.ID))

	resp, err := svc.ListReviews(course.ID, ListReviewsFilter{}, &voter.ID)
	require.NoError(t, err)

	// Default sort is by helpful votes.
	require.Len(t, resp.Reviews, 2)
	assert.Equal(t, helpful.ID, resp.Reviews[0].ID)
	assert.True(t, resp.Reviews[0].HasVoted)
	assert.False(t, resp.Reviews[1].HasVoted)
	assert.Equal(t, DefaultReviewPageSize, resp.Pagination.Limit)
}

func TestGetCourseStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	school := seedSchool(t, db, "test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	empty, err := svc.GetCourseStats(course.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.ReviewCount)
	assert.Zero(t, empty.AverageOverallRating)

	users := []*models.User{
		seedUser(t, db, school.ID, "a@test.edu"),
		seedUser(t, db, school.ID, "b@test.edu"),
		seedUser(t, db, school.ID, "c@test.edu"),
	}
	ratings := []struct {
		overall    int
		attendance bool
	}{
		{5, true}, {4, true}, {2, false},
	}
	for i, user := range users {
		review := models.CourseReview{
			UserID:             user.ID,
			CourseID:           course.ID,
			WorkloadRating:     3,
			DifficultyRating:   3,
			OverallRating:      ratings[i].overall,
			AttendanceRequired: ratings[i].attendance,
		}
		require.NoError(t, db.Create(&review).Error)
	}

	stats, err := svc.GetCourseStats(course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.ReviewCount)
	assert.InDelta(t, 3.7, stats.AverageOverallRating, 0.001)
	assert.Equal(t, 67, stats.AttendanceRequiredPercent)
}
