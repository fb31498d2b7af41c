package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/models"
)

func day(now time.Time, offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func TestComputeStreaks(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		offsets []int
		current int
		longest int
		total   int
	}{
		{
			name:    "active run reaching today",
			offsets: []int{0, -1, -2, -5},
			current: 3,
			longest: 3,
			total:   4,
		},
		{
			name:    "run ended yesterday still counts",
			offsets: []int{-1, -2},
			current: 2,
			longest: 2,
			total:   2,
		},
		{
			name:    "stale run",
			offsets: []int{-3, -4, -5, -6},
			current: 0,
			longest: 4,
			total:   4,
		},
		{
			name:    "longest in the past beats current",
			offsets: []int{0, -4, -5, -6, -7, -8},
			current: 1,
			longest: 5,
			total:   6,
		},
		{
			name:    "multiple entries on one day collapse",
			offsets: []int{0, 0, 0, -1},
			current: 2,
			longest: 2,
			total:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timestamps := make([]time.Time, 0, len(tt.offsets))
			for _, offset := range tt.offsets {
				timestamps = append(timestamps, day(now, offset))
			}

			current, longest, total := computeStreaks(timestamps, now)
			assert.Equal(t, tt.current, current, "current streak")
			assert.Equal(t, tt.longest, longest, "longest streak")
			assert.Equal(t, tt.total, total, "total study days")
		})
	}
}

func TestGetStudyStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	empty, err := svc.GetStudyStreak(user.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.CurrentStreak)
	assert.Nil(t, empty.LastStudied)

	now := time.Now()
	for _, offset := range []int{0, -1, -2} {
		resource := models.StudyResource{
			UserID:   user.ID,
			CourseID: course.ID,
			Type:     models.ResourceTypeFlashcards,
			Title:    "daily set",
		}
		require.NoError(t, db.Create(&resource).Error)
		require.NoError(t, db.Model(&resource).UpdateColumn("created_at", day(now, offset)).Error)
	}

	streak, err := svc.GetStudyStreak(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 3, streak.LongestStreak)
	assert.Equal(t, 3, streak.TotalStudyDays)
	require.NotNil(t, streak.LastStudied)
}

func TestGetUserRank(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)

	school := seedSchool(t, db, "test.edu")
	reputations := []int{50, 30, 30, 10}
	users := make([]*models.User, 0, len(reputations))
	for i, rep := range reputations {
		user := seedUser(t, db, school.ID, string(rune('a'+i))+"@test.edu")
		require.NoError(t, db.Model(user).UpdateColumn("reputation_score", rep).Error)
		users = append(users, user)
	}

	// Tied users share the rank above the strictly-greater count.
	rank, err := svc.GetUserRank(users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rank.Rank)
	assert.Equal(t, int64(4), rank.TotalUsers)
	assert.Equal(t, 50, rank.Percentile)
	assert.Equal(t, 30, rank.Reputation)

	top, err := svc.GetUserRank(users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), top.Rank)
	assert.Equal(t, 75, top.Percentile)
}

func TestGetSchoolLeaderboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)

	school := seedSchool(t, db, "test.edu")
	otherSchool := seedSchool(t, db, "other.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	high := seedUser(t, db, school.ID, "high@test.edu")
	low := seedUser(t, db, school.ID, "low@test.edu")
	outsider := seedUser(t, db, otherSchool.ID, "out@other.edu")
	require.NoError(t, db.Model(high).UpdateColumn("reputation_score", 40).Error)
	require.NoError(t, db.Model(low).UpdateColumn("reputation_score", 15).Error)
	require.NoError(t, db.Model(outsider).UpdateColumn("reputation_score", 99).Error)

	seedReview(t, db, high.ID, course.ID)
	seedResource(t, db, high.ID, course.ID, models.ResourceTypeFlashcards)

	entries, err := svc.GetSchoolLeaderboard(school.ID, "all", 10)
	require.NoError(t, err)

	// Scoped to the school; the outsider never appears.
	require.Len(t, entries, 2)
	assert.Equal(t, high.ID, entries[0].ID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(2), entries[0].TotalContributions)
	assert.Equal(t, low.ID, entries[1].ID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestGetWeakAreas(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)
	votes := NewVoteService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	neglected := seedCourse(t, db, school.ID, "CS101")
	studied := seedCourse(t, db, school.ID, "CS102")

	require.NoError(t, db.Create(&models.SavedCourse{UserID: user.ID, CourseID: neglected.ID}).Error)
	require.NoError(t, db.Create(&models.SavedCourse{UserID: user.ID, CourseID: studied.ID}).Error)

	resource := seedResource(t, db, user.ID, studied.ID, models.ResourceTypeFlashcards)
	require.NoError(t, votes.IncrementUsage(resource.ID))

	areas, err := svc.GetWeakAreas(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, areas.TotalSavedCourses)
	require.Len(t, areas.CoursesNeedingAttention, 1)
	assert.Equal(t, neglected.ID, areas.CoursesNeedingAttention[0].ID)
	require.Len(t, areas.WellStudiedCourses, 1)
	assert.Equal(t, studied.ID, areas.WellStudiedCourses[0].ID)
	assert.Equal(t, int64(1), areas.WellStudiedCourses[0].ResourceCount)
}

func TestGetCourseInsights(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db)

	school := seedSchool(t, db, "test.edu")
	busy := seedCourse(t, db, school.ID, "CS101")
	quiet := seedCourse(t, db, school.ID, "CS102")

	for i := 0; i < 3; i++ {
		user := seedUser(t, db, school.ID, string(rune('a'+i))+"@test.edu")
		seedReview(t, db, user.ID, busy.ID)
		seedResource(t, db, user.ID, busy.ID, models.ResourceTypeFlashcards)
	}
	lone := seedUser(t, db, school.ID, "lone@test.edu")
	seedReview(t, db, lone.ID, quiet.ID)

	insights, err := svc.GetCourseInsights(school.ID)
	require.NoError(t, err)

	require.NotEmpty(t, insights.MostReviewed)
	assert.Equal(t, busy.ID, insights.MostReviewed[0].ID)
	assert.Equal(t, int64(3), insights.MostReviewed[0].ReviewCount)

	require.NotEmpty(t, insights.MostResourceful)
	assert.Equal(t, busy.ID, insights.MostResourceful[0].ID)

	// Everything was just created, so both courses are trending.
	assert.Len(t, insights.Trending, 2)
}

func TestGetUserStudyStats(t *testing.T) {
	db := newTestDB(t)
	resources := NewResourceService(db)
	votes := NewVoteService(db)
	svc := NewAnalyticsService(db)

	school := seedSchool(t, db, "test.edu")
	user := seedUser(t, db, school.ID, "student@test.edu")
	course := seedCourse(t, db, school.ID, "CS101")

	set, err := resources.CreateFlashcardSet(user.ID, course.ID, CreateFlashcardSetRequest{
		Title: "Set",
		Flashcards: []FlashcardInput{
			{Front: "a", Back: "1"},
			{Front: "b", Back: "2"},
			{Front: "c", Back: "3"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, votes.IncrementUsage(set.ID))

	stats, err := svc.GetUserStudyStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalFlashcardsCreated)
	assert.Equal(t, int64(1), stats.TotalFlashcardSets)
	assert.Equal(t, int64(1), stats.TotalResourcesUsed)
	assert.InDelta(t, 0.1, stats.EstimatedStudyHours, 0.001)
	require.NotNil(t, stats.MostUsedSet)
	assert.Equal(t, set.ID, stats.MostUsedSet.ID)
}
