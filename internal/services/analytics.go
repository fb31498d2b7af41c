package services

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/gorm"
)

// AnalyticsService derives streaks, leaderboards, rank and weak areas from
// persisted state on demand. It holds no state of its own.
type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &AnalyticsService{db: db}
}

type StudyStreak struct {
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastStudied    *time.Time `json:"last_studied"`
	TotalStudyDays int        `json:"total_study_days"`
}

// GetStudyStreak uses resource-creation dates as the "studied that day"
// signal. Two dates are consecutive iff their calendar-day difference is
// exactly 1; the current streak must reach today or yesterday.
func (s *AnalyticsService) GetStudyStreak(userID uuid.UUID) (*StudyStreak, error) {
	var timestamps []time.Time
	err := s.db.Model(&models.StudyResource{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return nil, err
	}

	if len(timestamps) == 0 {
		return &StudyStreak{}, nil
	}

	current, longest, totalDays := computeStreaks(timestamps, time.Now())
	last := timestamps[0]
	return &StudyStreak{
		CurrentStreak:  current,
		LongestStreak:  longest,
		LastStudied:    &last,
		TotalStudyDays: totalDays,
	}, nil
}

// computeStreaks collapses timestamps to distinct UTC calendar days and
// walks consecutive-day runs.
func computeStreaks(timestamps []time.Time, now time.Time) (current, longest, totalDays int) {
	daySet := make(map[int]struct{}, len(timestamps))
	for _, ts := range timestamps {
		daySet[calendarDay(ts)] = struct{}{}
	}

	days := make([]int, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	today := calendarDay(now)
	if len(days) > 0 && (days[0] == today || days[0] == today-1) {
		current = 1
		for i := 1; i < len(days); i++ {
			if days[i-1]-days[i] == 1 {
				current++
			} else {
				break
			}
		}
	}

	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			if run > longest {
				longest = run
			}
			run = 1
		}
	}
	if run > longest {
		longest = run
	}

	return current, longest, len(days)
}

func calendarDay(t time.Time) int {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix() / 86400)
}

type LeaderboardEntry struct {
	Rank               int       `json:"rank"`
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Reputation         int       `json:"reputation"`
	ReviewCount        int64     `json:"review_count"`
	ResourceCount      int64     `json:"resource_count"`
	TotalContributions int64     `json:"total_contributions"`
}

// GetSchoolLeaderboard ranks a school's users by reputation. The week and
// month timeframes filter on account creation date, not activity date,
// matching the shipped behavior.
func (s *AnalyticsService) GetSchoolLeaderboard(schoolID uuid.UUID, timeframe string, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := s.db.Model(&models.User{}).Where("school_id = ?", schoolID)
	switch timeframe {
	case "week":
		query = query.Where("created_at >= ?", time.Now().Add(-7*24*time.Hour))
	case "month":
		query = query.Where("created_at >= ?", time.Now().Add(-30*24*time.Hour))
	}

	var users []models.User
	if err := query.Order("reputation_score DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, user := range users {
		var reviewCount, resourceCount int64
		s.db.Model(&models.CourseReview{}).Where("user_id = ?", user.ID).Count(&reviewCount)
		s.db.Model(&models.StudyResource{}).Where("user_id = ?", user.ID).Count(&resourceCount)

		entries = append(entries, LeaderboardEntry{
			Rank:               i + 1,
			ID:                 user.ID,
			Name:               user.Name,
			Reputation:         user.ReputationScore,
			ReviewCount:        reviewCount,
			ResourceCount:      resourceCount,
			TotalContributions: reviewCount + resourceCount,
		})
	}

	return entries, nil
}

type UserRank struct {
	Rank       int64 `json:"rank"`
	TotalUsers int64 `json:"total_users"`
	Percentile int   `json:"percentile"`
	Reputation int   `json:"reputation"`
}

// GetUserRank: rank = 1 + school-mates with strictly greater reputation;
// percentile = round(100 * (total - rank) / total).
func (s *AnalyticsService) GetUserRank(userID uuid.UUID) (*UserRank, error) {
	var user models.User
	if err := s.db.Select("id", "school_id", "reputation_score").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}

	var above, total int64
	if err := s.db.Model(&models.User{}).
		Where("school_id = ? AND reputation_score > ?", user.SchoolID, user.ReputationScore).
		Count(&above).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("school_id = ?", user.SchoolID).Count(&total).Error; err != nil {
		return nil, err
	}

	rank := above + 1
	percentile := 0
	if total > 0 {
		percentile = int(math.Round(float64(total-rank) / float64(total) * 100))
	}

	return &UserRank{
		Rank:       rank,
		TotalUsers: total,
		Percentile: percentile,
		Reputation: user.ReputationScore,
	}, nil
}

type CourseSummary struct {
	ID         uuid.UUID `json:"id"`
	CourseCode string    `json:"course_code"`
	Title      string    `json:"title"`
}

type WellStudiedCourse struct {
	CourseSummary
	ResourceCount int64 `json:"resource_count"`
}

type WeakAreas struct {
	CoursesNeedingAttention []CourseSummary     `json:"courses_needing_attention"`
	WellStudiedCourses      []WellStudiedCourse `json:"well_studied_courses"`
	TotalSavedCourses       int                 `json:"total_saved_courses"`
}

// GetWeakAreas flags each saved course: "needs attention" when the user has
// neither reviewed it nor created a resource for it, "well studied" when
// they own at least one resource and at least one of theirs has been used.
func (s *AnalyticsService) GetWeakAreas(userID uuid.UUID) (*WeakAreas, error) {
	var saved []models.SavedCourse
	if err := s.db.Preload("Course").Where("user_id = ?", userID).Find(&saved).Error; err != nil {
		return nil, err
	}

	result := &WeakAreas{
		CoursesNeedingAttention: []CourseSummary{},
		WellStudiedCourses:      []WellStudiedCourse{},
		TotalSavedCourses:       len(saved),
	}

	for _, sc := range saved {
		summary := CourseSummary{
			ID:         sc.Course.ID,
			CourseCode: sc.Course.CourseCode,
			Title:      sc.Course.Title,
		}

		var reviewCount, resourceCount, usedCount int64
		s.db.Model(&models.CourseReview{}).
			Where("course_id = ? AND user_id = ?", sc.CourseID, userID).Count(&reviewCount)
		s.db.Model(&models.StudyResource{}).
			Where("course_id = ? AND user_id = ?", sc.CourseID, userID).Count(&resourceCount)
		s.db.Model(&models.StudyResource{}).
			Where("course_id = ? AND user_id = ? AND used_count > 0", sc.CourseID, userID).Count(&usedCount)

		if reviewCount == 0 && resourceCount == 0 {
			result.CoursesNeedingAttention = append(result.CoursesNeedingAttention, summary)
		}
		if resourceCount > 0 && usedCount > 0 {
			result.WellStudiedCourses = append(result.WellStudiedCourses, WellStudiedCourse{
				CourseSummary: summary,
				ResourceCount: resourceCount,
			})
		}
	}

	return result, nil
}

type CourseActivity struct {
	CourseSummary
	ReviewCount   int64 `json:"review_count"`
	ResourceCount int64 `json:"resource_count"`
	ActivityCount int64 `json:"activity_count"`
}

type CourseInsights struct {
	MostReviewed    []CourseActivity `json:"most_reviewed"`
	MostResourceful []CourseActivity `json:"most_resourceful"`
	Trending        []CourseActivity `json:"trending"`
}

const insightListSize = 5

// GetCourseInsights is school-wide: top 5 most-reviewed, top 5 with the
// most resources, and courses with any activity in the last 7 days.
func (s *AnalyticsService) GetCourseInsights(schoolID uuid.UUID) (*CourseInsights, error) {
	mostReviewed, err := s.topCoursesBy(schoolID, "course_reviews")
	if err != nil {
		return nil, err
	}
	mostResourceful, err := s.topCoursesBy(schoolID, "study_resources")
	if err != nil {
		return nil, err
	}
	trending, err := s.trendingCourses(schoolID)
	if err != nil {
		return nil, err
	}

	return &CourseInsights{
		MostReviewed:    mostReviewed,
		MostResourceful: mostResourceful,
		Trending:        trending,
	}, nil
}

type courseCountRow struct {
	CourseID uuid.UUID
	Cnt      int64
}

func (s *AnalyticsService) topCoursesBy(schoolID uuid.UUID, table string) ([]CourseActivity, error) {
	var rows []courseCountRow
	err := s.db.Table(table).
		Select(table+".course_id AS course_id, COUNT(*) AS cnt").
		Joins("JOIN courses ON courses.id = "+table+".course_id").
		Where("courses.school_id = ?", schoolID).
		Group(table + ".course_id").
		Order("cnt DESC").
		Limit(insightListSize).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]CourseActivity, 0, len(rows))
	for _, row := range rows {
		activity, err := s.courseActivity(row.CourseID)
		if err != nil {
			return nil, err
		}
		result = append(result, *activity)
	}
	return result, nil
}

func (s *AnalyticsService) trendingCourses(schoolID uuid.UUID) ([]CourseActivity, error) {
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	courseIDs := []uuid.UUID{}
	seen := map[uuid.UUID]struct{}{}

	for _, table := range []string{"course_reviews", "study_resources"} {
		var ids []uuid.UUID
		err := s.db.Table(table).
			Distinct(table+".course_id").
			Joins("JOIN courses ON courses.id = "+table+".course_id").
			Where("courses.school_id = ? AND "+table+".created_at >= ?", schoolID, cutoff).
			Pluck(table+".course_id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				courseIDs = append(courseIDs, id)
			}
		}
	}

	if len(courseIDs) > insightListSize {
		courseIDs = courseIDs[:insightListSize]
	}

	result := make([]CourseActivity, 0, len(courseIDs))
	for _, id := range courseIDs {
		activity, err := s.courseActivity(id)
		if err != nil {
			return nil, err
		}
		result = append(result, *activity)
	}
	return result, nil
}

func (s *AnalyticsService) courseActivity(courseID uuid.UUID) (*CourseActivity, error) {
	var course models.Course
	if err := s.db.First(&course, "id = ?", courseID).Error; err != nil {
		return nil, err
	}

	var reviewCount, resourceCount int64
	s.db.Model(&models.CourseReview{}).Where("course_id = ?", courseID).Count(&reviewCount)
	s.db.Model(&models.StudyResource{}).Where("course_id = ?", courseID).Count(&resourceCount)

	return &CourseActivity{
		CourseSummary: CourseSummary{
			ID:         course.ID,
			CourseCode: course.CourseCode,
			Title:      course.Title,
		},
		ReviewCount:   reviewCount,
		ResourceCount: resourceCount,
		ActivityCount: reviewCount + resourceCount,
	}, nil
}

type StudyStats struct {
	TotalFlashcardsCreated int64                 `json:"total_flashcards_created"`
	TotalFlashcardSets     int64                 `json:"total_flashcard_sets"`
	TotalResourcesUsed     int64                 `json:"total_resources_used"`
	EstimatedStudyHours    float64               `json:"estimated_study_hours"`
	QuizzesGenerated       int64                 `json:"quizzes_generated"`
	StudyGuidesGenerated   int64                 `json:"study_guides_generated"`
	MostUsedSet            *models.StudyResource `json:"most_used_set"`
	MostUpvotedSet         *models.StudyResource `json:"most_upvoted_set"`
}

func (s *AnalyticsService) GetUserStudyStats(userID uuid.UUID) (*StudyStats, error) {
	stats := &StudyStats{}

	err := s.db.Model(&models.Flashcard{}).
		Joins("JOIN study_resources ON study_resources.id = flashcards.resource_id").
		Where("study_resources.user_id = ?", userID).
		Count(&stats.TotalFlashcardsCreated).Error
	if err != nil {
		return nil, err
	}

	s.db.Model(&models.StudyResource{}).
		Where("user_id = ? AND type = ?", userID, models.ResourceTypeFlashcards).
		Count(&stats.TotalFlashcardSets)
	s.db.Model(&models.StudyResource{}).Where("used_count > 0").Count(&stats.TotalResourcesUsed)
	s.db.Model(&models.StudyResource{}).
		Where("user_id = ? AND type = ? AND used_count > 0", userID, models.ResourceTypeFlashcards).
		Count(&stats.QuizzesGenerated)
	s.db.Model(&models.StudyResource{}).
		Where("user_id = ? AND type = ?", userID, models.ResourceTypeNotes).
		Count(&stats.StudyGuidesGenerated)

	// Rough estimate: two minutes per flashcard.
	stats.EstimatedStudyHours = roundToTenth(float64(stats.TotalFlashcardsCreated) * 2 / 60)

	var mostUsed models.StudyResource
	err = s.db.Where("user_id = ? AND type = ?", userID, models.ResourceTypeFlashcards).
		Order("used_count DESC").First(&mostUsed).Error
	if err == nil {
		stats.MostUsedSet = &mostUsed
	}

	var mostUpvoted models.StudyResource
	err = s.db.Where("user_id = ? AND type = ?", userID, models.ResourceTypeFlashcards).
		Order("upvotes DESC").First(&mostUpvoted).Error
	if err == nil {
		stats.MostUpvotedSet = &mostUpvoted
	}

	return stats, nil
}
