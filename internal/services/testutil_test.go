package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/database"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps the memory database alive and isolated for the test's duration.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedSchool(t *testing.T, db *gorm.DB, domain string) *models.School {
	t.Helper()
	school := models.School{Name: "Test University", Domain: domain}
	require.NoError(t, db.Create(&school).Error)
	return &school
}

func seedUser(t *testing.T, db *gorm.DB, schoolID uuid.UUID, email string) *models.User {
	t.Helper()
	user := models.User{
		Name:          "Test Student",
		Email:         email,
		SchoolID:      schoolID,
		EmailVerified: true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedCourse(t *testing.T, db *gorm.DB, schoolID uuid.UUID, code string) *models.Course {
	t.Helper()
	dept := models.Department{SchoolID: schoolID, Name: "Dept " + code}
	require.NoError(t, db.Create(&dept).Error)
	course := models.Course{
		SchoolID:     schoolID,
		DepartmentID: dept.ID,
		CourseCode:   code,
		Title:        "Course " + code,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func seedResource(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID, resourceType string) *models.StudyResource {
	t.Helper()
	resource := models.StudyResource{
		UserID:   userID,
		CourseID: courseID,
		Type:     resourceType,
		Title:    "Seeded resource",
	}
	require.NoError(t, db.Create(&resource).Error)
	return &resource
}

func seedReview(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID) *models.CourseReview {
	t.Helper()
	review := models.CourseReview{
		UserID:           userID,
		CourseID:         courseID,
		WorkloadRating:   3,
		DifficultyRating: 3,
		OverallRating:    4,
	}
	require.NoError(t, db.Create(&review).Error)
	return &review
}

func reputationOf(t *testing.T, db *gorm.DB, userID uuid.UUID) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	return user.ReputationScore
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)
	return appErr.Code
}
