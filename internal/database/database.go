package database

import (
	"github.com/studyhive/studyhive-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Init(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migration. Split out so tests can run it against
// their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.School{},
		&models.Department{},
		&models.Course{},
		&models.User{},
		&models.RefreshToken{},
		&models.StudyResource{},
		&models.Flashcard{},
		&models.UploadedFile{},
		&models.CourseReview{},
		&models.ResourceUpvote{},
		&models.HelpfulVote{},
		&models.SavedCourse{},
		&models.SavedResource{},
	)
}
