package services

import (
	"github.com/studyhive/studyhive-backend/internal/models"
	"gorm.io/gorm"
)

type SchoolService struct {
	db *gorm.DB
}

func NewSchoolService(db *gorm.DB) *SchoolService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &SchoolService{db: db}
}

func (s *SchoolService) ListSchools() ([]models.School, error) {
	var schools []models.School
	err := s.db.Select("id", "name", "domain").Order("name ASC").Find(&schools).Error
	if err != nil {
		return nil, err
	}
	return schools, nil
}
