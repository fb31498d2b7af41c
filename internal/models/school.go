package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type School struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Domain    string    `json:"domain" gorm:"uniqueIndex;not null"` // e.g. "drexel.edu"
	CreatedAt time.Time `json:"created_at"`

	Departments []Department `json:"departments,omitempty"`
	Courses     []Course     `json:"courses,omitempty"`
	Users       []User       `json:"users,omitempty"`
}

func (s *School) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Department struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SchoolID uuid.UUID `json:"school_id" gorm:"type:uuid;not null;uniqueIndex:idx_departments_school_name"`
	Name     string    `json:"name" gorm:"not null;uniqueIndex:idx_departments_school_name"`

	School  School   `json:"-"`
	Courses []Course `json:"courses,omitempty"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type Course struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SchoolID     uuid.UUID `json:"school_id" gorm:"type:uuid;not null;uniqueIndex:idx_courses_school_code"`
	DepartmentID uuid.UUID `json:"department_id" gorm:"type:uuid;not null"`
	CourseCode   string    `json:"course_code" gorm:"not null;uniqueIndex:idx_courses_school_code"`
	Title        string    `json:"title" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`

	School     School     `json:"-"`
	Department Department `json:"department,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SavedCourse bookmarks a course for a user. Presence of the row is the save.
type SavedCourse struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_courses_user_course"`
	CourseID  uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_courses_user_course"`
	CreatedAt time.Time `json:"created_at"`

	Course Course `json:"course,omitempty"`
}

func (sc *SavedCourse) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	return nil
}
