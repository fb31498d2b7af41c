package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ResourceTypeFlashcards = "FLASHCARDS"
	ResourceTypeNotes      = "NOTES"
)

// StudyResource is a flashcard set or an uploaded-notes document. The
// upvotes and used_count columns are denormalized; they are only ever
// changed by atomic increments alongside the matching join-row write.
type StudyResource struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CourseID  uuid.UUID `json:"course_id" gorm:"type:uuid;not null;index"`
	Type      string    `json:"type" gorm:"not null"` // FLASHCARDS or NOTES
	Title     string    `json:"title" gorm:"not null"`
	ExamTag   string    `json:"exam_tag"`
	Upvotes   int       `json:"upvotes" gorm:"default:0"`
	UsedCount int       `json:"used_count" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User       User           `json:"user,omitempty"`
	Course     Course         `json:"course,omitempty"`
	Flashcards []Flashcard    `json:"flashcards,omitempty" gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
	Files      []UploadedFile `json:"files,omitempty" gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE"`
}

func (r *StudyResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Flashcard belongs to a FLASHCARDS resource. Position is dense 0..N-1,
// re-derived from array order on every full replace.
type Flashcard struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;index"`
	Front      string    `json:"front" gorm:"not null"`
	Back       string    `json:"back" gorm:"not null"`
	Order      int       `json:"order" gorm:"column:position;not null"`
}

func (f *Flashcard) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

type UploadedFile struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ResourceID    uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;index"`
	FileName      string    `json:"file_name" gorm:"not null"`
	S3Key         string    `json:"s3_key" gorm:"not null;unique"`
	FileURL       string    `json:"file_url" gorm:"not null"`
	MimeType      string    `json:"mime_type" gorm:"not null"`
	FileSize      int64     `json:"file_size"`
	ExtractedText string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (f *UploadedFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ResourceUpvote is the per-user upvote on a resource. Presence of the row
// is the vote; the unique index is the race guard against double voting.
type ResourceUpvote struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_resource_upvotes_user_resource"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;uniqueIndex:idx_resource_upvotes_user_resource"`
	CreatedAt  time.Time `json:"created_at"`
}

func (v *ResourceUpvote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type SavedResource struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_resources_user_resource"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;uniqueIndex:idx_saved_resources_user_resource"`
	CreatedAt  time.Time `json:"created_at"`

	Resource StudyResource `json:"resource,omitempty"`
}

func (s *SavedResource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
