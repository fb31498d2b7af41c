package services

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"github.com/studyhive/studyhive-backend/pkg/logger"
	"gorm.io/gorm"
)

// FileService attaches uploaded documents to notes resources. S3 is the
// source of truth for the bytes; the uploaded_files row records the key,
// URL and any text we could extract for AI generation.
type FileService struct {
	db *gorm.DB
	s3 *S3Service
}

func NewFileService(db *gorm.DB, s3 *S3Service) *FileService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &FileService{db: db, s3: s3}
}

func (s *FileService) UploadFile(userID, resourceID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.UploadedFile, error) {
	var resource models.StudyResource
	err := s.db.First(&resource, "id = ?", resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("NOT_FOUND", "Resource not found")
		}
		return nil, err
	}

	if resource.UserID != userID {
		return nil, utils.Forbidden("You can only upload files to your own resources")
	}
	if resource.Type != models.ResourceTypeNotes {
		return nil, utils.BadRequest("INVALID_TYPE", "Files can only be attached to notes resources")
	}

	extracted := extractText(file, header)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	result, err := s.s3.UploadNotesFile(file, header)
	if err != nil {
		return nil, utils.BadRequest("INVALID_FILE", err.Error())
	}

	uploaded := models.UploadedFile{
		ResourceID:    resourceID,
		FileName:      result.FileName,
		S3Key:         result.Key,
		FileURL:       result.URL,
		MimeType:      result.ContentType,
		FileSize:      result.Size,
		ExtractedText: extracted,
	}

	if err := s.db.Create(&uploaded).Error; err != nil {
		// Orphaned objects in the bucket are harmless; the row is what counts.
		if delErr := s.s3.Delete(result.Key); delErr != nil {
			logger.Warn("failed to clean up S3 object ", result.Key, ": ", delErr)
		}
		return nil, err
	}

	return &uploaded, nil
}

func (s *FileService) DeleteFile(userID, fileID uuid.UUID) error {
	var file models.UploadedFile
	err := s.db.First(&file, "id = ?", fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("NOT_FOUND", "File not found")
		}
		return err
	}

	var resource models.StudyResource
	if err := s.db.First(&resource, "id = ?", file.ResourceID).Error; err != nil {
		return err
	}
	if resource.UserID != userID {
		return utils.Forbidden("You can only delete files from your own resources")
	}

	if err := s.s3.Delete(file.S3Key); err != nil {
		logger.Warn("failed to delete S3 object ", file.S3Key, ": ", err)
	}

	return s.db.Delete(&models.UploadedFile{}, "id = ?", fileID).Error
}

// extractText pulls plain text out of the upload when the format allows
// it. Only text/plain is handled in-process; richer formats would need a
// parsing dependency and their text stays empty.
func extractText(file multipart.File, header *multipart.FileHeader) string {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/plain") && !strings.HasSuffix(strings.ToLower(header.Filename), ".txt") {
		return ""
	}

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, io.LimitReader(file, maxUploadSize)); err != nil {
		logger.Warn("failed to read upload for text extraction: ", err)
		return ""
	}
	return strings.TrimSpace(buffer.String())
}
