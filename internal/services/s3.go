package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

type S3Service struct {
	client     *s3.S3
	bucketName string
	region     string
}

func NewS3Service(region, bucketName, accessKey, secretKey string) *S3Service {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
		Credentials: credentials.NewStaticCredentials(
			accessKey,
			secretKey,
			"",
		),
	}))

	return &S3Service{
		client:     s3.New(sess),
		bucketName: bucketName,
		region:     region,
	}
}

type UploadResult struct {
	Key         string
	URL         string
	FileName    string
	ContentType string
	Size        int64
}

// UploadNotesFile stores a note document (pdf, docx, doc or txt) under a
// date-partitioned key and returns its location.
func (s *S3Service) UploadNotesFile(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = s.getContentTypeFromExtension(header.Filename)
	}

	if !s.isValidNotesType(contentType) {
		return nil, fmt.Errorf("invalid file type: %s", contentType)
	}

	if header.Size > maxUploadSize {
		return nil, fmt.Errorf("file size too large: %d bytes (max: %d bytes)", header.Size, maxUploadSize)
	}

	fileExt := filepath.Ext(header.Filename)
	timestamp := time.Now().Format("2006/01/02")
	key := fmt.Sprintf("notes/files/%s/%s%s", timestamp, uuid.New().String(), fileExt)

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %v", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)

	return &UploadResult{
		Key:         key,
		URL:         url,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, nil
}

func (s *S3Service) Delete(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Service) isValidNotesType(contentType string) bool {
	validTypes := []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
		"text/plain",
	}

	for _, validType := range validTypes {
		if strings.EqualFold(contentType, validType) {
			return true
		}
	}
	return false
}

func (s *S3Service) getContentTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
