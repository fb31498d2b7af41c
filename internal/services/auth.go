package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
	"github.com/studyhive/studyhive-backend/pkg/logger"
	"gorm.io/gorm"
)

type AuthService struct {
	db           *gorm.DB
	jwtSecret    string
	emailService *EmailService
	frontendURL  string
}

func NewAuthService(db *gorm.DB, jwtSecret string, emailService *EmailService, frontendURL string) *AuthService {
	if db == nil {
		panic("database connection cannot be nil")
	}
	return &AuthService{
		db:           db,
		jwtSecret:    jwtSecret,
		emailService: emailService,
		frontendURL:  frontendURL,
	}
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	SchoolDomain string `json:"school_domain" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type AuthResponse struct {
	Tokens *utils.TokenPair `json:"tokens"`
	User   models.User      `json:"user"`
}

func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))

	if !utils.IsValidEduEmail(email) {
		return nil, utils.BadRequest("INVALID_EMAIL", "Only .edu email addresses are allowed")
	}

	if !utils.IsValidPassword(req.Password) {
		return nil, utils.BadRequest("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	schoolDomain := strings.ToLower(utils.SanitizeString(req.SchoolDomain))
	if utils.ExtractDomain(email) != schoolDomain {
		return nil, utils.BadRequest("DOMAIN_MISMATCH", "Email domain does not match selected school")
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, utils.Conflict("EMAIL_EXISTS", "Email already registered")
	}

	var school models.School
	if err := s.db.Where("domain = ?", schoolDomain).First(&school).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("SCHOOL_NOT_FOUND", "School not found. Contact support to add your school.")
		}
		return nil, err
	}

	verificationToken, err := utils.GenerateRandomString(32)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:              utils.SanitizeString(req.Name),
		Email:             email,
		SchoolID:          school.ID,
		EmailVerified:     false,
		VerificationToken: verificationToken,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.Conflict("EMAIL_EXISTS", "Email already registered")
		}
		return nil, err
	}

	// Best effort: a failed send must not fail the registration.
	if s.emailService != nil {
		if err := s.emailService.SendVerificationEmail(user.Email, verificationToken, s.frontendURL); err != nil {
			logger.Warn("failed to send verification email: ", err)
		}
	}

	return &user, nil
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(utils.SanitizeString(req.Email))

	var user models.User
	err := s.db.Preload("School").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Unauthorized("Invalid email or password")
		}
		return nil, err
	}

	if !user.CheckPassword(req.Password) {
		return nil, utils.Unauthorized("Invalid email or password")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.SchoolID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     tokens.RefreshToken,
		ExpiresAt: time.Unix(tokens.RefreshTokenExpiresAt, 0),
	}
	if err := s.db.Create(&refresh).Error; err != nil {
		return nil, err
	}

	return &AuthResponse{Tokens: tokens, User: user}, nil
}

func (s *AuthService) RefreshTokens(req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil || claims.Type != string(utils.RefreshToken) {
		return nil, utils.Unauthorized("Invalid refresh token")
	}

	var stored models.RefreshToken
	err = s.db.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&stored).Error
	if err != nil {
		return nil, utils.Unauthorized("Invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, utils.Unauthorized("Refresh token expired")
	}

	var user models.User
	if err := s.db.Preload("School").First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, utils.Unauthorized("Invalid refresh token")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.SchoolID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return err
		}
		next := models.RefreshToken{
			UserID:    user.ID,
			Token:     tokens.RefreshToken,
			ExpiresAt: time.Unix(tokens.RefreshTokenExpiresAt, 0),
		}
		return tx.Create(&next).Error
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Tokens: tokens, User: user}, nil
}

func (s *AuthService) VerifyEmail(token string) (*models.User, error) {
	var user models.User
	err := s.db.Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.BadRequest("INVALID_TOKEN", "Invalid or expired verification token")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"email_verified":     true,
		"verification_token": "",
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	user.EmailVerified = true
	return &user, nil
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Preload("School").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return &user, nil
}
