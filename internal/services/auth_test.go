package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/models"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

const testJWTSecret = "test-secret"

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testJWTSecret, nil, "http://localhost:5173")
	seedSchool(t, db, "drexel.edu")

	user, err := svc.Register(RegisterRequest{
		Name:         "Ada Lovelace",
		Email:        "Ada@Drexel.edu",
		Password:     "password123",
		SchoolDomain: "drexel.edu",
	})
	require.NoError(t, err)

	// Email is normalized to lowercase; account starts unverified.
	assert.Equal(t, "ada@drexel.edu", user.Email)
	assert.False(t, user.EmailVerified)
	assert.NotEmpty(t, user.VerificationToken)
	assert.Zero(t, user.ReputationScore)
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testJWTSecret, nil, "http://localhost:5173")
	seedSchool(t, db, "drexel.edu")

	tests := []struct {
		name string
		req  RegisterRequest
		code string
	}{
		{
			name: "non-edu email",
			req:  RegisterRequest{Name: "X", Email: "x@gmail.com", Password: "password123", SchoolDomain: "gmail.com"},
			code: "INVALID_EMAIL",
		},
		{
			name: "short password",
			req:  RegisterRequest{Name: "X", Email: "x@drexel.edu", Password: "short", SchoolDomain: "drexel.edu"},
			code: "INVALID_PASSWORD",
		},
		{
			name: "domain mismatch",
			req:  RegisterRequest{Name: "X", Email: "x@drexel.edu", Password: "password123", SchoolDomain: "temple.edu"},
			code: "DOMAIN_MISMATCH",
		},
		{
			name: "unknown school",
			req:  RegisterRequest{Name: "X", Email: "x@temple.edu", Password: "password123", SchoolDomain: "temple.edu"},
			code: "SCHOOL_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.req)
			assert.Equal(t, tt.code, appErrCode(t, err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testJWTSecret, nil, "http://localhost:5173")
	seedSchool(t, db, "drexel.edu")

	req := RegisterRequest{Name: "X", Email: "x@drexel.edu", Password: "password123", SchoolDomain: "drexel.edu"}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	assert.Equal(t, "EMAIL_EXISTS", appErrCode(t, err))
}

func TestLoginAndRefresh(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testJWTSecret, nil, "http://localhost:5173")
	seedSchool(t, db, "drexel.edu")

	_, err := svc.Register(RegisterRequest{
		Name: "X", Email: "x@drexel.edu", Password: "password123", SchoolDomain: "drexel.edu",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "x@drexel.edu", Password: "wrong-password"})
	assert.Equal(t, "UNAUTHORIZED", appErrCode(t, err))

	resp, err := svc.Login(LoginRequest{Email: "x@drexel.edu", Password: "password123"})
	require.NoError(t, err)
	require.NotNil(t, resp.Tokens)

	claims, err := utils.ValidateToken(resp.Tokens.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, string(utils.AccessToken), claims.Type)
	assert.Equal(t, resp.User.ID, claims.UserID)

	rotated, err := svc.RefreshTokens(RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	// The old refresh token is revoked by rotation.
	_, err = svc.RefreshTokens(RefreshRequest{RefreshToken: resp.Tokens.RefreshToken})
	assert.Equal(t, "UNAUTHORIZED", appErrCode(t, err))

	// An access token is never accepted as a refresh token.
	_, err = svc.RefreshTokens(RefreshRequest{RefreshToken: rotated.Tokens.AccessToken})
	assert.Equal(t, "UNAUTHORIZED", appErrCode(t, err))
}

func TestVerifyEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testJWTSecret, nil, "http://localhost:5173")
	seedSchool(t, db, "drexel.edu")

	registered, err := svc.Register(RegisterRequest{
		Name: "X", Email: "x@drexel.edu", Password: "password123", SchoolDomain: "drexel.edu",
	})
	require.NoError(t, err)

	_, err = svc.VerifyEmail("bogus-token")
	assert.Equal(t, "INVALID_TOKEN", appErrCode(t, err))

	verified, err := svc.VerifyEmail(registered.VerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", registered.ID).Error)
	assert.True(t, stored.EmailVerified)
	assert.Empty(t, stored.VerificationToken)

	// The token is single use.
	_, err = svc.VerifyEmail(registered.VerificationToken)
	assert.Equal(t, "INVALID_TOKEN", appErrCode(t, err))
}
