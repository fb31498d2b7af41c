package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
	Email    string    `json:"email"`
	Type     string    `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresAt  int64  `json:"access_token_expires_at"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

// Generate access token (short-lived: 15 minutes)
func GenerateAccessToken(userID, schoolID uuid.UUID, email, jwtSecret string) (string, time.Time, error) {
	return generateToken(userID, schoolID, email, jwtSecret, AccessToken, 15*time.Minute)
}

// Generate refresh token (long-lived: 7 days)
func GenerateRefreshToken(userID, schoolID uuid.UUID, email, jwtSecret string) (string, time.Time, error) {
	return generateToken(userID, schoolID, email, jwtSecret, RefreshToken, 7*24*time.Hour)
}

func generateToken(userID, schoolID uuid.UUID, email, jwtSecret string, tokenType TokenType, ttl time.Duration) (string, time.Time, error) {
	expirationTime := time.Now().Add(ttl)

	claims := &Claims{
		UserID:   userID,
		SchoolID: schoolID,
		Email:    email,
		Type:     string(tokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expirationTime, nil
}

// Generate both tokens
func GenerateTokenPair(userID, schoolID uuid.UUID, email, jwtSecret string) (*TokenPair, error) {
	accessToken, accessExp, err := GenerateAccessToken(userID, schoolID, email, jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := GenerateRefreshToken(userID, schoolID, email, jwtSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExp.Unix(),
		RefreshTokenExpiresAt: refreshExp.Unix(),
	}, nil
}

// Validate token and return claims
func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GenerateRandomString returns a hex string for verification tokens.
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
