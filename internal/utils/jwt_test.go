package utils_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhive/studyhive-backend/internal/utils"
)

func TestGenerateAndValidateTokenPair(t *testing.T) {
	userID := uuid.New()
	schoolID := uuid.New()

	pair, err := utils.GenerateTokenPair(userID, schoolID, "x@test.edu", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Less(t, pair.AccessTokenExpiresAt, pair.RefreshTokenExpiresAt)

	access, err := utils.ValidateToken(pair.AccessToken, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, schoolID, access.SchoolID)
	assert.Equal(t, string(utils.AccessToken), access.Type)

	refresh, err := utils.ValidateToken(pair.RefreshToken, "secret")
	require.NoError(t, err)
	assert.Equal(t, string(utils.RefreshToken), refresh.Type)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	pair, err := utils.GenerateTokenPair(uuid.New(), uuid.New(), "x@test.edu", "secret")
	require.NoError(t, err)

	_, err = utils.ValidateToken(pair.AccessToken, "other-secret")
	assert.Error(t, err)

	_, err = utils.ValidateToken("garbage", "secret")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	a, err := utils.GenerateRandomString(32)
	require.NoError(t, err)
	b, err := utils.GenerateRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, 64) // hex doubles the byte length
	assert.NotEqual(t, a, b)
}
