package utils

import (
	"testing"
	"time"

	"github.com/critics-hub/yamdb/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func testUser() *models.User {
	return &models.User{
		ID:       "6f1cdd2e-3f60-4e9c-9c30-000000000001",
		Username: "reader",
		Email:    "reader@example.com",
		Role:     models.RoleUser,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	user := testUser()

	token, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.False(t, claims.IsSuperuser)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", testSecret)
	assert.Error(t, err)
}
