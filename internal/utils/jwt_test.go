package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	service := NewJWTService("test-secret")
	userID := uuid.NewString()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)

	extracted, err := service.ExtractUserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, extracted)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	token, err := NewJWTService("first-secret").GenerateToken(uuid.NewString())
	require.NoError(t, err)

	_, err = NewJWTService("other-secret").ExtractUserID(token)
	assert.Error(t, err)
}

func TestJWT_GarbageRejected(t *testing.T) {
	_, err := NewJWTService("test-secret").ExtractUserID("не-токен")
	assert.Error(t, err)
}

func TestFormatDisplayTime(t *testing.T) {
	moment := time.Date(2025, 3, 7, 18, 5, 0, 0, time.UTC)
	assert.Equal(t, moment.Local().Format("02/01/2006 15:04"), FormatDisplayTime(moment))
}
