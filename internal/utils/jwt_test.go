package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateJWT(id, "admin@autoimport.ro", "admin", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.UserType)
	assert.Equal(t, "autoimport-backend", claims.Issuer)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	SetJWTSecret("test-secret")
	expired, err := GenerateJWT(uuid.New(), "a@b.ro", "admin", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	token, err := GenerateJWT(uuid.New(), "a@b.ro", "admin", 1)
	require.NoError(t, err)
	SetJWTSecret("another-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
