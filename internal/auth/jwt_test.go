package auth_test

import (
	"testing"

	"github.com/corkboard-dev/corkboard/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyJWT(t *testing.T) {
	auth.SetJWTSecretForTesting("test-secret")

	tokenString, err := auth.GenerateJWT(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := auth.VerifyJWT(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 42, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	auth.SetJWTSecretForTesting("test-secret")

	tokenString, err := auth.GenerateJWT(42, "alice")
	require.NoError(t, err)

	_, err = auth.VerifyJWT(tokenString + "x")
	assert.Error(t, err)

	// A token signed under a different secret is invalid too.
	auth.SetJWTSecretForTesting("other-secret")
	_, err = auth.VerifyJWT(tokenString)
	assert.Error(t, err)
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	auth.SetJWTSecretForTesting("test-secret")

	_, err := auth.VerifyJWT("not-a-token")
	assert.Error(t, err)
}
