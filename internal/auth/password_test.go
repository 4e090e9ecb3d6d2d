package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.NoError(t, ComparePassword(hash, "Password123"))
	assert.Error(t, ComparePassword(hash, "password123"))
}
