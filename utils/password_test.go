package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	first, err := HashPassword("secret123")
	require.NoError(t, err)
	second, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("secret123", first))
	assert.True(t, CheckPassword("secret123", second))
}
