package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)
	assert.True(t, CheckPassword("Secret#123", hash))
	assert.False(t, CheckPassword("secret#123", hash))
}

func TestHashPassword_TooLong(t *testing.T) {
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err := HashPassword(string(long))
	assert.Error(t, err)
}
