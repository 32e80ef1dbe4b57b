package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomStringLengthAndCharset(t *testing.T) {
	s := RandomString(26)
	assert.Len(t, s, 26)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(randomAlphabet, r), "unexpected character %q", r)
	}
}

func TestRandomStringsDiffer(t *testing.T) {
	assert.NotEqual(t, RandomString(26), RandomString(26))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
