package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "correct horse")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("secret-password")
	require.NoError(t, err)
	second, err := HashPassword("secret-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
