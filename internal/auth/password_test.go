package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("verifies its own output", func(t *testing.T) {
		hash, err := HashPassword("password123", bcrypt.MinCost)
		require.NoError(t, err)
		require.NotEqual(t, "password123", hash)
		require.NoError(t, ComparePassword(hash, "password123"))
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := HashPassword("password123", bcrypt.MinCost)
		require.NoError(t, err)
		require.Error(t, ComparePassword(hash, "password124"))
	})

	t.Run("salts every call", func(t *testing.T) {
		first, err := HashPassword("password123", bcrypt.MinCost)
		require.NoError(t, err)
		second, err := HashPassword("password123", bcrypt.MinCost)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("errors on a malformed hash", func(t *testing.T) {
		require.Error(t, ComparePassword("not-a-bcrypt-hash", "password123"))
	})
}
