package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, pw := range []string{"longenough1", "correct horse battery staple", "pässwörd-ünïcode"} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		require.NotEqual(t, pw, hashed)
		require.True(t, h.Verify(pw, hashed), "password %q should verify", pw)
	}
}

func TestPasswordHasher_Salted(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("longenough1")
	require.NoError(t, err)
	second, err := h.Hash("longenough1")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, h.Verify("longenough1", first))
	require.True(t, h.Verify("longenough1", second))
}

func TestPasswordHasher_RejectsMismatch(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := h.Hash("longenough1")
	require.NoError(t, err)

	require.False(t, h.Verify("longenough2", hashed))
	require.False(t, h.Verify("", hashed))
	require.False(t, h.Verify("wrong", hashed))
}

func TestPasswordHasher_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	require.False(t, h.Verify("longenough1", ""))
	require.False(t, h.Verify("longenough1", "not-a-bcrypt-hash"))
	require.False(t, h.Verify("longenough1", "$2a$04$short"))
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	t.Parallel()
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	require.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
