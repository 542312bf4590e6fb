package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/inventory-service/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, exp, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(TokenTTL), exp, 5*time.Second)

	identity, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, domain.Identity{SubjectID: "user-1", Name: "Alice", Role: domain.RoleUser}, identity)
}

func TestTokenManager_DifferentInstantsDifferentTokens(t *testing.T) {
	tm := NewTokenManager("test-secret")
	base := time.Now()

	tm.now = fixedClock(base)
	first, _, err := tm.Issue("user-1", "Alice", domain.RoleAdmin)
	require.NoError(t, err)

	tm.now = fixedClock(base.Add(2 * time.Second))
	second, _, err := tm.Issue("user-1", "Alice", domain.RoleAdmin)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret")
	issued := time.Now().Add(-TokenTTL - time.Hour)
	tm.now = fixedClock(issued)

	token, _, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)

	// Still valid one minute before expiry.
	tm.now = fixedClock(issued.Add(TokenTTL - time.Minute))
	_, err = tm.Verify(token)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Tampered(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, _, err := tm.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_UniformFailures(t *testing.T) {
	tm := NewTokenManager("test-secret")
	other := NewTokenManager("other-secret")
	foreign, _, err := other.Issue("user-1", "Alice", domain.RoleUser)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	noExpToken, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             domain.Role("ROOT"),
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	badRoleToken, err := badRole.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":   "garbage",
		"empty":     "",
		"foreign":   foreign,
		"alg none":  unsigned,
		"no expiry": noExpToken,
		"bad role":  badRoleToken,
	} {
		_, err := tm.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
