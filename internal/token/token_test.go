package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := New("test-secret", time.Hour)

	id := Identity{UserID: "user-1", Email: "nur@example.com"}
	tok, expiresIn, err := svc.Issue(id)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	got, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyExpiredToken(t *testing.T) {
	// negative ttl is clamped to the default, so build an expired
	// token by hand with the same claim layout
	now := time.Now()
	c := &claims{
		UserID: "user-1",
		Email:  "nur@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	svc := New("test-secret", time.Hour)
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := New("test-secret", time.Hour)
	tok, _, err := svc.Issue(Identity{UserID: "user-1", Email: "nur@example.com"})
	require.NoError(t, err)

	_, err = New("other-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	svc := New("test-secret", time.Hour)

	fromOtherKey, _, err := New("other-secret", time.Hour).Issue(Identity{UserID: "u"})
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-token", fromOtherKey} {
		_, err := svc.Verify(tok)
		assert.Equal(t, ErrUnauthenticated, err)
	}
}

func TestVerifyRejectsNonHMACAlg(t *testing.T) {
	// alg=none style forgeries must fail like any other bad token
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = New("test-secret", time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
