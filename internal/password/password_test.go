package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	// low cost keeps the test fast
	h := NewBcryptHasher(4)

	hash, err := h.Hash("tarkeez")
	require.NoError(t, err)
	assert.NotEqual(t, "tarkeez", hash)

	ok, err := h.Verify("tarkeez", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMismatchIsNotAnError(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	ok, err := h.Verify("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyGarbageHash(t *testing.T) {
	h := NewBcryptHasher(4)

	ok, err := h.Verify("anything", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCostClamped(t *testing.T) {
	h := NewBcryptHasher(-1)
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	ok, err := h.Verify("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
