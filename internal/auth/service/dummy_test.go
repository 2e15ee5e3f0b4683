package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vvcoe/sembuddy/pkg/cryptox"
	"github.com/vvcoe/sembuddy/pkg/slogx"
)

func TestFallbackDummyHash(t *testing.T) {
	hasher, err := cryptox.NewHasher(cryptox.HasherOptions{})
	require.NoError(t, err)

	// The fallback must run the full KDF, not fail fast on its format.
	require.ErrorIs(t, hasher.Verify("anything", fallbackDummyHash), cryptox.ErrPasswordMismatch)
	require.False(t, hasher.NeedsRehash(fallbackDummyHash), "fallback uses the default cost")
}

func TestDummyHash(t *testing.T) {
	hasher, err := cryptox.NewHasher(cryptox.HasherOptions{})
	require.NoError(t, err)
	s := &AuthService{Hasher: hasher}

	first := s.dummy(slogx.Discard())
	require.NotEqual(t, fallbackDummyHash, first)
	require.Equal(t, first, s.dummy(slogx.Discard()), "computed once")
	require.ErrorIs(t, hasher.Verify("", first), cryptox.ErrPasswordMismatch)
}
