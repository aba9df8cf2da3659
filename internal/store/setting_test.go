package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSettingRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set("k", "v1"))
	require.NoError(t, repo.Set("k", "v2"))

	v, err := repo.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("k"))
	_, err = repo.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_TokenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	tok, err := s.LoadToken()
	require.NoError(t, err)
	assert.Nil(t, tok, "no token before auth")

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, s.SaveToken(&oauth2.Token{
		AccessToken:  "a",
		RefreshToken: "r",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}))

	tok, err = s.LoadToken()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))
}
