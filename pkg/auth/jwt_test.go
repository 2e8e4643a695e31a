package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(7, "jane@example.com", "client", "s3cret", time.Minute)
	require.NoError(t, err)

	claims, err := Parse(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.Sub)
	assert.Equal(t, "client", claims.Role)
}

func TestParseRejectsWrongSecretAndExpiry(t *testing.T) {
	tok, err := NewAccessToken(1, "a@b.c", "client", "one", time.Minute)
	require.NoError(t, err)
	_, err = Parse(tok, "two")
	assert.Error(t, err)

	expired, err := NewAccessToken(1, "a@b.c", "client", "one", -time.Minute)
	require.NoError(t, err)
	_, err = Parse(expired, "one")
	assert.Error(t, err)
}
