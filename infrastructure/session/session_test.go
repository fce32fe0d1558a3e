package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookie(t *testing.T) {
	c := SessionCookie("tok", 3600, true)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, -1, SessionCookie("", -1, false).MaxAge)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), Expiry(now, time.Hour))
	assert.Equal(t, now.Add(DefaultTTL), Expiry(now, 0))
}

func TestNewTokenIsRandom(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}
