package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")
	userID := uuid.New()

	token, err := NewAccessToken(userID, "alice", secret, AccessTokenTTL)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, userID.String(), claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_FailsClosed(t *testing.T) {
	t.Parallel()

	secret := []byte("test-jwt-secret")
	userID := uuid.New()

	valid, err := NewAccessToken(userID, "alice", secret, AccessTokenTTL)
	require.NoError(t, err)

	expired, err := NewAccessToken(userID, "alice", secret, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "wrong secret", token: valid, secret: []byte("other-secret")},
		{name: "malformed", token: "not-a-jwt", secret: secret},
		{name: "tampered payload", token: valid + "x", secret: secret},
		{name: "expired", token: expired, secret: secret},
		{name: "empty", token: "", secret: secret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := AccessClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestNewRefreshToken_OpaqueAndUnique(t *testing.T) {
	t.Parallel()

	first, err := NewRefreshToken()
	require.NoError(t, err)
	second, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, first, refreshTokenBytes*2)
	assert.NotEqual(t, first, second)
}
