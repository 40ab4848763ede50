package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	RefreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenBytes = 64
)

// NewRefreshToken returns an opaque random token string. It carries no
// structure; validity lives entirely in the refresh token store.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokens: generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
