package remote

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenLifetime = 24 * time.Hour

// tokenSource mints and caches the HS256 device token attached to every
// remote call. The secret is shared with the persistence collaborator.
type tokenSource struct {
	mu        sync.Mutex
	secret    string
	deviceID  string
	token     string
	expiresAt time.Time
}

func newTokenSource(secret, deviceID string) *tokenSource {
	return &tokenSource{secret: secret, deviceID: deviceID}
}

// Token returns a valid signed token, minting a fresh one when the cached
// token is within a minute of expiry.
func (s *tokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Until(s.expiresAt) > time.Minute {
		return s.token, nil
	}

	now := time.Now()
	expiresAt := now.Add(tokenLifetime)
	claims := jwt.MapClaims{
		"device_id": s.deviceID,
		"exp":       expiresAt.Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", err
	}

	s.token = signed
	s.expiresAt = expiresAt
	return signed, nil
}
