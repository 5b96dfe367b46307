package session

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrMissingCredential = errors.New("session credential is missing, please log in")
	ErrExpiredCredential = errors.New("session credential has expired, please log in again")
)

// Credential holds the bearer token used by every outbound client. It is
// refreshed by an external session manager through Set and read per request.
type Credential struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewCredential creates a credential. A zero expiresAt means no local expiry.
func NewCredential(token string, expiresAt time.Time) *Credential {
	return &Credential{
		token:     token,
		expiresAt: expiresAt,
		now:       time.Now,
	}
}

// Set replaces the token and its expiry.
func (c *Credential) Set(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = expiresAt
}

// Clear drops the token, e.g. on logout.
func (c *Credential) Clear() {
	c.Set("", time.Time{})
}

// Token returns the current token or the reason it cannot be used.
func (c *Credential) Token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return "", ErrMissingCredential
	}
	if !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt) {
		return "", ErrExpiredCredential
	}
	return c.token, nil
}

// AuthorizationHeader returns the header map attached to upstream requests.
func (c *Credential) AuthorizationHeader() (map[string]string, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// IsAuthError reports whether err comes from a missing or expired credential.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrExpiredCredential)
}
