package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Token(t *testing.T) {
	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		token     string
		expiresAt time.Time
		wantErr   error
	}{
		{name: "missing token", token: "", wantErr: ErrMissingCredential},
		{name: "no expiry", token: "abc"},
		{name: "valid until later", token: "abc", expiresAt: base.Add(time.Minute)},
		{name: "expired exactly now", token: "abc", expiresAt: base, wantErr: ErrExpiredCredential},
		{name: "expired before", token: "abc", expiresAt: base.Add(-time.Second), wantErr: ErrExpiredCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCredential(tt.token, tt.expiresAt)
			c.now = func() time.Time { return base }

			got, err := c.Token()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsAuthError(fmt.Errorf("wrapped: %w", err)))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, got)
		})
	}
}

func TestCredential_SetAndHeader(t *testing.T) {
	c := NewCredential("", time.Time{})
	_, err := c.AuthorizationHeader()
	assert.ErrorIs(t, err, ErrMissingCredential)

	c.Set("fresh", time.Time{})
	headers, err := c.AuthorizationHeader()
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", headers["Authorization"])

	c.Clear()
	_, err = c.Token()
	assert.ErrorIs(t, err, ErrMissingCredential)
}
