package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryKeys(t *testing.T) {
	assert.Equal(t, "access-token-expires-at", AccessToken.ExpiryKey())
	assert.Equal(t, "refresh-token-expires-at", RefreshToken.ExpiryKey())
	assert.Equal(t, "password-confirmation-token-expires-at", PasswordConfirmationToken.ExpiryKey())
	assert.Equal(t, "", TokenKind("bogus").ExpiryKey())
}

func TestTokenSetDecoding(t *testing.T) {
	payload := `{
		"accessToken": {"expiresAt": 1756500000000},
		"refreshToken": {"expiresAt": 1756586400000},
		"passwordConfirmationToken": {"expiresAt": 1756500600000}
	}`
	var set TokenSet
	err := json.Unmarshal([]byte(payload), &set)
	require.NoError(t, err)
	assert.Equal(t, int64(1756500000000), set.AccessToken.ExpiresAt)
	assert.True(t, set.AccessToken.ExpiryTime().Equal(time.UnixMilli(1756500000000)))
	assert.Equal(t, int64(1756586400000), set.RefreshToken.ExpiresAt)
	assert.Equal(t, int64(1756500600000), set.PasswordConfirmationToken.ExpiresAt)
}
