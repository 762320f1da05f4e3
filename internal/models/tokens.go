package models

import "time"

// TokenKind identifies one of the three time-bounded credentials managed by
// the client. The credentials themselves live in httpOnly cookies set by the
// server, the client only ever sees and tracks their expiry timestamps.
type TokenKind string

const (
	AccessToken               TokenKind = "access"
	RefreshToken              TokenKind = "refresh"
	PasswordConfirmationToken TokenKind = "password-confirmation"
)

const accessTokenExpiresAtKey string = "access-token-expires-at"
const refreshTokenExpiresAtKey string = "refresh-token-expires-at"
const passwordConfirmationTokenExpiresAtKey string = "password-confirmation-token-expires-at"

// ExpiryKey returns the persistent storage key under which the expiry
// timestamp for this token kind is saved.
func (k TokenKind) ExpiryKey() string {
	switch k {
	case AccessToken:
		return accessTokenExpiresAtKey
	case RefreshToken:
		return refreshTokenExpiresAtKey
	case PasswordConfirmationToken:
		return passwordConfirmationTokenExpiresAtKey
	}
	return ""
}

// AllTokenKinds lists every token kind whose expiry the client persists.
var AllTokenKinds = []TokenKind{AccessToken, RefreshToken, PasswordConfirmationToken}

// ExpiringCredential is the server's representation of a credential in API
// responses. Expiries are milliseconds since the epoch.
type ExpiringCredential struct {
	ExpiresAt int64 `json:"expiresAt"`
}

func (c ExpiringCredential) ExpiryTime() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// TokenSet is returned by the login endpoint and carries the expiries of all
// three credentials minted for the new session.
type TokenSet struct {
	AccessToken               ExpiringCredential `json:"accessToken"`
	RefreshToken              ExpiringCredential `json:"refreshToken"`
	PasswordConfirmationToken ExpiringCredential `json:"passwordConfirmationToken"`
}
