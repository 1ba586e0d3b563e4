package auth

import (
	"strings"
	"time"
)

// AccessClaims represents the claims stored in a PASETO access token.
// v4.local tokens are encrypted, so the claims are opaque to the browser holding the cookie.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// ClientInfo describes the browser or API client that opened a session.
// It is stored on the session for display on the profile page.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// maxUserAgentLength bounds what we persist from an untrusted header.
const maxUserAgentLength = 256

// Normalized trims the fields and truncates an oversized user agent.
func (c ClientInfo) Normalized() ClientInfo {
	c.IPAddress = strings.TrimSpace(c.IPAddress)
	c.UserAgent = strings.TrimSpace(c.UserAgent)
	if len(c.UserAgent) > maxUserAgentLength {
		c.UserAgent = c.UserAgent[:maxUserAgentLength]
	}
	return c
}
