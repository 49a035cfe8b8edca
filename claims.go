package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionPayload is the claim set a caller asks to have signed into a
// session token.
type SessionPayload struct {
	UserID    string
	PartnerID string
	RoleID    string
	Email     string
}

// SessionClaims is the decoded form of a verified session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID     string `json:"uid,omitempty"`
	Partner string `json:"pid,omitempty"`
	Role    string `json:"rid,omitempty"`
	Email   string `json:"email,omitempty"`
}

// UserID returns the authenticated user id, falling back to the
// registered subject claim.
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// PartnerID returns the partner the session is scoped to.
func (c *SessionClaims) PartnerID() string {
	return c.Partner
}

// RoleID returns the role id carried by the session.
func (c *SessionClaims) RoleID() string {
	return c.Role
}

// UserEmail returns the email claim.
func (c *SessionClaims) UserEmail() string {
	return c.Email
}

// Expires returns the expiration time, zero when absent.
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// Issued returns the issuance time, zero when absent.
func (c *SessionClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
