package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the secrets and knobs the security core consumes. Both
// secrets fail closed: material produced under a different value is
// rejected on verification.
type Config interface {
	GetSigningSecret() string
	GetLinkPassphrase() string
	GetFrontendBaseURL() string
	GetTokenExpiration() int
	GetInvitationTTL() int
}

// TokenService issues and verifies session bearer tokens.
type TokenService interface {
	Generate(payload SessionPayload) (string, error)
	Verify(token string) (*SessionClaims, error)
}

// PasswordAuthenticator hashes and checks member credentials.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// NotificationPayload carries everything the invitation email needs.
type NotificationPayload struct {
	ToEmail     string
	ToName      string
	PartnerName string
	InviteLink  string
	RoleName    string
}

// Notifier delivers invitation emails. Delivery is an external
// collaborator; the lifecycle treats a failed send as best-effort.
type Notifier interface {
	SendTeamInvitationEmail(ctx context.Context, payload NotificationPayload) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
