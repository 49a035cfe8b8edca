package auth

import (
	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is the environment-backed Config implementation. Both
// secrets are required; tokens and links produced under a different
// secret fail verification.
type EnvConfig struct {
	SigningSecret   string `env:"AUTH_SIGNING_SECRET"`
	LinkPassphrase  string `env:"AUTH_LINK_PASSPHRASE"`
	FrontendBaseURL string `env:"AUTH_FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	TokenExpiration int    `env:"AUTH_TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	InvitationTTL   int    `env:"AUTH_INVITATION_TTL_DAYS" envDefault:"7"`
}

// LoadConfigFromEnv parses configuration from the process environment
// and validates the secrets are present. Secret misconfiguration is a
// fatal fault, not a business outcome.
func LoadConfigFromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse auth configuration")
	}

	if cfg.SigningSecret == "" {
		return nil, goerrors.New("AUTH_SIGNING_SECRET is required", goerrors.CategoryInternal)
	}
	if cfg.LinkPassphrase == "" {
		return nil, goerrors.New("AUTH_LINK_PASSPHRASE is required", goerrors.CategoryInternal)
	}

	return cfg, nil
}

var _ Config = (*EnvConfig)(nil)

func (c *EnvConfig) GetSigningSecret() string   { return c.SigningSecret }
func (c *EnvConfig) GetLinkPassphrase() string  { return c.LinkPassphrase }
func (c *EnvConfig) GetFrontendBaseURL() string { return c.FrontendBaseURL }
func (c *EnvConfig) GetTokenExpiration() int    { return c.TokenExpiration }
func (c *EnvConfig) GetInvitationTTL() int      { return c.InvitationTTL }
