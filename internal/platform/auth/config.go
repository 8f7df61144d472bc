package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lodestar-ml/lodestar-go/internal/platform/env"
)

type Mode string

const (
	ModeOIDC Mode = "oidc"
	ModeDev  Mode = "dev"
)

type Config struct {
	Mode Mode

	RolesClaim string
	EmailClaim string

	OIDCIssuerURL string
	OIDCClientID  string

	DevSubject string
	DevEmail   string
	DevRoles   []string
}

func ConfigFromEnv() (Config, error) {
	modeRaw := strings.ToLower(strings.TrimSpace(env.String("AUTH_MODE", string(ModeOIDC))))
	var mode Mode
	switch modeRaw {
	case string(ModeOIDC):
		mode = ModeOIDC
	case string(ModeDev):
		mode = ModeDev
	default:
		return Config{}, fmt.Errorf("AUTH_MODE must be one of: oidc, dev (got %q)", modeRaw)
	}

	cfg := Config{
		Mode:          mode,
		RolesClaim:    env.String("AUTH_ROLES_CLAIM", "roles"),
		EmailClaim:    env.String("AUTH_EMAIL_CLAIM", "email"),
		OIDCIssuerURL: env.String("OIDC_ISSUER_URL", ""),
		OIDCClientID:  env.String("OIDC_CLIENT_ID", ""),
		DevSubject:    env.String("DEV_AUTH_SUBJECT", "dev-user"),
		DevEmail:      env.String("DEV_AUTH_EMAIL", "dev-user@example.local"),
		DevRoles:      env.Strings("DEV_AUTH_ROLES", []string{"admin"}),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeOIDC:
		if strings.TrimSpace(c.OIDCIssuerURL) == "" {
			return errors.New("OIDC_ISSUER_URL is required when AUTH_MODE=oidc")
		}
		if strings.TrimSpace(c.OIDCClientID) == "" {
			return errors.New("OIDC_CLIENT_ID is required when AUTH_MODE=oidc")
		}
	case ModeDev:
		if strings.TrimSpace(c.DevSubject) == "" {
			return errors.New("DEV_AUTH_SUBJECT is required when AUTH_MODE=dev")
		}
	default:
		return fmt.Errorf("unsupported auth mode %q", c.Mode)
	}
	if strings.TrimSpace(c.RolesClaim) == "" {
		return errors.New("AUTH_ROLES_CLAIM is required")
	}
	if strings.TrimSpace(c.EmailClaim) == "" {
		return errors.New("AUTH_EMAIL_CLAIM is required")
	}
	return nil
}
