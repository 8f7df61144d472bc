package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCAuthenticator verifies bearer ID tokens against a configured OIDC
// issuer. Interactive login flows are the gateway's concern; services only
// ever see tokens.
type OIDCAuthenticator struct {
	cfg      Config
	verifier *oidc.IDTokenVerifier
}

func NewOIDCAuthenticator(ctx context.Context, cfg Config) (*OIDCAuthenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode != ModeOIDC {
		return nil, fmt.Errorf("auth mode must be oidc (got %q)", cfg.Mode)
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &OIDCAuthenticator{
		cfg:      cfg,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
	}, nil
}

func (a *OIDCAuthenticator) Authenticate(ctx context.Context, r *http.Request) (Identity, error) {
	rawToken := tokenFromHeader(r)
	if rawToken == "" {
		return Identity{}, ErrUnauthenticated
	}

	idToken, err := a.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, err
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, err
	}

	subject, _ := claims["sub"].(string)
	return Identity{
		Subject: subject,
		Email:   extractStringClaim(claims, a.cfg.EmailClaim),
		Roles:   extractRolesClaim(claims, a.cfg.RolesClaim),
	}, nil
}

// NewAuthenticator builds the authenticator matching cfg.Mode.
func NewAuthenticator(ctx context.Context, cfg Config) (Authenticator, error) {
	switch cfg.Mode {
	case ModeDev:
		return NewDevAuthenticator(cfg), nil
	case ModeOIDC:
		return NewOIDCAuthenticator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

func tokenFromHeader(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func extractStringClaim(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}

func extractRolesClaim(claims map[string]any, key string) []string {
	switch v := claims[key].(type) {
	case []any:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				roles = append(roles, s)
			}
		}
		return roles
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return strings.Fields(v)
	default:
		return nil
	}
}
