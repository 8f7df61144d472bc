package auth

import (
	"context"
	"net/http"
)

// DevAuthenticator grants a fixed identity to every request. Local
// development only.
type DevAuthenticator struct {
	identity Identity
}

func NewDevAuthenticator(cfg Config) *DevAuthenticator {
	return &DevAuthenticator{
		identity: Identity{
			Subject: cfg.DevSubject,
			Email:   cfg.DevEmail,
			Roles:   cfg.DevRoles,
		},
	}
}

func (a *DevAuthenticator) Authenticate(ctx context.Context, r *http.Request) (Identity, error) {
	return a.identity, nil
}
