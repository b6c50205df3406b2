package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthenticated = errors.New("no authenticated identity")
)

// RoleGrouping is one of the role containers a Keycloak-style token carries.
type RoleGrouping struct {
	Roles []string `json:"roles"`
}

// Claims is the decoded identity token. Only sub is guaranteed; every other
// field may be absent and must be tolerated.
type Claims struct {
	jwt.RegisteredClaims
	RealmAccess       RoleGrouping `json:"realm_access"`
	ClientAccess      RoleGrouping `json:"client_access"`
	PreferredUsername string       `json:"preferred_username"`
	Email             string       `json:"email"`
	GivenName         string       `json:"given_name"`
	FamilyName        string       `json:"family_name"`
}

// RoleSet returns the union of realm and client roles. The groupings are
// merged before any derivation so that their relative order never matters.
func (c *Claims) RoleSet() []string {
	roles := make([]string, 0, len(c.RealmAccess.Roles)+len(c.ClientAccess.Roles))
	roles = append(roles, c.RealmAccess.Roles...)
	roles = append(roles, c.ClientAccess.Roles...)
	return roles
}

// Identity is the caller identity for one request. It is passed explicitly
// to services and guards, never read from ambient state.
type Identity struct {
	Subject string  // external subject id from the token issuer
	Role    Role    // single effective role for this request
	Claims  *Claims // full decoded claims, for provisioning
}

type contextKey string

const identityKey contextKey = "caller_identity"

// WithIdentity stores the caller identity in the request context. Only the
// auth middleware should call this outside of tests.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext extracts the caller identity placed by the middleware.
// Fails with ErrUnauthenticated when the request carried no verified token.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok || ident.Subject == "" {
		return Identity{}, ErrUnauthenticated
	}
	return ident, nil
}
