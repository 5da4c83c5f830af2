package token

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
)

// Claim names under which the backend's token issuer publishes identity
// fields. The issuer emits both schema-URI and short-name variants depending
// on context; the aliasing is resolved here, once, and nowhere else.
const (
	claimSubject = "sub"
	claimUserID  = "userId"
	claimRole    = "role"
	claimRoleMS  = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	claimName    = "name"
	claimNameXML = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

// DecodeClaims extracts the actor's identity from a compact three-part bearer
// token without verifying its signature. Verification is the backend's job;
// the gateway only needs the payload claims for identity and role routing.
//
// A malformed token (wrong segment count, undecodable payload, invalid JSON)
// or one without a subject yields an unauthenticated error: the caller has no
// usable identity and must not proceed.
func DecodeClaims(tok string) (domain.Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return domain.Claims{}, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("malformed bearer token"),
			errors.WithCause(err))
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Claims{}, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("token payload is not a claims object"))
	}

	c := domain.Claims{
		Subject: stringClaim(mc, claimSubject, claimUserID),
		Role:    strings.ToLower(stringClaim(mc, claimRoleMS, claimRole)),
		Name:    stringClaim(mc, claimNameXML, claimName),
	}

	if c.Subject == "" {
		return domain.Claims{}, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("token has no subject claim"))
	}

	return c, nil
}

// stringClaim returns the first non-empty string value among the given
// aliases.
func stringClaim(mc jwt.MapClaims, aliases ...string) string {
	for _, a := range aliases {
		if v, ok := mc[a].(string); ok && v != "" {
			return v
		}
	}

	return ""
}
