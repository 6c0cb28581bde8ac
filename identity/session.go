package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is where browsers carry the provider's short-lived session token.
const SessionCookie = "__session"

var ErrNoSession = errors.New("no session token")

// SessionVerifier checks RS256 session tokens issued by the identity provider.
type SessionVerifier struct {
	parser  *jwt.Parser
	key     interface{}
	parties map[string]bool
}

// sessionClaims adds the provider's azp claim, the origin that requested the token.
type sessionClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string `json:"azp,omitempty"`
}

// NewSessionVerifier pins the issuer. When parties is non-empty, a token
// carrying an azp claim must name one of them.
func NewSessionVerifier(publicKeyPEM, issuer string, parties []string) (*SessionVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse session public key: %w", err)
	}
	if issuer == "" {
		return nil, errors.New("session issuer is required")
	}
	allowed := make(map[string]bool, len(parties))
	for _, p := range parties {
		allowed[p] = true
	}
	return &SessionVerifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(issuer),
			jwt.WithLeeway(5*time.Second),
		),
		key:     key,
		parties: allowed,
	}, nil
}

// Verify returns the external user id (the sub claim) of a valid token.
func (v *SessionVerifier) Verify(token string) (string, error) {
	claims := &sessionClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	if len(v.parties) > 0 && claims.AuthorizedParty != "" && !v.parties[claims.AuthorizedParty] {
		return "", fmt.Errorf("session token azp %q is not an authorized party", claims.AuthorizedParty)
	}
	return claims.Subject, nil
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrNoSession
}
