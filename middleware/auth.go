package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified caller attached to the request context by Guard.
type Identity struct {
	ExternalID string
	Role       models.Role
	State      State
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// TokenVerifier validates a session token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RoleLookup resolves the role claim of an external user.
type RoleLookup interface {
	Resolve(ctx context.Context, userID string) (models.Role, error)
}

// Guard resolves the caller's state and applies Decide to every request.
// Any failure while resolving the state is treated as unauthenticated.
func Guard(verifier TokenVerifier, roles RoleLookup, rec metrics.Recorder, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if alwaysForward[cleanPath(r.URL.Path)] {
				rec.RecordGuardDecision(string(Forward))
				if id, ok := session(r, verifier); ok {
					noteUser(r.Context(), id.ExternalID)
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
				next.ServeHTTP(w, r)
				return
			}

			id := resolve(r, verifier, roles, log)
			noteUser(r.Context(), id.ExternalID)
			d := Decide(id.State, r.URL.Path)
			rec.RecordGuardDecision(string(d.Action))

			if d.Action == Redirect {
				log.Debug("guard redirect", "path", r.URL.Path, "state", id.State.String(), "location", d.Location)
				http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// session verifies the token of an allowlisted request without resolving the
// role, so handlers behind the allowlist can still tell who is calling.
func session(r *http.Request, verifier TokenVerifier) (Identity, bool) {
	token, err := identity.TokenFromRequest(r)
	if err != nil {
		return Identity{}, false
	}
	sub, err := verifier.Verify(token)
	if err != nil {
		return Identity{}, false
	}
	return Identity{ExternalID: sub, State: AuthenticatedNoRole}, true
}

func resolve(r *http.Request, verifier TokenVerifier, roles RoleLookup, log *logger.Logger) Identity {
	token, err := identity.TokenFromRequest(r)
	if err != nil {
		if !errors.Is(err, identity.ErrNoSession) {
			log.Warn("session token unreadable", "path", r.URL.Path, "error", err)
		}
		return Identity{State: Unauthenticated}
	}
	sub, err := verifier.Verify(token)
	if err != nil {
		log.Warn("session verification failed", "path", r.URL.Path, "error", err)
		return Identity{State: Unauthenticated}
	}
	role, err := roles.Resolve(r.Context(), sub)
	if err != nil {
		log.Error("role resolution failed", "user", sub, "error", err)
		return Identity{State: Unauthenticated}
	}
	id := Identity{ExternalID: sub, Role: role}
	switch role {
	case models.RoleStudent:
		id.State = AuthenticatedStudent
	case models.RoleInstructor:
		id.State = AuthenticatedInstructor
	case models.RoleAdmin:
		id.State = AuthenticatedAdmin
	default:
		id.State = AuthenticatedNoRole
	}
	return id
}

// RequireRole rejects callers whose role is not listed with 403.
func RequireRole(allowed ...models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || id.ExternalID == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range allowed {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
