package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/models"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (string, error) {
	if sub, ok := f[token]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

type fakeRoles struct {
	roles map[string]models.Role
	err   error
	calls int
}

func (f *fakeRoles) Resolve(ctx context.Context, userID string) (models.Role, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.roles[userID], nil
}

type countingRecorder struct {
	metrics.Nop
	decisions map[string]int
}

func (c *countingRecorder) RecordGuardDecision(action string) { c.decisions[action]++ }

func newGuard(roles *fakeRoles, rec metrics.Recorder) (http.Handler, *Identity) {
	seen := &Identity{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok {
			*seen = id
		}
		w.WriteHeader(http.StatusOK)
	})
	verifier := fakeVerifier{"tok-instructor": "user_i", "tok-student": "user_s", "tok-new": "user_n"}
	return Guard(verifier, roles, rec, logger.Nop())(next), seen
}

func defaultRoles() *fakeRoles {
	return &fakeRoles{roles: map[string]models.Role{
		"user_i": models.RoleInstructor,
		"user_s": models.RoleStudent,
	}}
}

func request(path, token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestGuardInstructorOnDashboardRedirects(t *testing.T) {
	h, _ := newGuard(defaultRoles(), metrics.Nop{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("/dashboard", "tok-instructor"))

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/instructor/dashboard" {
		t.Errorf("Location = %q", loc)
	}
}

func TestGuardLandingWithoutSessionForwards(t *testing.T) {
	roles := defaultRoles()
	h, seen := newGuard(roles, metrics.Nop{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("/", ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if seen.State != Unauthenticated {
		t.Errorf("state = %v", seen.State)
	}
	if roles.calls != 0 {
		t.Error("role lookup without a session")
	}
}

func TestGuardSessionCookie(t *testing.T) {
	h, seen := newGuard(defaultRoles(), metrics.Nop{})
	r := request("/courses", "")
	r.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: "tok-student"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if seen.ExternalID != "user_s" || seen.Role != models.RoleStudent {
		t.Errorf("identity = %+v", seen)
	}
}

func TestGuardNoRoleGoesToCompleteProfile(t *testing.T) {
	h, _ := newGuard(defaultRoles(), metrics.Nop{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("/dashboard", "tok-new"))
	if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/complete-profile" {
		t.Errorf("status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestGuardFailsClosed(t *testing.T) {
	tests := map[string]struct {
		token string
		roles *fakeRoles
	}{
		"invalid token":      {"forged", defaultRoles()},
		"role lookup errors": {"tok-instructor", &fakeRoles{err: errors.New("provider down")}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newGuard(tt.roles, metrics.Nop{})
			w := httptest.NewRecorder()
			h.ServeHTTP(w, request("/instructor/dashboard", tt.token))
			if w.Code != http.StatusTemporaryRedirect || w.Header().Get("Location") != "/" {
				t.Errorf("status=%d location=%q", w.Code, w.Header().Get("Location"))
			}
		})
	}
}

func TestGuardAllowlistSkipsResolution(t *testing.T) {
	roles := &fakeRoles{err: errors.New("should not be called")}
	rec := &countingRecorder{decisions: map[string]int{}}
	h, _ := newGuard(roles, rec)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/webhook", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if roles.calls != 0 {
		t.Error("role lookup on allowlisted path")
	}
	if rec.decisions["forward"] != 1 {
		t.Errorf("decisions = %v", rec.decisions)
	}
}

func TestGuardAllowlistCarriesSessionSubject(t *testing.T) {
	roles := &fakeRoles{err: errors.New("should not be called")}
	h, seen := newGuard(roles, metrics.Nop{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, request("/api/user/update", "tok-new"))
	if w.Code != http.StatusOK || seen.ExternalID != "user_n" || seen.Role != models.RoleUnset {
		t.Errorf("status=%d identity=%+v", w.Code, *seen)
	}
	if roles.calls != 0 {
		t.Error("role lookup on allowlisted path")
	}

	*seen = Identity{}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, request("/api/user/update", "tok-forged"))
	if w.Code != http.StatusOK || seen.ExternalID != "" {
		t.Errorf("forged token: status=%d identity=%+v", w.Code, *seen)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleInstructor, models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	tests := []struct {
		id   *Identity
		want int
	}{
		{nil, http.StatusUnauthorized},
		{&Identity{ExternalID: "u", Role: models.RoleStudent}, http.StatusForbidden},
		{&Identity{ExternalID: "u", Role: models.RoleInstructor}, http.StatusNoContent},
		{&Identity{ExternalID: "u", Role: models.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/instructor/x", nil)
		if tt.id != nil {
			r = r.WithContext(WithIdentity(r.Context(), *tt.id))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != tt.want {
			t.Errorf("identity %+v: status = %d, want %d", tt.id, w.Code, tt.want)
		}
	}
}

func nopRecorder() metrics.Recorder { return metrics.Nop{} }
