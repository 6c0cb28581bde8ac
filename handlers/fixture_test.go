package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/logger"
	"github.com/learnify/backend/metrics"
	"github.com/learnify/backend/middleware"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/service"
	"github.com/learnify/backend/store/memstore"
)

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (string, error) {
	if sub, ok := f[token]; ok {
		return sub, nil
	}
	return "", errors.New("bad token")
}

type fakeRoles map[string]models.Role

func (f fakeRoles) Resolve(ctx context.Context, userID string) (models.Role, error) {
	return f[userID], nil
}

type fakeMedia struct {
	objects map[string]string // key -> content type
	deleted []string
	failPut bool
}

func (m *fakeMedia) Upload(ctx context.Context, prefix, name string, body io.Reader, contentType string) (string, error) {
	if m.failPut {
		return "", errors.New("s3 down")
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	key := service.ObjectKey(prefix, name)
	m.objects[key] = contentType
	return key, nil
}

func (m *fakeMedia) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

func (m *fakeMedia) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://bucket.s3.test/" + key + "?sig=1", nil
}

type fakeProvider struct{ updates []string }

func (p *fakeProvider) UpdateUser(ctx context.Context, userID string, upd identity.ProfileUpdate) error {
	p.updates = append(p.updates, userID)
	return nil
}

type env struct {
	t        *testing.T
	store    *memstore.Store
	media    *fakeMedia
	provider *fakeProvider
	webhook  *identity.WebhookVerifier
	handler  http.Handler
}

// Tokens: tok-instructor (user_i), tok-other (user_o, instructor),
// tok-student (user_s), tok-admin (user_a), tok-new (user_n, no role yet).
func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.New()
	media := &fakeMedia{objects: map[string]string{}}
	provider := &fakeProvider{}
	log := logger.Nop()

	wv, err := identity.NewWebhookVerifier(testWebhookSecret)
	if err != nil {
		t.Fatal(err)
	}

	catalog := service.NewCatalogService(st)
	content := service.NewContentService(st, st)
	profiles := service.NewProfileService(st, provider, nil, log)

	verifier := fakeVerifier{"tok-instructor": "user_i", "tok-other": "user_o", "tok-student": "user_s", "tok-admin": "user_a", "tok-new": "user_n"}
	roles := fakeRoles{"user_i": models.RoleInstructor, "user_o": models.RoleInstructor, "user_s": models.RoleStudent, "user_a": models.RoleAdmin}
	pages, _ := NewPagesHandler("", log)

	h := NewRouter(Routes{
		Courses:    &CoursesHandler{Catalog: catalog, Media: media, Metrics: metrics.Nop{}, Log: log, MaxBytes: 1 << 20},
		Instructor: &InstructorHandler{Catalog: catalog, Content: content, Actors: profiles, Log: log},
		Uploads:    &UploadHandler{Media: media, Log: log, MaxBytes: 1 << 20},
		Users:      &UsersHandler{Profiles: profiles, Log: log},
		Webhook:    &WebhookHandler{Verifier: wv, Profiles: profiles, Metrics: metrics.Nop{}, Log: log},
		AddUserWebhook: &WebhookHandler{
			Verifier: wv,
			Profiles: profiles,
			Accept:   map[string]bool{identity.EventUserCreated: true},
			Metrics:  metrics.Nop{},
			Log:      log,
		},
		DB:    &DBHandler{Store: st, Log: log},
		Pages: pages,
		Guard: middleware.Guard(verifier, roles, metrics.Nop{}, log),
	})
	return &env{t: t, store: st, media: media, provider: provider, webhook: wv, handler: h}
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			if err != nil {
				e.t.Fatal(err)
			}
			rd = bytes.NewReader(buf)
		}
	}
	r := httptest.NewRequest(method, path, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(r)
}

func (e *env) serve(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, w, &body)
	return body["error"]
}

func courseBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"description":  "Learn to write tests",
		"thumbnail":    "https://img.example/t.png",
		"language":     "English",
		"level":        "beginner",
		"categoryId":   "cat-1",
		"instructorId": "user_i",
		"price":        0,
		"tags":         []string{"testing", "go"},
	}
}
