package identity

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

func signedHeaders(t *testing.T, v *WebhookVerifier, id string, at time.Time, body []byte) http.Header {
	t.Helper()
	h := http.Header{}
	h.Set(HeaderWebhookID, id)
	h.Set(HeaderWebhookTimestamp, formatInt(at.Unix()))
	h.Set(HeaderWebhookSignature, v.Sign(id, at, body))
	return h
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func newTestVerifier(t *testing.T, now time.Time) *WebhookVerifier {
	t.Helper()
	v, err := NewWebhookVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewWebhookVerifier: %v", err)
	}
	v.now = func() time.Time { return now }
	return v
}

func TestWebhookVerifyValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestVerifier(t, now)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	h := signedHeaders(t, v, "msg_1", now, body)
	if err := v.Verify(h, body); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// Multiple signatures: one stale rotation entry plus the valid one.
	h.Set(HeaderWebhookSignature, "v1,bm9wZQ== "+h.Get(HeaderWebhookSignature))
	if err := v.Verify(h, body); err != nil {
		t.Fatalf("Verify with rotated secrets: %v", err)
	}
}

func TestWebhookVerifyRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestVerifier(t, now)
	body := []byte(`{"type":"user.created"}`)

	tests := []struct {
		name   string
		mutate func(h http.Header) []byte
		want   error
	}{
		{"missing id", func(h http.Header) []byte { h.Del(HeaderWebhookID); return body }, ErrMissingHeaders},
		{"missing timestamp", func(h http.Header) []byte { h.Del(HeaderWebhookTimestamp); return body }, ErrMissingHeaders},
		{"missing signature", func(h http.Header) []byte { h.Del(HeaderWebhookSignature); return body }, ErrMissingHeaders},
		{"tampered body", func(h http.Header) []byte { return []byte(`{"type":"user.deleted"}`) }, ErrSignatureInvalid},
		{"wrong version", func(h http.Header) []byte {
			h.Set(HeaderWebhookSignature, "v2,"+h.Get(HeaderWebhookSignature)[3:])
			return body
		}, ErrSignatureInvalid},
		{"stale", func(h http.Header) []byte {
			h.Set(HeaderWebhookTimestamp, formatInt(now.Add(-10*time.Minute).Unix()))
			return body
		}, ErrStaleTimestamp},
		{"future", func(h http.Header) []byte {
			h.Set(HeaderWebhookTimestamp, formatInt(now.Add(10*time.Minute).Unix()))
			return body
		}, ErrStaleTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := signedHeaders(t, v, "msg_1", now, body)
			b := tt.mutate(h)
			if err := v.Verify(h, b); !errors.Is(err, tt.want) {
				t.Errorf("Verify = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWebhookSecretWithoutPrefix(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))
	a, err := NewWebhookVerifier(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewWebhookVerifier("whsec_" + raw)
	if err != nil {
		t.Fatal(err)
	}
	at := time.Unix(1_700_000_000, 0)
	if a.Sign("m", at, []byte("x")) != b.Sign("m", at, []byte("x")) {
		t.Error("prefix should not change the key")
	}
	if _, err := NewWebhookVerifier("whsec_!!notbase64"); err == nil {
		t.Error("expected decode error")
	}
}
