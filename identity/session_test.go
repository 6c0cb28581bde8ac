package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return priv, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

const testIssuer = "https://clerk.learnify.test"

func signToken(t *testing.T, priv *rsa.PrivateKey, sub string, exp time.Time) string {
	t.Helper()
	return signClaims(t, priv, sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer: testIssuer, Subject: sub, ExpiresAt: jwt.NewNumericDate(exp), IssuedAt: jwt.NewNumericDate(time.Now()),
	}})
}

func signClaims(t *testing.T, priv *rsa.PrivateKey, claims sessionClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestSessionVerifier(t *testing.T) {
	priv, pub := newKeyPair(t)
	v, err := NewSessionVerifier(pub, testIssuer, nil)
	if err != nil {
		t.Fatalf("NewSessionVerifier: %v", err)
	}

	sub, err := v.Verify(signToken(t, priv, "user_123", time.Now().Add(time.Minute)))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != "user_123" {
		t.Errorf("subject = %q", sub)
	}

	if _, err := v.Verify(signToken(t, priv, "user_123", time.Now().Add(-time.Hour))); err == nil {
		t.Error("expired token accepted")
	}

	other, _ := newKeyPair(t)
	if _, err := v.Verify(signToken(t, other, "user_123", time.Now().Add(time.Minute))); err == nil {
		t.Error("token from another key accepted")
	}

	hs, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user_123", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	if _, err := v.Verify(hs); err == nil {
		t.Error("HS256 token accepted")
	}

	if _, err := v.Verify(signToken(t, priv, "", time.Now().Add(time.Minute))); err == nil {
		t.Error("token without subject accepted")
	}
}

func TestSessionVerifierIssuerAndParty(t *testing.T) {
	priv, pub := newKeyPair(t)
	v, err := NewSessionVerifier(pub, testIssuer, []string{"https://learnify.test"})
	if err != nil {
		t.Fatal(err)
	}
	claims := func(iss, azp string) sessionClaims {
		return sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer: iss, Subject: "user_1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			AuthorizedParty: azp,
		}
	}
	tests := []struct {
		name   string
		claims sessionClaims
		ok     bool
	}{
		{"listed party", claims(testIssuer, "https://learnify.test"), true},
		{"no azp", claims(testIssuer, ""), true},
		{"other party", claims(testIssuer, "https://evil.test"), false},
		{"other issuer", claims("https://clerk.other.test", "https://learnify.test"), false},
		{"no issuer", claims("", "https://learnify.test"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(signClaims(t, priv, tt.claims))
			if (err == nil) != tt.ok {
				t.Errorf("Verify err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestNewSessionVerifierBadConfig(t *testing.T) {
	if _, err := NewSessionVerifier("not a key", testIssuer, nil); err == nil {
		t.Error("bad PEM: expected error")
	}
	_, pub := newKeyPair(t)
	if _, err := NewSessionVerifier(pub, "", nil); err == nil {
		t.Error("empty issuer: expected error")
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := TokenFromRequest(r); err != ErrNoSession {
		t.Errorf("no token: err = %v", err)
	}

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	if tok, _ := TokenFromRequest(r); tok != "cookie-token" {
		t.Errorf("cookie token = %q", tok)
	}

	r.Header.Set("Authorization", "Bearer header-token")
	if tok, _ := TokenFromRequest(r); tok != "header-token" {
		t.Errorf("header wins over cookie, got %q", tok)
	}

	r.Header.Set("Authorization", "Basic abc")
	if _, err := TokenFromRequest(r); err == nil {
		t.Error("basic auth should be rejected")
	}
}
