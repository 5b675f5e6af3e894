package push

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func testKeyPEM(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	return string(block), key
}

func newTestClient(t *testing.T) (*Client, *ecdsa.PrivateKey) {
	t.Helper()
	pemKey, key := testKeyPEM(t)
	c, err := New(Config{
		KeyPEM:   pemKey,
		KeyID:    "KEY123",
		TeamID:   "TEAM456",
		BundleID: "app.makex.ios",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, key
}

func TestNew_BadKey(t *testing.T) {
	_, err := New(Config{KeyPEM: "not a pem"})
	if err == nil {
		t.Fatal("expected error for invalid key material")
	}
}

func TestProviderToken(t *testing.T) {
	c, key := newTestClient(t)

	signed, err := c.providerToken()
	if err != nil {
		t.Fatalf("providerToken: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if kid := parsed.Header["kid"]; kid != "KEY123" {
		t.Errorf("kid = %v, want KEY123", kid)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["iss"] != "TEAM456" {
		t.Errorf("iss = %v, want TEAM456", claims["iss"])
	}

	// A second call inside the lifetime reuses the cached token.
	again, err := c.providerToken()
	if err != nil {
		t.Fatalf("providerToken (cached): %v", err)
	}
	if again != signed {
		t.Error("expected cached token to be reused")
	}
}

func TestSendAlert(t *testing.T) {
	var gotPath, gotTopic, gotPushType string
	var gotPayload apsPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTopic = r.Header.Get("apns-topic")
		gotPushType = r.Header.Get("apns-push-type")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := newTestClient(t)
	c.host = srv.URL

	err := c.SendAlert(context.Background(), "devtok1", Alert{Title: "Build done", Body: "Your app is ready"})
	if err != nil {
		t.Fatalf("SendAlert: %v", err)
	}

	if gotPath != "/3/device/devtok1" {
		t.Errorf("path = %q, want /3/device/devtok1", gotPath)
	}
	if gotTopic != "app.makex.ios" {
		t.Errorf("apns-topic = %q, want app.makex.ios", gotTopic)
	}
	if gotPushType != "alert" {
		t.Errorf("apns-push-type = %q, want alert", gotPushType)
	}
	if gotPayload.APS.Alert.Title != "Build done" {
		t.Errorf("alert title = %q, want %q", gotPayload.APS.Alert.Title, "Build done")
	}
}

func TestSendAlert_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`{"reason":"Unregistered"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t)
	c.host = srv.URL

	if err := c.SendAlert(context.Background(), "stale", Alert{Title: "t"}); err == nil {
		t.Fatal("expected error for rejected push")
	}
}
