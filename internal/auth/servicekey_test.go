package auth

import (
	"strings"
	"testing"
)

func TestGenerateServiceKey(t *testing.T) {
	plaintext, hash, err := GenerateServiceKey()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.HasPrefix(plaintext, "mx_ops_") {
		t.Errorf("expected mx_ops_ prefix, got %s", plaintext)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected argon2id PHC hash, got %s", hash)
	}

	match, err := VerifyServiceKey(plaintext, hash)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if !match {
		t.Error("generated key should verify against its own hash")
	}
}

func TestVerifyServiceKey_WrongKey(t *testing.T) {
	_, hash, err := GenerateServiceKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	match, err := VerifyServiceKey("mx_ops_0000000000000000", hash)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if match {
		t.Error("wrong key must not verify")
	}
}

func TestVerifyServiceKey_InvalidHash(t *testing.T) {
	cases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not phc", "plainhash"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyServiceKey("key", tc.hash); err == nil {
				t.Error("expected error for malformed hash")
			}
		})
	}
}

func TestHashServiceKey_UniqueSalts(t *testing.T) {
	h1, err := HashServiceKey("same-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashServiceKey("same-key")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("hashing the same key twice must produce different salts")
	}
}
