package oauthstate

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGenerateStateIsUnique(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("generate state: %v", err)
	}
	if a == b {
		t.Fatal("two states must not collide")
	}
	if len(a) != 43 { // 32 bytes, raw URL base64
		t.Fatalf("unexpected state length %d", len(a))
	}
}

func TestGeneratePKCEChallengeIsS256OfVerifier(t *testing.T) {
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		t.Fatalf("generate pkce: %v", err)
	}

	hash := sha256.Sum256([]byte(verifier))
	want := base64.RawURLEncoding.EncodeToString(hash[:])
	if challenge != want {
		t.Fatalf("challenge %q is not S256 of verifier", challenge)
	}
}
