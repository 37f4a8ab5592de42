package crypto

import "testing"

func TestRefreshTokens(t *testing.T) {
	a, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	b, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	if len(a) != 43 {
		t.Fatalf("expected 43 chars for 32 bytes, got %d", len(a))
	}
	if HashToken(a) != HashToken(a) || HashToken(a) == HashToken(b) {
		t.Fatalf("expected stable distinct hashes")
	}
	if HashToken(a) == a {
		t.Fatalf("expected hash to differ from token")
	}
}
