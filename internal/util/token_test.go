package util

import (
	"encoding/hex"
	"testing"
)

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if len(token) != resetTokenBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", resetTokenBytes*2, len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Fatalf("expected hex-encoded token: %v", err)
	}

	other, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if token == other {
		t.Fatalf("expected tokens to differ")
	}
}

func TestHashResetTokenDeterministic(t *testing.T) {
	if HashResetToken("abc") != HashResetToken("abc") {
		t.Fatalf("expected deterministic digest")
	}
	if HashResetToken("abc") == HashResetToken("abd") {
		t.Fatalf("expected distinct digests for distinct tokens")
	}
	if len(HashResetToken("abc")) != 64 {
		t.Fatalf("expected 64 hex chars")
	}
}
