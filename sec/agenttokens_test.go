package sec

import (
	"testing"
	"time"
)

func TestAgentTokenRoundTrip(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateHMACSignedAgentToken(secret, "agent-7", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	agentID, err := ParseHMACSignedAgentToken(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if agentID != "agent-7" {
		t.Fatalf("agent id: got %q want %q", agentID, "agent-7")
	}
}

func TestAgentTokenNoExpiry(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateHMACSignedAgentToken(secret, "agent-7", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err = ParseHMACSignedAgentToken(token, secret); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestAgentTokenWrongSecretRejected(t *testing.T) {
	token, err := GenerateHMACSignedAgentToken([]byte("secret-a"), "agent-7", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err = ParseHMACSignedAgentToken(token, []byte("secret-b")); err == nil {
		t.Fatal("expected verification failure with the wrong secret")
	}
}

func TestAgentTokenExpiredRejected(t *testing.T) {
	secret := []byte("unit-test-secret")
	token, err := GenerateHMACSignedAgentToken(secret, "agent-7", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err = ParseHMACSignedAgentToken(token, secret); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestExtractBearerToken(t *testing.T) {
	if got := ExtractBearerToken("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Fatalf("got %q want %q", got, "abc.def.ghi")
	}
	if got := ExtractBearerToken("Basic dXNlcg=="); got != "" {
		t.Fatalf("non-bearer header: got %q want empty", got)
	}
	if got := ExtractBearerToken(""); got != "" {
		t.Fatalf("empty header: got %q want empty", got)
	}
	if got := ExtractBearerToken("Bearer "); got != "" {
		t.Fatalf("empty token: got %q want empty", got)
	}
}
