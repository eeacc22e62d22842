package token

import (
	"testing"
	"time"
)

func TestService_IssueVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	tok, err := svc.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok == "" {
		t.Fatal("Issue returned empty token")
	}

	id, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Errorf("Verify user id: got %d, want 42", id)
	}
}

func TestService_Verify_Expired(t *testing.T) {
	svc := NewService([]byte("test-secret"), -time.Minute)

	tok, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Verify(tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got: %v", err)
	}
}

func TestService_Verify_WrongSecret(t *testing.T) {
	issuer := NewService([]byte("secret-a"), time.Hour)
	verifier := NewService([]byte("secret-b"), time.Hour)

	tok, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for wrong secret, got: %v", err)
	}
}

func TestService_Verify_Malformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(tok); err != ErrInvalidToken {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got: %v", tok, err)
		}
	}
}

func TestNewService_DefaultTTL(t *testing.T) {
	svc := NewService([]byte("test-secret"), 0)
	if svc.ttl != 24*time.Hour {
		t.Errorf("default ttl: got %v, want 24h", svc.ttl)
	}
}
