package auth

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewSessionManager(time.Hour)

	token := m.Create(42)
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	userID, ok := m.Resolve(token)
	if !ok || userID != 42 {
		t.Fatalf("resolve = (%d, %v), want (42, true)", userID, ok)
	}

	m.Destroy(token)
	if _, ok := m.Resolve(token); ok {
		t.Fatal("expected destroyed token to resolve as absent")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	m := NewSessionManager(time.Hour)
	if m.Create(1) == m.Create(1) {
		t.Fatal("expected distinct tokens for separate logins")
	}
}

func TestResolveUnknownToken(t *testing.T) {
	m := NewSessionManager(time.Hour)
	if _, ok := m.Resolve("no-such-token"); ok {
		t.Fatal("expected unknown token to resolve as absent")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(time.Hour)

	current := time.Now()
	m.now = func() time.Time { return current }

	token := m.Create(7)
	if _, ok := m.Resolve(token); !ok {
		t.Fatal("expected fresh session to resolve")
	}

	current = current.Add(2 * time.Hour)
	if _, ok := m.Resolve(token); ok {
		t.Fatal("expected expired session to resolve as absent")
	}
}

func TestDestroyUnknownTokenIsNoop(t *testing.T) {
	m := NewSessionManager(time.Hour)
	m.Destroy("never-issued")
}
