package auth

import (
	"errors"
	"testing"
	"time"
)

func TestLoginAndVerify(t *testing.T) {
	a := New("hunter2", "secret", time.Hour)

	token, expires, err := a.Login("hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Error("expiry should be in the future")
	}
	if err := a.Verify(token); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a := New("hunter2", "secret", time.Hour)
	if _, _, err := a.Login("nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	a := New("", "", 0)
	if a.Enabled() {
		t.Fatal("should be disabled without password")
	}
	if _, _, err := a.Login(""); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if err := a.Verify("x"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	a := New("pw", "secret", time.Hour)
	token, _, err := a.Login("pw")
	if err != nil {
		t.Fatal(err)
	}

	other := New("pw", "other-secret", time.Hour)
	if err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token signed with another secret should fail, got %v", err)
	}

	if err := a.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage should fail, got %v", err)
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := a.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token should fail, got %v", err)
	}
}
