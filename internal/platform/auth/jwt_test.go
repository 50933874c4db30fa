package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	manager, err := NewTokenManager("secret", "kanvas", time.Hour)
	if err != nil {
		t.Fatalf("new manager failed: %v", err)
	}
	token, expiresAt, err := manager.Issue(42, "ada")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %s", expiresAt)
	}
	userID, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected principal 42, got %d", userID)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager, _ := NewTokenManager("secret", "kanvas", time.Minute)
	past := manager.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := past.Issue(7, "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewTokenManager("secret-a", "kanvas", time.Hour)
	verifier, _ := NewTokenManager("secret-b", "kanvas", time.Hour)
	token, _, _ := issuer.Issue(7, "")
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := verifier.Verify(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestTokenFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	if got := TokenFromRequest(req); got != "header-token" {
		t.Fatalf("expected header token, got %q", got)
	}
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
	if got := TokenFromRequest(req); got != "cookie-token" {
		t.Fatalf("expected cookie to win, got %q", got)
	}
	if got := TokenFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
