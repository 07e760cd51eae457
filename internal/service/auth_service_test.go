package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/cache"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/domain"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/memory"
)

const testSecret = "test-secret"

func newTestAuthService() (AuthService, cache.TokenStore) {
	tokens := cache.NewMemoryTokenStore(nil)
	return NewAuthService(memory.NewUserRepository(), tokens, testSecret, time.Hour, 24*time.Hour), tokens
}

func TestRegisterValidatesAndNormalizes(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Ana ", "Ana@Example.com", "password123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ana@example.com" || user.Name != "Ana" || user.Role != domain.RoleUser || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Register(ctx, "Other", "ANA@example.com", "password123"); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	cases := []struct{ name, email, password string }{
		{"", "x@example.com", "password123"},
		{"X", "not-an-email", "password123"},
		{"X", "x@example.com", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.name, tc.email, tc.password); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("Register(%q, %q): expected validation error, got %v", tc.name, tc.email, err)
		}
	}
}

func TestLoginIssuesAccessAndRefreshTokens(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()
	registered, _ := svc.Register(ctx, "Ana", "ana@example.com", "password123")

	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong-password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("unknown email must look like a bad password, got %v", err)
	}

	pair, user, err := svc.Login(ctx, "ANA@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	access, err := ParseToken(pair.AccessToken, testSecret)
	if err != nil || access.Type != TokenTypeAccess || access.UserID != registered.ID.Hex() {
		t.Fatalf("bad access token claims %+v, %v", access, err)
	}
	refresh, err := ParseToken(pair.RefreshToken, testSecret)
	if err != nil || refresh.Type != TokenTypeRefresh || refresh.ID == "" {
		t.Fatalf("bad refresh token claims %+v, %v", refresh, err)
	}
	if _, err := ParseToken(pair.AccessToken, "other-secret"); err == nil {
		t.Fatalf("token must not verify with a different secret")
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()
	svc.Register(ctx, "Ana", "ana@example.com", "password123")
	pair, _, _ := svc.Login(ctx, "ana@example.com", "password123")

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh must issue a new refresh token")
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("old refresh token must be revoked, got %v", err)
	}
	if _, err := svc.Refresh(ctx, rotated.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
	if _, err := svc.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token must refresh: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, tokens := newTestAuthService()
	ctx := context.Background()
	svc.Register(ctx, "Ana", "ana@example.com", "password123")
	pair, _, _ := svc.Login(ctx, "ana@example.com", "password123")

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	claims, _ := ParseToken(pair.RefreshToken, testSecret)
	if owner, _ := tokens.Owner(ctx, claims.ID); owner != "" {
		t.Fatalf("token still allowed for %s", owner)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("logout with an unknown token must succeed, got %v", err)
	}
}
