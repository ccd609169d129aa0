package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/moviereview/internal/model"
)

func TestRegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	auth := NewAuthService(users, "test-secret", time.Hour)

	reg, err := auth.Register(ctx, " Jane@Example.com ", "jane", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if reg.Token == "" || reg.User.Role != model.RoleUser || reg.User.Email != "jane@example.com" {
		t.Errorf("unexpected register result: %+v", reg.User)
	}

	login, err := auth.Login(ctx, "jane@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	id, err := auth.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatal(err)
	}
	if id.ID != reg.User.ID || id.Username != "jane" {
		t.Errorf("identity = %+v", id)
	}

	// 角色以数据库为准
	users.setRole(reg.User.ID, model.RoleCritic)
	id, err = auth.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != model.RoleCritic {
		t.Errorf("role = %s, want CRITIC", id.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newMemUsers(), "s", time.Hour)

	if _, err := auth.Register(ctx, "taken@example.com", "taken", "secret1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		email, username, password string
		want                      error
	}{
		{"bad-email", "u1", "secret1", nil},
		{"u2@example.com", " ", "secret1", nil},
		{"u3@example.com", "u3", "short", nil},
		{"taken@example.com", "fresh", "secret1", ErrEmailTaken},
		{"fresh@example.com", "taken", "secret1", ErrUsernameTaken},
	}
	for _, tt := range tests {
		_, err := auth.Register(ctx, tt.email, tt.username, tt.password)
		if tt.want == nil {
			if !IsValidation(err) {
				t.Errorf("Register(%q, %q) err = %v, want validation error", tt.email, tt.username, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("Register(%q, %q) err = %v, want %v", tt.email, tt.username, err, tt.want)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newMemUsers(), "s", time.Hour)
	if _, err := auth.Register(ctx, "k@example.com", "kate", "secret1"); err != nil {
		t.Fatal(err)
	}

	if _, err := auth.Login(ctx, "k@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := auth.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	auth := NewAuthService(users, "s", time.Hour)
	u, _ := users.Create(ctx, "l@example.com", "leo", "secret1")

	expired := NewAuthService(users, "s", time.Nanosecond)
	stale, err := expired.GenerateToken(u)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := auth.Authenticate(ctx, stale); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: %v", err)
	}

	foreign, _ := NewAuthService(users, "other-secret", time.Hour).GenerateToken(u)
	for _, tok := range []string{"", "garbage", foreign} {
		if _, err := auth.Authenticate(ctx, tok); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("token %q: %v", tok, err)
		}
	}

	ghost := &model.User{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Role: model.RoleUser}
	tok, _ := auth.GenerateToken(ghost)
	if _, err := auth.Authenticate(ctx, tok); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("deleted user: %v", err)
	}
}
