package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T, pin string) AuthService {
	t.Helper()
	hash := ""
	if pin != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash pin: %v", err)
		}
		hash = string(b)
	}
	store := repositories.NewMemoryStore()
	return NewAuthService(store.Players(), "test-secret", hash, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoginIssuesPlayerToken(t *testing.T) {
	auth := newAuth(t, "")
	ctx := context.Background()

	res, err := auth.Login(ctx, LoginInput{Provider: models.ProviderGoogle, Email: "Alice@Example.com"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Session.Role != models.RolePlayer || res.Player.Email != "alice@example.com" || res.Player.PokerName != "alice" {
		t.Errorf("unexpected login result: %+v %+v", res.Session, res.Player)
	}

	session, err := auth.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if session != res.Session {
		t.Errorf("ParseToken() = %+v, want %+v", session, res.Session)
	}

	again, err := auth.Login(ctx, LoginInput{Provider: models.ProviderGoogle, Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("second Login() error: %v", err)
	}
	if again.Player.ID != res.Player.ID {
		t.Errorf("expected the same player on second login")
	}

	me, err := auth.Me(ctx, session)
	if err != nil || me.ID != res.Player.ID {
		t.Errorf("Me() = %+v, %v", me, err)
	}
}

func TestLoginWithoutEmailUsesMockAddress(t *testing.T) {
	res, err := newAuth(t, "").Login(context.Background(), LoginInput{Provider: models.ProviderPhone})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Player.Email != "mock-phone@pokernow.local" {
		t.Errorf("unexpected email %q", res.Player.Email)
	}
}

func TestLoginStaffPIN(t *testing.T) {
	auth := newAuth(t, "4821")
	ctx := context.Background()

	res, err := auth.Login(ctx, LoginInput{Provider: models.ProviderApple, Email: "floor@example.com", StaffPIN: "4821"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Session.Role != models.RoleAdmin {
		t.Errorf("expected admin role, got %s", res.Session.Role)
	}

	if _, err := auth.Login(ctx, LoginInput{Provider: models.ProviderApple, StaffPIN: "0000"}); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong pin: expected ErrAuthenticationFailed, got %v", err)
	}
	if _, err := newAuth(t, "").Login(ctx, LoginInput{Provider: models.ProviderApple, StaffPIN: "4821"}); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("no pin configured: expected ErrAuthenticationFailed, got %v", err)
	}
	if _, err := auth.Login(ctx, LoginInput{Provider: "fax"}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("unknown provider: expected ErrValidationFailed, got %v", err)
	}
}

func TestParseTokenRejectsBadTokens(t *testing.T) {
	auth := newAuth(t, "")

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwt.MapClaims{"player_id": "p", "role": "player", "exp": exp})},
		{"expired", sign("test-secret", jwt.MapClaims{"player_id": "p", "role": "player", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"missing player", sign("test-secret", jwt.MapClaims{"role": "player", "exp": exp})},
		{"unknown role", sign("test-secret", jwt.MapClaims{"player_id": "p", "role": "dealer", "exp": exp})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.ParseToken(tt.token); !errors.Is(err, ErrAuthenticationFailed) {
				t.Errorf("expected ErrAuthenticationFailed, got %v", err)
			}
		})
	}
}
