package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/pokernow/models"
)

type staticParser map[string]models.Session

func (p staticParser) ParseToken(token string) (models.Session, error) {
	s, ok := p[token]
	if !ok {
		return models.Session{}, errors.New("bad token")
	}
	return s, nil
}

func TestAuthenticate(t *testing.T) {
	parser := staticParser{
		"player-token": {PlayerID: "p1", Role: models.RolePlayer},
		"admin-token":  {PlayerID: "a1", Role: models.RoleAdmin},
	}
	var seen models.Session
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetSession(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		admin  bool
		want   int
	}{
		{"no header", "", false, http.StatusUnauthorized},
		{"wrong scheme", "Basic player-token", false, http.StatusUnauthorized},
		{"unknown token", "Bearer nope", false, http.StatusUnauthorized},
		{"player", "Bearer player-token", false, http.StatusNoContent},
		{"lowercase scheme", "bearer player-token", false, http.StatusNoContent},
		{"player on admin route", "Bearer player-token", true, http.StatusForbidden},
		{"admin on admin route", "Bearer admin-token", true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h http.Handler = ok
			if tt.admin {
				h = RequireAdmin(h)
			}
			h = Authenticate(parser)(h)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if seen.PlayerID != "a1" || !seen.IsAdmin() {
		t.Errorf("last session seen = %+v", seen)
	}
}

func TestAuthorizeWithoutSession(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
