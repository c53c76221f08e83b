package middleware

import (
	"context"

	"github.com/Dosada05/pokernow/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// GetSession returns the session stored by Authenticate.
func GetSession(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(models.Session)
	if !ok || session.PlayerID == "" {
		return models.Session{}, false
	}
	return session, true
}
