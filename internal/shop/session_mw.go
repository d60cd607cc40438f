package shop

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"RocketShoes/internal/session"
	"RocketShoes/pkg/kit"
)

type ctxKey string

const sessionKey ctxKey = "session_id"

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey).(string)
	return v, ok && v != ""
}

func RequireSession(tokens *session.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			sid, err := tokens.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			kit.AccessLogFields(r.Context()).Add(zap.String("session_id", sid))

			ctx := context.WithValue(r.Context(), sessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
