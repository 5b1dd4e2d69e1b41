package apiserver

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/auth"
)

type ContextKey string

const UserID ContextKey = "userID"

// sessionMiddleware resolves the caller from the session cookie. Requests without a
// valid session pass through anonymously; handlers decide what that means.
func sessionMiddleware(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.FromRequest(r)
			if err != nil {
				if _, cerr := r.Cookie(auth.CookieName); cerr == nil {
					logrus.Debugf("ignoring session cookie: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserID).(uint)
	return userID, ok && userID != 0
}
