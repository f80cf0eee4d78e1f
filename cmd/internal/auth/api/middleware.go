package authapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskboard/cmd/identity"
	"taskboard/cmd/internal/auth/session"
)

// Wire-level header contract. These names are fixed: existing clients send and
// read them byte for byte.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

type contextKey int

const (
	ctxKeyUserID contextKey = iota
	ctxKeyUser
	ctxKeyRefreshToken
)

// UserID returns the authenticated user id attached by either guard.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	return id, ok
}

// SessionUser returns the full user record attached by VerifySession.
func SessionUser(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(identity.User)
	return u, ok
}

// RefreshToken returns the refresh token attached by VerifySession.
func RefreshToken(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(ctxKeyRefreshToken).(string)
	return tok, ok
}

// Authenticate is the stateless guard.
//
// It verifies the x-access-token header purely cryptographically; no session
// lookup happens, so a still-valid token passes even if its session was since
// removed. That asymmetry with VerifySession is deliberate: this is the
// low-latency path, VerifySession is the fully revocable one. Routes pick
// exactly one guard, never both.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.sessions.VerifyAccessToken(r.Header.Get(HeaderAccessToken), time.Now().UTC())
		if err != nil {
			writeRawError(w, http.StatusUnauthorized, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifySession is the stateful guard.
//
// It resolves the x-refresh-token header against the session records of the
// user claimed in the _id header. Auth failures reject with 401 and an
// {error: message} body; store outages surface as 503, never as a credential
// failure.
func (h *Handler) VerifySession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		refreshToken := r.Header.Get(HeaderRefreshToken)

		res, err := h.sessions.ResolveSession(r.Context(), time.Now().UTC(), userID, refreshToken)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrUserNotFound),
				errors.Is(err, session.ErrSessionNotFound),
				errors.Is(err, session.ErrSessionExpired):
				writeGuardError(w, http.StatusUnauthorized, err.Error())
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				writeGuardError(w, http.StatusServiceUnavailable, "request cancelled")
			default:
				h.log.Error("auth.verify_session.store.fail", "err", err)
				writeGuardError(w, http.StatusServiceUnavailable, "session store unavailable")
			}
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ctxKeyUserID, res.User.ID)
		ctx = context.WithValue(ctx, ctxKeyUser, res.User)
		ctx = context.WithValue(ctx, ctxKeyRefreshToken, res.Session.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
