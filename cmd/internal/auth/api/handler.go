package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"taskboard/cmd/identity"
	"taskboard/cmd/internal/auth/session"
)

// Handler wires the user-facing auth endpoints to the credential store and
// session service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	sessions *session.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, users identity.Store, sessions *session.Service) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil {
		return nil, errors.New("authapi: nil credential store")
	}
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	return &Handler{log: log, cfg: cfg, users: users, sessions: sessions}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /users", h.handleSignup)
	mux.HandleFunc("POST /users/login", h.handleLogin)
	mux.Handle("GET /users/me/access-token", h.VerifySession(http.HandlerFunc(h.handleNewAccessToken)))
	mux.Handle("POST /users/logout", h.VerifySession(http.HandlerFunc(h.handleLogout)))
}

// SessionService returns the underlying session service.
func (h *Handler) SessionService() *session.Service {
	if h == nil {
		return nil
	}
	return h.sessions
}

// ---- handlers ----

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if msg, ok := validateSignup(email, req.Password); !ok {
		writeGuardError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:    email,
		Password: req.Password,
		Now:      now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeGuardError(w, http.StatusBadRequest, "email already in use")
		case identity.IsInvalidInput(err):
			writeGuardError(w, http.StatusBadRequest, err.Error())
		default:
			h.failStore(w, ctx, "auth.signup.fail", err)
		}
		return
	}

	h.respondWithTokens(w, r, now, user, "auth.signup")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if identity.IsNotFound(err) || identity.IsInvalidInput(err) {
			writeGuardError(w, http.StatusBadRequest, "invalid email or password")
			return
		}
		h.failStore(w, ctx, "auth.login.lookup.fail", err)
		return
	}

	ok, err := identity.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		// A malformed stored hash is an operational defect, not bad input.
		h.log.Error("auth.login.verify.fail", "err", err, "user_id", user.ID)
		writeGuardError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeGuardError(w, http.StatusBadRequest, "invalid email or password")
		return
	}

	h.respondWithTokens(w, r, now, user, "auth.login")
}

func (h *Handler) handleNewAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeGuardError(w, http.StatusUnauthorized, "no session")
		return
	}

	token, _, err := h.sessions.IssueAccessToken(userID, time.Now().UTC())
	if err != nil {
		h.log.Error("auth.access_token.issue.fail", "err", err)
		writeGuardError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set(HeaderAccessToken, token)
	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)
	refreshToken, ok := RefreshToken(ctx)
	if !ok {
		writeGuardError(w, http.StatusUnauthorized, "no session")
		return
	}

	if err := h.sessions.DeleteSession(ctx, userID, refreshToken); err != nil {
		h.failStore(w, ctx, "auth.logout.fail", err)
		return
	}

	h.log.Info("auth.logout", "user_id", userID)
	w.WriteHeader(http.StatusOK)
}

// ---- helpers ----

// respondWithTokens creates a refresh session plus an access token and sends
// the user document with both tokens in the response headers.
func (h *Handler) respondWithTokens(w http.ResponseWriter, r *http.Request, now time.Time, user identity.User, event string) {
	created, err := h.sessions.CreateSession(r.Context(), now, user.ID)
	if err != nil {
		h.failStore(w, r.Context(), event+".session.fail", err)
		return
	}

	accessToken, _, err := h.sessions.IssueAccessToken(user.ID, now)
	if err != nil {
		h.log.Error(event+".token.fail", "err", err)
		writeGuardError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.Info(event, "user_id", user.ID)

	w.Header().Set(HeaderAccessToken, accessToken)
	w.Header().Set(HeaderRefreshToken, created.RefreshToken)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// failStore classifies non-auth failures: cancellations stay silent, store
// outages become 503. They must never look like credential problems.
func (h *Handler) failStore(w http.ResponseWriter, ctx context.Context, event string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeGuardError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	h.log.Error(event, "err", err)
	if identity.IsUnavailable(err) || errors.Is(err, session.ErrStoreUnavailable) {
		writeGuardError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeGuardError(w, http.StatusInternalServerError, "internal error")
}

func validateSignup(email, password string) (string, bool) {
	if email == "" {
		return "email is required", false
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return "email is malformed", false
	}
	if len(password) < identity.MinPasswordLength {
		return "password must be at least 8 characters", false
	}
	return "", true
}
