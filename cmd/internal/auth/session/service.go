package session

import (
	"context"
	"strings"
	"time"

	"taskboard/cmd/identity"
)

// Service implements the high-level session operations for taskboard.
//
// It creates refresh sessions, resolves presented refresh tokens against
// stored records, issues and verifies access tokens, and removes sessions on
// logout. Collaborators (credential store, token manager) are injected rather
// than attached to the data they operate on.
type Service struct {
	cfg    Config
	tokens AccessTokenManager
	users  identity.Store
	store  Store
}

// Created is the result of creating a refresh session.
type Created struct {
	Session      Session
	RefreshToken string
}

// Resolved pairs the loaded user with the matched session record.
type Resolved struct {
	User    identity.User
	Session Session
}

// NewService constructs a Service with the provided configuration and stores.
func NewService(cfg Config, users identity.Store, store Store, tokens AccessTokenManager) *Service {
	return &Service{cfg: cfg, tokens: tokens, users: users, store: store}
}

// CreateSession generates a fresh refresh token, appends a session record with
// expiry = now + TTL to the user's list, and returns the plaintext token.
//
// The append is a single atomic store operation: two devices logging in at the
// same moment both end up with independent records. If the request is
// cancelled before the append lands, no partial record becomes visible.
func (s *Service) CreateSession(ctx context.Context, now time.Time, userID string) (Created, error) {
	token, err := newRefreshToken(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Created{}, err
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Created{}, err
	}

	sess, err := s.store.Append(ctx, Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
	})
	if err != nil {
		return Created{}, err
	}

	return Created{Session: sess, RefreshToken: token}, nil
}

// ResolveSession validates a presented refresh token against the claimed
// user's stored session records.
//
// The scan walks the records in insertion order and stops at the FIRST exact
// token match; later duplicates (which randomness makes all but impossible)
// are never inspected. An expired match fails with ErrSessionExpired and the
// record stays in the list.
func (s *Service) ResolveSession(ctx context.Context, now time.Time, userID, refreshToken string) (Resolved, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if userID == "" || refreshToken == "" {
		return Resolved{}, ErrSessionNotFound
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if identity.IsNotFound(err) {
			return Resolved{}, ErrUserNotFound
		}
		return Resolved{}, err
	}

	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return Resolved{}, err
	}

	for _, sess := range list {
		if sess.Token != refreshToken {
			continue
		}
		if !sess.ExpiresAt.After(now) {
			// No silent deletion: logout is the only removal path.
			return Resolved{}, ErrSessionExpired
		}
		return Resolved{User: user, Session: sess}, nil
	}

	return Resolved{}, ErrSessionNotFound
}

// DeleteSession removes the presented session record (logout from one device).
func (s *Service) DeleteSession(ctx context.Context, userID, refreshToken string) error {
	return s.store.Delete(ctx, userID, refreshToken)
}

// IssueAccessToken mints a signed access token bound to userID.
func (s *Service) IssueAccessToken(userID string, now time.Time) (token string, exp time.Time, err error) {
	return s.tokens.Issue(userID, now)
}

// VerifyAccessToken verifies signature and expiry of an access token.
//
// This path is stateless by design: it never consults the store, so it keeps
// working under unbounded parallelism and trusts any still-valid token even
// if the underlying session has since been removed.
func (s *Service) VerifyAccessToken(token string, now time.Time) (AccessClaims, error) {
	return s.tokens.Verify(token, now)
}
