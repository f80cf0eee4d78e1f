package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskboard/cmd/identity"
)

func newTestService(t *testing.T) (*Service, identity.User) {
	t.Helper()

	users := identity.NewMemoryStore()
	u, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "a@x.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	cfg := testConfig()
	tokens, err := NewHS256Manager(cfg)
	if err != nil {
		t.Fatalf("NewHS256Manager: %v", err)
	}

	return NewService(cfg, users, NewMemoryStore(), tokens), u
}

func TestCreateAndResolveSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	created, err := svc.CreateSession(ctx, now, u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if created.RefreshToken == "" {
		t.Fatalf("expected a plaintext refresh token")
	}
	if got, want := created.Session.ExpiresAt, now.Add(10*24*time.Hour); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}

	res, err := svc.ResolveSession(ctx, now.Add(time.Minute), u.ID, created.RefreshToken)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if res.User.ID != u.ID {
		t.Fatalf("resolved wrong user: %q", res.User.ID)
	}
	if res.Session.Token != created.RefreshToken {
		t.Fatalf("resolved wrong session record")
	}
}

func TestResolveSession_UserNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.ResolveSession(context.Background(), time.Now().UTC(), "01HZZZZZZZZZZZZZZZZZZZZZZZ", "sometoken")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResolveSession_SessionNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	if _, err := svc.CreateSession(ctx, now, u.ID); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, err := svc.ResolveSession(ctx, now, u.ID, "not-a-stored-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestResolveSession_ExpiredRecordStays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	created, err := svc.CreateSession(ctx, now, u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	after := created.Session.ExpiresAt.Add(time.Second)
	_, err = svc.ResolveSession(ctx, after, u.ID, created.RefreshToken)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// The expired record remains; a later attempt classifies the same way
	// rather than degrading to not-found.
	_, err = svc.ResolveSession(ctx, after, u.ID, created.RefreshToken)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expired record was removed: got %v", err)
	}

	list, err := svc.store.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected the expired record to stay, have %d records", len(list))
	}
}

func TestResolveSession_FirstMatchWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	// Duplicate tokens should never occur in practice; the scan must still be
	// deterministic, taking the earliest record.
	first, err := svc.store.Append(ctx, Session{
		ID: "s1", UserID: u.ID, Token: "dup", CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := svc.store.Append(ctx, Session{
		ID: "s2", UserID: u.ID, Token: "dup", CreatedAt: now, ExpiresAt: now.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	res, err := svc.ResolveSession(ctx, now, u.ID, "dup")
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if res.Session.Seq != first.Seq || res.Session.ID != "s1" {
		t.Fatalf("expected first record to win, got %+v", res.Session)
	}
}

func TestCreateSession_ConcurrentDevices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	const devices = 8
	tokens := make([]string, devices)

	var wg sync.WaitGroup
	errCh := make(chan error, devices)
	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := svc.CreateSession(ctx, now, u.ID)
			if err != nil {
				errCh <- err
				return
			}
			tokens[i] = created.RefreshToken
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent CreateSession: %v", err)
	}

	// Every device's token resolves independently; no append was lost.
	for _, tok := range tokens {
		res, err := svc.ResolveSession(ctx, now, u.ID, tok)
		if err != nil {
			t.Fatalf("ResolveSession(%q): %v", tok[:8], err)
		}
		if res.User.ID != u.ID {
			t.Fatalf("resolved wrong user")
		}
	}

	list, err := svc.store.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != devices {
		t.Fatalf("expected %d session records, have %d", devices, len(list))
	}
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, u := newTestService(t)
	now := time.Now().UTC()

	first, err := svc.CreateSession(ctx, now, u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	second, err := svc.CreateSession(ctx, now, u.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := svc.DeleteSession(ctx, u.ID, first.RefreshToken); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if _, err := svc.ResolveSession(ctx, now, u.ID, first.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("deleted session still resolves: %v", err)
	}

	// The other device's session is untouched.
	if _, err := svc.ResolveSession(ctx, now, u.ID, second.RefreshToken); err != nil {
		t.Fatalf("unrelated session was affected: %v", err)
	}
}

func TestAccessToken_RoundTripThroughService(t *testing.T) {
	t.Parallel()

	svc, u := newTestService(t)
	now := time.Now().UTC()

	tok, _, err := svc.IssueAccessToken(u.ID, now)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := svc.VerifyAccessToken(tok, now)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != u.ID {
		t.Fatalf("claims user id = %q, want %q", claims.UserID, u.ID)
	}
}
