package session

import (
	"context"
	"sync"
)

// MemoryStore is a dev/test fallback when no database is configured.
// Appends take the store lock, so the atomic-append contract holds.
type MemoryStore struct {
	mu     sync.Mutex
	seq    int64
	byUser map[string][]Session
}

// NewMemoryStore constructs an in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string][]Session)}
}

// Append adds a session record to the user's list, preserving insertion order.
func (s *MemoryStore) Append(ctx context.Context, in Session) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	in.Seq = s.seq
	s.byUser[in.UserID] = append(s.byUser[in.UserID], in)
	return in, nil
}

// ListByUser returns a copy of the user's session records in insertion order.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	if len(list) == 0 {
		return nil, nil
	}
	return append([]Session(nil), list...), nil
}

// Delete removes the user's records matching token (idempotent).
func (s *MemoryStore) Delete(ctx context.Context, userID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	kept := list[:0]
	for _, sess := range list {
		if sess.Token != token {
			kept = append(kept, sess)
		}
	}
	if len(kept) == 0 {
		delete(s.byUser, userID)
		return nil
	}
	s.byUser[userID] = kept
	return nil
}
