package lists

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskboard/cmd/identity"
)

// MemoryStore is a dev/test fallback when no database is configured. Records
// keep insertion order, matching the Postgres store's created_at ordering.
type MemoryStore struct {
	mu    sync.Mutex
	lists []List
	tasks []Task
}

// NewMemoryStore constructs an in-memory list/task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateList(ctx context.Context, userID, title string, now time.Time) (List, error) {
	const op = "lists.CreateList"

	if err := ctx.Err(); err != nil {
		return List{}, err
	}
	userID, title, err := checkListInput(op, userID, title)
	if err != nil {
		return List{}, err
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := identity.NewULID(now)
	if err != nil {
		return List{}, err
	}

	l := List{ID: id, UserID: userID, Title: title, CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, l)

	return l, nil
}

func (s *MemoryStore) ListsByUser(ctx context.Context, userID string) ([]List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]List, 0)
	for _, l := range s.lists {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateList(ctx context.Context, userID, listID, title string) (List, error) {
	const op = "lists.UpdateList"

	if err := ctx.Err(); err != nil {
		return List{}, err
	}
	userID, title, err := checkListInput(op, userID, title)
	if err != nil {
		return List{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lists {
		if l.ID == listID && l.UserID == userID {
			s.lists[i].Title = title
			return s.lists[i], nil
		}
	}
	return List{}, OpError{Op: op, Kind: ErrNotFound}
}

func (s *MemoryStore) DeleteList(ctx context.Context, userID, listID string) (List, error) {
	const op = "lists.DeleteList"

	if err := ctx.Err(); err != nil {
		return List{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lists {
		if l.ID != listID || l.UserID != userID {
			continue
		}
		s.lists = append(s.lists[:i], s.lists[i+1:]...)

		// Orphaned tasks go with their list.
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if t.ListID != listID {
				kept = append(kept, t)
			}
		}
		s.tasks = kept

		return l, nil
	}
	return List{}, OpError{Op: op, Kind: ErrNotFound}
}

func (s *MemoryStore) CreateTask(ctx context.Context, userID, listID, title string, now time.Time) (Task, error) {
	const op = "lists.CreateTask"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	userID, title, err := checkListInput(op, userID, title)
	if err != nil {
		return Task{}, err
	}

	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := identity.NewULID(now)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsListLocked(userID, listID) {
		return Task{}, OpError{Op: op, Kind: ErrNotFound, Msg: "list not found"}
	}

	t := Task{ID: id, ListID: listID, UserID: userID, Title: title, CreatedAt: now}
	s.tasks = append(s.tasks, t)

	return t, nil
}

func (s *MemoryStore) TasksByList(ctx context.Context, userID, listID string) ([]Task, error) {
	const op = "lists.TasksByList"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsListLocked(userID, listID) {
		return nil, OpError{Op: op, Kind: ErrNotFound, Msg: "list not found"}
	}

	out := make([]Task, 0)
	for _, t := range s.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, userID, listID, taskID string, patch TaskPatch) (Task, error) {
	const op = "lists.UpdateTask"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "title is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == taskID && t.ListID == listID && t.UserID == userID {
			if patch.Title != nil {
				s.tasks[i].Title = strings.TrimSpace(*patch.Title)
			}
			if patch.Completed != nil {
				s.tasks[i].Completed = *patch.Completed
			}
			return s.tasks[i], nil
		}
	}
	return Task{}, OpError{Op: op, Kind: ErrNotFound}
}

func (s *MemoryStore) DeleteTask(ctx context.Context, userID, listID, taskID string) (Task, error) {
	const op = "lists.DeleteTask"

	if err := ctx.Err(); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == taskID && t.ListID == listID && t.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return t, nil
		}
	}
	return Task{}, OpError{Op: op, Kind: ErrNotFound}
}

func (s *MemoryStore) ownsListLocked(userID, listID string) bool {
	for _, l := range s.lists {
		if l.ID == listID && l.UserID == userID {
			return true
		}
	}
	return false
}

func checkListInput(op, userID, title string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	title = strings.TrimSpace(title)
	if userID == "" {
		return "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: "missing user id"}
	}
	if title == "" {
		return "", "", OpError{Op: op, Kind: ErrInvalidInput, Msg: "title is required"}
	}
	return userID, title, nil
}
