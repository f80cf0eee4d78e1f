package lists

import (
	"context"
	"time"
)

// List is one user-owned board of tasks.
type List struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
}

// Task is one item inside a list. ListID and UserID together pin ownership:
// a task is only ever reachable through its list, and the list through its
// owner.
type Task struct {
	ID        string
	ListID    string
	UserID    string
	Title     string
	Completed bool
	CreatedAt time.Time
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title     *string
	Completed *bool
}

// Store is the list/task persistence boundary.
//
// Every method takes the owning user id and returns ErrNotFound both for
// records that do not exist and for records owned by someone else; callers
// cannot distinguish the two cases. Delete methods return the removed
// document. Deleting a list also removes its tasks.
type Store interface {
	CreateList(ctx context.Context, userID, title string, now time.Time) (List, error)
	ListsByUser(ctx context.Context, userID string) ([]List, error)
	UpdateList(ctx context.Context, userID, listID, title string) (List, error)
	DeleteList(ctx context.Context, userID, listID string) (List, error)

	CreateTask(ctx context.Context, userID, listID, title string, now time.Time) (Task, error)
	TasksByList(ctx context.Context, userID, listID string) ([]Task, error)
	UpdateTask(ctx context.Context, userID, listID, taskID string, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, userID, listID, taskID string) (Task, error)
}
