package lists

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/cmd/identity"
)

// PostgresStore implements list/task persistence over PostgreSQL.
//
// Ownership scoping happens in SQL: every statement carries the user id in
// its WHERE clause, so a wrong owner and a missing row are indistinguishable
// (both scan zero rows). Tasks cascade with their list via the schema's
// foreign key.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "taskboard").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("lists: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("lists: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore. The pool is owned by the caller.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "taskboard"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("lists: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) CreateList(ctx context.Context, userID, title string, now time.Time) (List, error) {
	const op = "lists.CreateList"

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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table("lists")+` (id, user_id, title, created_at)
		 VALUES ($1, $2, $3, $4)`,
		id, userID, title, now,
	)
	if err != nil {
		return List{}, pgFail(op, err)
	}

	return List{ID: id, UserID: userID, Title: title, CreatedAt: now}, nil
}

func (s *PostgresStore) ListsByUser(ctx context.Context, userID string) ([]List, error) {
	const op = "lists.ListsByUser"

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, title, created_at
		   FROM `+s.table("lists")+`
		  WHERE user_id = $1
		  ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, pgFail(op, err)
	}
	defer rows.Close()

	out := make([]List, 0)
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt); err != nil {
			return nil, pgFail(op, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, pgFail(op, err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateList(ctx context.Context, userID, listID, title string) (List, error) {
	const op = "lists.UpdateList"

	userID, title, err := checkListInput(op, userID, title)
	if err != nil {
		return List{}, err
	}

	var l List
	err = s.pool.QueryRow(ctx,
		`UPDATE `+s.table("lists")+`
		    SET title = $3
		  WHERE id = $1 AND user_id = $2
		  RETURNING id, user_id, title, created_at`,
		listID, userID, title,
	).Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return List{}, OpError{Op: op, Kind: ErrNotFound}
	}
	if err != nil {
		return List{}, pgFail(op, err)
	}
	return l, nil
}

func (s *PostgresStore) DeleteList(ctx context.Context, userID, listID string) (List, error) {
	const op = "lists.DeleteList"

	var l List
	err := s.pool.QueryRow(ctx,
		`DELETE FROM `+s.table("lists")+`
		  WHERE id = $1 AND user_id = $2
		  RETURNING id, user_id, title, created_at`,
		listID, userID,
	).Scan(&l.ID, &l.UserID, &l.Title, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return List{}, OpError{Op: op, Kind: ErrNotFound}
	}
	if err != nil {
		return List{}, pgFail(op, err)
	}
	return l, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, userID, listID, title string, now time.Time) (Task, error) {
	const op = "lists.CreateTask"

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

	// The INSERT...SELECT fires only when the list belongs to the user, so
	// ownership check and insert are one statement.
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table("tasks")+` (id, list_id, user_id, title, completed, created_at)
		 SELECT $1, l.id, l.user_id, $4, FALSE, $5
		   FROM `+s.table("lists")+` l
		  WHERE l.id = $2 AND l.user_id = $3`,
		id, listID, userID, title, now,
	)
	if err != nil {
		return Task{}, pgFail(op, err)
	}
	if tag.RowsAffected() == 0 {
		return Task{}, OpError{Op: op, Kind: ErrNotFound, Msg: "list not found"}
	}

	return Task{ID: id, ListID: listID, UserID: userID, Title: title, CreatedAt: now}, nil
}

func (s *PostgresStore) TasksByList(ctx context.Context, userID, listID string) ([]Task, error) {
	const op = "lists.TasksByList"

	if err := s.checkListOwned(ctx, op, userID, listID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, list_id, user_id, title, completed, created_at
		   FROM `+s.table("tasks")+`
		  WHERE list_id = $1 AND user_id = $2
		  ORDER BY created_at, id`,
		listID, userID,
	)
	if err != nil {
		return nil, pgFail(op, err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, pgFail(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, pgFail(op, err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, userID, listID, taskID string, patch TaskPatch) (Task, error) {
	const op = "lists.UpdateTask"

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Task{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "title is required"}
	}

	var t Task
	err := s.pool.QueryRow(ctx,
		`UPDATE `+s.table("tasks")+`
		    SET title     = COALESCE($4, title),
		        completed = COALESCE($5, completed)
		  WHERE id = $1 AND list_id = $2 AND user_id = $3
		  RETURNING id, list_id, user_id, title, completed, created_at`,
		taskID, listID, userID, trimmedOrNil(patch.Title), patch.Completed,
	).Scan(&t.ID, &t.ListID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, OpError{Op: op, Kind: ErrNotFound}
	}
	if err != nil {
		return Task{}, pgFail(op, err)
	}
	return t, nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, userID, listID, taskID string) (Task, error) {
	const op = "lists.DeleteTask"

	var t Task
	err := s.pool.QueryRow(ctx,
		`DELETE FROM `+s.table("tasks")+`
		  WHERE id = $1 AND list_id = $2 AND user_id = $3
		  RETURNING id, list_id, user_id, title, completed, created_at`,
		taskID, listID, userID,
	).Scan(&t.ID, &t.ListID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, OpError{Op: op, Kind: ErrNotFound}
	}
	if err != nil {
		return Task{}, pgFail(op, err)
	}
	return t, nil
}

func (s *PostgresStore) checkListOwned(ctx context.Context, op, userID, listID string) error {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM `+s.table("lists")+` WHERE id = $1 AND user_id = $2`,
		listID, userID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return OpError{Op: op, Kind: ErrNotFound, Msg: "list not found"}
	}
	if err != nil {
		return pgFail(op, err)
	}
	return nil
}

func (s *PostgresStore) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// pgFail wraps a transport/backend failure, letting cancellation through as-is.
func pgFail(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return OpError{Op: op, Kind: ErrUnavailable, Msg: err.Error()}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
