package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL.
//
// A single INSERT is the append primitive: the row-level atomicity of the
// insert is what keeps concurrent logins for one user from losing updates.
// The serial seq column fixes insertion order for the resolution scan.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the session store (default "taskboard").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("session: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("session: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed session store. The pool is owned
// by the caller.
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
		return nil, fmt.Errorf("session: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) sessions() string {
	return pgx.Identifier{s.schema, "sessions"}.Sanitize()
}

// Append inserts a new session row and returns it with its assigned seq.
func (s *PostgresStore) Append(ctx context.Context, in Session) (Session, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO `+s.sessions()+` (
			id, user_id, token, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`, in.ID, in.UserID, in.Token, in.CreatedAt, in.ExpiresAt).Scan(&in.Seq)
	if err != nil {
		return Session{}, storeFailure(err)
	}
	return in, nil
}

// ListByUser loads all session rows of a user in insertion order.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, id, user_id, token, created_at, expires_at
		FROM `+s.sessions()+`
		WHERE user_id = $1
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Seq, &sess.ID, &sess.UserID, &sess.Token, &sess.CreatedAt, &sess.ExpiresAt); err != nil {
			return nil, storeFailure(err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure(err)
	}
	return out, nil
}

// Delete removes the user's session rows matching token (idempotent).
func (s *PostgresStore) Delete(ctx context.Context, userID, token string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.sessions()+`
		WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return storeFailure(err)
	}
	return nil
}

// storeFailure keeps cancellation transparent while tagging backend failures
// so the service layer can separate them from auth failures.
func storeFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(ErrStoreUnavailable, err)
}
