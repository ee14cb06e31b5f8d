// Package store persists users and their todos in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"today/internal/service"
	"today/internal/task"
)

// ErrNotFound indicates no row matched, including rows owned by another user.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	google_id  TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	picture    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	due_date    INTEGER,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_user ON todos(user_id, created_at);

CREATE TABLE IF NOT EXISTS revoked_sessions (
	id         TEXT PRIMARY KEY,
	expires_at INTEGER NOT NULL
);
`

// Profile is the identity returned by Google sign-in.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// Store wraps the database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the SQLite database at path. Use ":memory:" for a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// SetClock replaces the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// UpsertUser creates the user for p.GoogleID or refreshes its profile fields.
func (s *Store) UpsertUser(ctx context.Context, p Profile) (service.User, error) {
	if p.GoogleID == "" {
		return service.User{}, fmt.Errorf("google id required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, google_id, email, name, picture, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(google_id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			picture = excluded.picture`,
		uuid.NewString(), p.GoogleID, p.Email, p.Name, p.Picture, s.now().UnixMilli())
	if err != nil {
		return service.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture FROM users WHERE google_id = ?`, p.GoogleID)
	return scanUser(row)
}

// User returns the user with the given id.
func (s *Store) User(ctx context.Context, id string) (service.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, picture FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (service.User, error) {
	var u service.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Picture)
	if errors.Is(err, sql.ErrNoRows) {
		return service.User{}, ErrNotFound
	}
	if err != nil {
		return service.User{}, err
	}
	return u, nil
}

// RevokeSession records a session id as ended until its expiry.
func (s *Store) RevokeSession(ctx context.Context, id string, expires time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_sessions (id, expires_at) VALUES (?, ?)`,
		id, expires.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// SessionRevoked reports whether a session id was ended.
func (s *Store) SessionRevoked(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_sessions WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PruneSessions deletes revocations whose sessions have expired anyway.
func (s *Store) PruneSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM revoked_sessions WHERE expires_at < ?`, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTodos returns the user's todos, oldest first.
func (s *Store) ListTodos(ctx context.Context, userID string) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, completed, due_date, created_at, updated_at
		FROM todos
		WHERE user_id = ?
		ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []task.Task{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// CreateTodo inserts a todo for the user. A zero CreatedAt is stamped with
// the current time; any other value is kept at millisecond precision.
func (s *Store) CreateTodo(ctx context.Context, userID string, req service.CreateTaskRequest) (task.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return task.Task{}, task.ErrEmptyTitle
	}

	now := task.Truncate(s.now())
	created := task.Truncate(req.CreatedAt)
	if created.IsZero() {
		created = now
	}

	t := task.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   created,
		UpdatedAt:   now,
	}
	if req.DueDate != nil {
		due := task.Truncate(*req.DueDate)
		t.DueDate = &due
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (id, user_id, title, description, completed, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, userID, t.Title, t.Description, t.Completed, millisPtr(t.DueDate),
		t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli())
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return t, nil
}

// UpdateTodo applies upd to the user's todo.
func (s *Store) UpdateTodo(ctx context.Context, userID, id string, upd service.TaskUpdate) (task.Task, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return task.Task{}, task.ErrEmptyTitle
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, title, description, completed, due_date, created_at, updated_at
		FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, err
	}

	if upd.Title != nil {
		t.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.DueDate != nil {
		due := task.Truncate(*upd.DueDate)
		t.DueDate = &due
	}
	t.UpdatedAt = task.Truncate(s.now())

	_, err = tx.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, description = ?, completed = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Completed, millisPtr(t.DueDate), t.UpdatedAt.UnixMilli(), id, userID)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update todo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTodo removes the user's todo.
func (s *Store) DeleteTodo(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (task.Task, error) {
	var (
		t                task.Task
		due              sql.NullInt64
		created, updated int64
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &due, &created, &updated); err != nil {
		return task.Task{}, err
	}
	if due.Valid {
		d := time.UnixMilli(due.Int64).UTC()
		t.DueDate = &d
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}

func millisPtr(ts *time.Time) any {
	if ts == nil {
		return nil
	}
	return ts.UnixMilli()
}
