package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"cuddley/internal/models"
)

// Sentinel errors the service layer matches on with errors.Is.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
)

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS lists (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            owner_id INTEGER NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(owner_id) REFERENCES users(id),
            UNIQUE(owner_id, name)
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            list_id INTEGER NOT NULL,
            owner_id INTEGER NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            deadline TEXT NOT NULL DEFAULT '',
            done BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(list_id) REFERENCES lists(id),
            FOREIGN KEY(owner_id) REFERENCES users(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_lists_owner ON lists(owner_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// CreateUser persists a new account. Returns ErrConflict when the email is
// already registered.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(username, email, password_hash) VALUES(?, ?, ?)`,
		strings.TrimSpace(username), strings.ToLower(strings.TrimSpace(email)), passwordHash)
	if isUniqueViolation(err) {
		return models.User{}, fmt.Errorf("email %q: %w", email, ErrConflict)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a single account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches an account by its login email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// CreateList inserts a list and its seed task in one transaction, so a list
// never appears without its default task. Returns ErrConflict when the owner
// already has a list with that name.
func (s *Store) CreateList(ctx context.Context, ownerID int64, name string, seed models.Task) (models.List, error) {
	if strings.TrimSpace(name) == "" {
		return models.List{}, fmt.Errorf("list name must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.List{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO lists(name, owner_id) VALUES(?, ?)`, strings.TrimSpace(name), ownerID)
	if isUniqueViolation(err) {
		return models.List{}, fmt.Errorf("list %q: %w", name, ErrConflict)
	}
	if err != nil {
		return models.List{}, fmt.Errorf("insert list: %w", err)
	}
	listID, err := res.LastInsertId()
	if err != nil {
		return models.List{}, fmt.Errorf("list id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO tasks(list_id, owner_id, name, description, deadline, done) VALUES(?, ?, ?, ?, ?, ?)`,
		listID, ownerID, seed.Name, seed.Description, seed.Deadline, seed.Done)
	if err != nil {
		return models.List{}, fmt.Errorf("insert seed task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.List{}, fmt.Errorf("commit: %w", err)
	}
	return s.GetList(ctx, listID)
}

// GetList fetches a single list by id.
func (s *Store) GetList(ctx context.Context, id int64) (models.List, error) {
	var l models.List
	err := s.db.QueryRowContext(ctx, `SELECT id, name, owner_id, created_at, updated_at FROM lists WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.List{}, fmt.Errorf("list %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.List{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ListsForUser retrieves the lists owned by a user, oldest first.
func (s *Store) ListsForUser(ctx context.Context, ownerID int64) ([]models.List, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, owner_id, created_at, updated_at FROM lists WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lists for user: %w", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// RenameList changes a list's name. Returns ErrConflict when the owner
// already has another list with the new name.
func (s *Store) RenameList(ctx context.Context, id int64, name string) (models.List, error) {
	if strings.TrimSpace(name) == "" {
		return models.List{}, fmt.Errorf("list name must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE lists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, strings.TrimSpace(name), id)
	if isUniqueViolation(err) {
		return models.List{}, fmt.Errorf("list %q: %w", name, ErrConflict)
	}
	if err != nil {
		return models.List{}, fmt.Errorf("rename list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.List{}, err
	}
	if affected == 0 {
		return models.List{}, fmt.Errorf("list %d: %w", id, ErrNotFound)
	}
	return s.GetList(ctx, id)
}

// DeleteList removes a list and every task under it. Tasks go first so no
// task row is ever left pointing at a missing list.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = ?`, id); err != nil {
		return fmt.Errorf("delete list tasks: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("list %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// CreateTask inserts a new task under a list.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Task{}, fmt.Errorf("task name must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(list_id, owner_id, name, description, deadline, done) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ListID, t.OwnerID, strings.TrimSpace(t.Name), strings.TrimSpace(t.Description), t.Deadline, t.Done)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx, `SELECT id, list_id, owner_id, name, description, deadline, done, created_at, updated_at FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.ListID, &t.OwnerID, &t.Name, &t.Description, &t.Deadline, &t.Done, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// TasksForList returns the tasks of one list, oldest first.
func (s *Store) TasksForList(ctx context.Context, listID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `SELECT id, list_id, owner_id, name, description, deadline, done, created_at, updated_at
        FROM tasks WHERE list_id = ? ORDER BY created_at, id`, listID)
}

// TasksForUser returns every task owned by a user across all lists.
func (s *Store) TasksForUser(ctx context.Context, ownerID int64) ([]models.Task, error) {
	return s.queryTasks(ctx, `SELECT id, list_id, owner_id, name, description, deadline, done, created_at, updated_at
        FROM tasks WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

func (s *Store) queryTasks(ctx context.Context, query string, arg int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.OwnerID, &t.Name, &t.Description, &t.Deadline, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites a task's name, description and deadline. The parent
// list is fixed at creation and never changes here.
func (s *Store) UpdateTask(ctx context.Context, id int64, name, description, deadline string) (models.Task, error) {
	if strings.TrimSpace(name) == "" {
		return models.Task{}, fmt.Errorf("task name must not be empty")
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET name = ?, description = ?, deadline = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.TrimSpace(name), strings.TrimSpace(description), deadline, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a single task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetTaskDone stores the completion flag.
func (s *Store) SetTaskDone(ctx context.Context, id int64, done bool) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET done = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, done, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("set task done: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.GetTask(ctx, id)
}
