package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cuddley/internal/auth"
	"cuddley/internal/models"
	"cuddley/internal/storage/sqlite"
)

// Business-level failures. The HTTP layer maps these onto status codes.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrDuplicateList      = errors.New("a list with this name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not the owner of this resource")
)

// Values of the placeholder task attached to every new list.
const (
	defaultTaskName        = "New Task"
	defaultTaskDescription = "Task description/details"
	deadlineTimeFormat     = "January 2, 2006 at 3:04PM"
)

// Service implements the account, list, task and dashboard operations on top
// of the store. Identity is an explicit userID argument on every call; there
// is no ambient current-user state.
type Service struct {
	store  *sqlite.Store
	logger *slog.Logger
	now    func() time.Time
}

// New constructs the service.
func New(store *sqlite.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// SignUp registers a new account. The plaintext password is hashed before it
// touches the store and is never logged.
func (s *Service) SignUp(ctx context.Context, username, email, password string) (models.User, error) {
	digest, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, email, digest)
	if errors.Is(err, sqlite.ErrConflict) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}

	s.logger.Info("account created", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, sqlite.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// CreateList creates a list for the user together with its placeholder task.
// The per-owner name uniqueness is enforced by the store's constraint, so
// two concurrent creates with the same name cannot both succeed.
func (s *Service) CreateList(ctx context.Context, userID int64, name string) (models.List, error) {
	seed := models.Task{
		Name:        defaultTaskName,
		Description: defaultTaskDescription,
		Deadline:    s.now().Format(deadlineTimeFormat),
		Done:        false,
	}

	list, err := s.store.CreateList(ctx, userID, name, seed)
	if errors.Is(err, sqlite.ErrConflict) {
		return models.List{}, ErrDuplicateList
	}
	if err != nil {
		return models.List{}, err
	}
	return list, nil
}

// RenameList changes the name of a list the user owns.
func (s *Service) RenameList(ctx context.Context, userID, listID int64, newName string) (models.List, error) {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return models.List{}, err
	}

	list, err := s.store.RenameList(ctx, listID, newName)
	if errors.Is(err, sqlite.ErrConflict) {
		return models.List{}, ErrDuplicateList
	}
	if err != nil {
		return models.List{}, err
	}
	return list, nil
}

// DeleteList removes a list the user owns along with all of its tasks.
func (s *Service) DeleteList(ctx context.Context, userID, listID int64) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	return s.store.DeleteList(ctx, listID)
}

// Lists returns the lists the user owns.
func (s *Service) Lists(ctx context.Context, userID int64) ([]models.List, error) {
	return s.store.ListsForUser(ctx, userID)
}

// ListTasks returns the tasks of a list the user owns.
func (s *Service) ListTasks(ctx context.Context, userID, listID int64) ([]models.Task, error) {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.store.TasksForList(ctx, listID)
}

// CreateTask adds a task to a list the user owns. The deadline is stored
// verbatim; "TBD" is as valid as a date.
func (s *Service) CreateTask(ctx context.Context, userID, listID int64, name, description, deadline string) (models.Task, error) {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return models.Task{}, err
	}

	return s.store.CreateTask(ctx, models.Task{
		ListID:      listID,
		OwnerID:     userID,
		Name:        name,
		Description: description,
		Deadline:    deadline,
		Done:        false,
	})
}

// UpdateTask edits name, description and deadline of a task the user owns.
// A task never moves between lists.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID int64, name, description, deadline string) (models.Task, error) {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return models.Task{}, err
	}
	return s.store.UpdateTask(ctx, taskID, name, description, deadline)
}

// DeleteTask removes a task the user owns.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	return s.store.DeleteTask(ctx, taskID)
}

// ToggleProgress flips the completion flag of a task the user owns. Applying
// it twice restores the original value.
func (s *Service) ToggleProgress(ctx context.Context, userID, taskID int64) (models.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	return s.store.SetTaskDone(ctx, taskID, !task.Done)
}

// Dashboard aggregates the user's lists and tasks with their counts. Both
// queries filter by owner at the store, so another user's rows can never
// leak in.
func (s *Service) Dashboard(ctx context.Context, userID int64) (models.Dashboard, error) {
	lists, err := s.store.ListsForUser(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}
	tasks, err := s.store.TasksForUser(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}

	completed := 0
	for _, t := range tasks {
		if t.Done {
			completed++
		}
	}

	return models.Dashboard{
		Lists:          lists,
		Tasks:          tasks,
		ListCount:      len(lists),
		TaskCount:      len(tasks),
		CompletedCount: completed,
	}, nil
}

// ownedList loads a list and asserts the caller owns it. Cross-user access
// is logged and refused.
func (s *Service) ownedList(ctx context.Context, userID, listID int64) (models.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return models.List{}, err
	}
	if list.OwnerID != userID {
		s.logger.Warn("cross-user list access refused",
			slog.Int64("user_id", userID), slog.Int64("list_id", listID), slog.Int64("owner_id", list.OwnerID))
		return models.List{}, ErrForbidden
	}
	return list, nil
}

// ownedTask loads a task and asserts the caller owns it.
func (s *Service) ownedTask(ctx context.Context, userID, taskID int64) (models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if task.OwnerID != userID {
		s.logger.Warn("cross-user task access refused",
			slog.Int64("user_id", userID), slog.Int64("task_id", taskID), slog.Int64("owner_id", task.OwnerID))
		return models.Task{}, ErrForbidden
	}
	return task, nil
}
