package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"cuddley/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedTask() models.Task {
	return models.Task{Name: "New Task", Description: "Task description/details", Deadline: "TBD"}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "ana", "ana@example.com", "digest-1"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := store.CreateUser(ctx, "другая", "ana@example.com", "digest-2")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Email lookup is case-insensitive on the stored side.
	_, err = store.CreateUser(ctx, "ana", "ANA@example.com", "digest-3")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for upper-cased email, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "bob", "Bob@Example.com", "digest")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	found, err := store.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found.ID != created.ID || found.PasswordHash != "digest" {
		t.Fatalf("unexpected user %+v", found)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateList_InsertsSeedTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "ana", "ana@example.com", "digest")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	list, err := store.CreateList(ctx, user.ID, "Groceries", seedTask())
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if list.Name != "Groceries" || list.OwnerID != user.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	tasks, err := store.TasksForList(ctx, list.ID)
	if err != nil {
		t.Fatalf("tasks for list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one seed task, got %d", len(tasks))
	}
	if tasks[0].Name != "New Task" || tasks[0].OwnerID != user.ID || tasks[0].Done {
		t.Fatalf("unexpected seed task %+v", tasks[0])
	}
}

func TestCreateList_DuplicatePerOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, "ana", "ana@example.com", "d")
	bob, _ := store.CreateUser(ctx, "bob", "bob@example.com", "d")

	if _, err := store.CreateList(ctx, ana.ID, "Groceries", seedTask()); err != nil {
		t.Fatalf("create list: %v", err)
	}

	_, err := store.CreateList(ctx, ana.ID, "Groceries", seedTask())
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for same owner, got %v", err)
	}

	// The rejected insert must not leave anything behind, including the
	// seed task of the rolled-back transaction.
	lists, err := store.ListsForUser(ctx, ana.ID)
	if err != nil {
		t.Fatalf("lists for user: %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("expected one list after rejected duplicate, got %d", len(lists))
	}
	tasks, err := store.TasksForUser(ctx, ana.ID)
	if err != nil {
		t.Fatalf("tasks for user: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected one task after rejected duplicate, got %d", len(tasks))
	}

	// A different owner may reuse the name.
	if _, err := store.CreateList(ctx, bob.ID, "Groceries", seedTask()); err != nil {
		t.Fatalf("expected other owner to reuse the name, got %v", err)
	}
}

func TestRenameList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, "ana", "ana@example.com", "d")
	groceries, _ := store.CreateList(ctx, ana.ID, "Groceries", seedTask())
	if _, err := store.CreateList(ctx, ana.ID, "Chores", seedTask()); err != nil {
		t.Fatalf("create list: %v", err)
	}

	renamed, err := store.RenameList(ctx, groceries.ID, "Errands")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Errands" {
		t.Fatalf("expected renamed list, got %+v", renamed)
	}

	if _, err := store.RenameList(ctx, groceries.ID, "Chores"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on collision, got %v", err)
	}
	if _, err := store.RenameList(ctx, 9999, "Whatever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteList_CascadesOnlyItsTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, "ana", "ana@example.com", "d")
	groceries, _ := store.CreateList(ctx, ana.ID, "Groceries", seedTask())
	chores, _ := store.CreateList(ctx, ana.ID, "Chores", seedTask())

	if _, err := store.CreateTask(ctx, models.Task{ListID: groceries.ID, OwnerID: ana.ID, Name: "Milk"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	before, _ := store.TasksForUser(ctx, ana.ID)
	if len(before) != 3 {
		t.Fatalf("expected 3 tasks before delete, got %d", len(before))
	}

	if err := store.DeleteList(ctx, groceries.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}

	if _, err := store.GetList(ctx, groceries.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted list to be gone, got %v", err)
	}

	after, _ := store.TasksForUser(ctx, ana.ID)
	if len(after) != 1 {
		t.Fatalf("expected 1 surviving task, got %d", len(after))
	}
	if after[0].ListID != chores.ID {
		t.Fatalf("survivor belongs to list %d, want %d", after[0].ListID, chores.ID)
	}

	if err := store.DeleteList(ctx, groceries.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, "ana", "ana@example.com", "d")
	list, _ := store.CreateList(ctx, ana.ID, "Groceries", seedTask())

	task, err := store.CreateTask(ctx, models.Task{
		ListID: list.ID, OwnerID: ana.ID,
		Name: "Milk", Description: "2 liters", Deadline: "Soon",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Deadline != "Soon" || task.Done {
		t.Fatalf("unexpected task %+v", task)
	}

	updated, err := store.UpdateTask(ctx, task.ID, "Oat milk", "1 liter", "TBD")
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Name != "Oat milk" || updated.Deadline != "TBD" || updated.ListID != list.ID {
		t.Fatalf("unexpected update %+v", updated)
	}

	done, err := store.SetTaskDone(ctx, task.ID, true)
	if err != nil {
		t.Fatalf("set done: %v", err)
	}
	if !done.Done {
		t.Fatal("expected task to be done")
	}

	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateTask_RequiresName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ana, _ := store.CreateUser(ctx, "ana", "ana@example.com", "d")
	list, _ := store.CreateList(ctx, ana.ID, "Groceries", seedTask())

	if _, err := store.CreateTask(ctx, models.Task{ListID: list.ID, OwnerID: ana.ID, Name: "   "}); err == nil {
		t.Fatal("expected blank task name to be rejected")
	}
}
