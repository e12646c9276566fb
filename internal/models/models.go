package models

import "time"

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// List groups tasks under a name. Names are unique per owner.
type List struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is a single to-do item. Deadline is free text on purpose: the
// original product accepts values like "TBD" or "Soon" alongside dates,
// so it is stored and returned verbatim, never parsed.
type Task struct {
	ID          int64     `json:"id"`
	ListID      int64     `json:"list_id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dashboard is the per-user aggregate view.
type Dashboard struct {
	Lists          []List `json:"lists"`
	Tasks          []Task `json:"tasks"`
	ListCount      int    `json:"list_count"`
	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
}
