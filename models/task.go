package models

import "time"

// Task is a single to-do item.
type Task struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// String returns the task description, which is how a task is shown in lists.
func (t Task) String() string {
	return t.Description
}
