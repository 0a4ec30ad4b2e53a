package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mytodolist/models"
)

// ErrTaskNotFound is returned when no task matches the requested id.
var ErrTaskNotFound = errors.New("task not found")

const taskColumns = "id, description, completed, created_at, updated_at"

// TaskStore persists tasks in a SQL database.
type TaskStore struct {
	db     *sql.DB
	driver string
}

// NewTaskStore returns a store over db. driver selects the placeholder style.
func NewTaskStore(db *sql.DB, driver string) *TaskStore {
	return &TaskStore{db: db, driver: driver}
}

func (s *TaskStore) q(query string) string {
	return rebind(s.driver, query)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	if err := row.Scan(&task.ID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

// Ping reports whether the database is reachable.
func (s *TaskStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AddTask inserts a new, incomplete task.
func (s *TaskStore) AddTask(ctx context.Context, description string) (*models.Task, error) {
	now := time.Now().UTC()
	query := `
	INSERT INTO tasks (description, completed, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	RETURNING id
	`
	var id int
	if err := s.db.QueryRowContext(ctx, s.q(query), description, false, now, now).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	return &models.Task{
		ID:          id,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetAllTasks returns every task ordered by id. The result is never nil.
func (s *TaskStore) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks ORDER BY id ASC"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a task by id.
func (s *TaskStore) GetTask(ctx context.Context, id int) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ?"
	task, err := scanTask(s.db.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// GetLastTask retrieves the most recently inserted task, or nil when the
// table is empty.
func (s *TaskStore) GetLastTask(ctx context.Context) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks ORDER BY id DESC LIMIT 1"
	task, err := scanTask(s.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last task: %w", err)
	}
	return task, nil
}

// CountTasks returns the number of stored tasks.
func (s *TaskStore) CountTasks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (s *TaskStore) execOne(ctx context.Context, id int, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
	}
	return nil
}

// UpdateTask replaces the description of an existing task.
func (s *TaskStore) UpdateTask(ctx context.Context, id int, description string) error {
	query := `
	UPDATE tasks
	SET description = ?, updated_at = ?
	WHERE id = ?
	`
	if err := s.execOne(ctx, id, query, description, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// CompleteTask marks a task as completed. Completing an already completed
// task succeeds.
func (s *TaskStore) CompleteTask(ctx context.Context, id int) error {
	query := `
	UPDATE tasks
	SET completed = ?, updated_at = ?
	WHERE id = ?
	`
	if err := s.execOne(ctx, id, query, true, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

// DeleteTask deletes a task by id.
func (s *TaskStore) DeleteTask(ctx context.Context, id int) error {
	if err := s.execOne(ctx, id, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DeleteAllTasks deletes all tasks from the database.
func (s *TaskStore) DeleteAllTasks(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to delete all tasks: %w", err)
	}
	return nil
}

const seedBatchSize = 1000

// GenerateDummyTasks inserts count tasks named "Task N", continuing the
// numbering after the last stored task. Inserts are committed in batches.
func (s *TaskStore) GenerateDummyTasks(ctx context.Context, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	lastTask, err := s.GetLastTask(ctx)
	if err != nil {
		return err
	}
	start := 1
	if lastTask != nil {
		start = lastTask.ID + 1
	}

	slog.Info("generating dummy tasks", "count", count, "start", start)

	query := s.q(`
	INSERT INTO tasks (description, completed, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	`)
	for offset := 0; offset < count; offset += seedBatchSize {
		end := min(offset+seedBatchSize, count)
		if err := s.insertBatch(ctx, query, start+offset, start+end); err != nil {
			return err
		}
		slog.Debug("committed dummy task batch", "from", start+offset, "to", start+end-1)
	}

	slog.Info("generated dummy tasks", "count", count)
	return nil
}

func (s *TaskStore) insertBatch(ctx context.Context, query string, from, to int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for n := from; n < to; n++ {
		now := time.Now().UTC()
		if _, err := stmt.ExecContext(ctx, fmt.Sprintf("Task %d", n), false, now, now); err != nil {
			return fmt.Errorf("failed to insert task %d: %w", n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
