package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trellolite/internal/database"
	"trellolite/internal/model"
)

const taskColumns = "id, title, description, status, priority, due_date, created_by, assigned_to, created_at, updated_at"

type taskRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (model.Task, error) {
	var t model.Task
	var id int64
	var description, assignedTo sql.NullString
	var dueDate sql.NullTime
	err := s.Scan(&id, &t.Title, &description, &t.Status, &t.Priority, &dueDate,
		&t.CreatedBy, &assignedTo, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.ID = formatID(id)
	t.Description = description.String
	t.AssignedTo = assignedTo.String
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	return t, nil
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (title, description, status, priority, due_date, created_by, assigned_to, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.Title, nullString(t.Description), t.Status, t.Priority, nullTime(t.DueDate),
		t.CreatedBy, nullString(t.AssignedTo), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve task id: %w", err)
	}
	t.ID = formatID(id)
	return nil
}

func (r *taskRepo) Get(ctx context.Context, id string) (*model.Task, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	t, err := scanTask(r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	key, err := parseID(t.ID)
	if err != nil {
		return err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", key).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if !exists {
		return database.ErrNotFound
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, assigned_to = ?, updated_at = ? WHERE id = ?",
		t.Title, nullString(t.Description), t.Status, t.Priority, nullTime(t.DueDate),
		nullString(t.AssignedTo), t.UpdatedAt, key)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}
