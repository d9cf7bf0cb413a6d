package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trellolite/internal/database"
	"trellolite/internal/model"
)

type messageRepo struct {
	db *sql.DB
}

func (r *messageRepo) Create(ctx context.Context, m *model.Message) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (sender, receiver, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		m.Sender, m.Receiver, m.Content, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve message id: %w", err)
	}
	m.ID = formatID(id)
	return nil
}

func (r *messageRepo) Conversation(ctx context.Context, a, b string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sender, receiver, content, created_at, updated_at FROM messages
		WHERE (sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)
		ORDER BY created_at ASC, id ASC`,
		a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	msgList := []model.Message{}
	for rows.Next() {
		var m model.Message
		var id int64
		if err := rows.Scan(&id, &m.Sender, &m.Receiver, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.ID = formatID(id)
		msgList = append(msgList, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgList, nil
}

func (r *messageRepo) get(ctx context.Context, key uint64) (*model.Message, error) {
	var m model.Message
	var id int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id, sender, receiver, content, created_at, updated_at FROM messages WHERE id = ?", key,
	).Scan(&id, &m.Sender, &m.Receiver, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	m.ID = formatID(id)
	return &m, nil
}

func (r *messageRepo) UpdateContent(ctx context.Context, id, content string) (*model.Message, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	m, err := r.get(ctx, key)
	if err != nil {
		return nil, err
	}

	m.Content = content
	m.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE messages SET content = ?, updated_at = ? WHERE id = ?", m.Content, m.UpdatedAt, key); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return m, nil
}

func (r *messageRepo) Delete(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}
