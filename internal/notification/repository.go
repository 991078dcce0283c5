package notification

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification
func (r *Repository) Create(ctx context.Context, userID int64, message string) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2)
		RETURNING id, user_id, message, created_at
	`

	notification := &Notification{}
	err := r.db.QueryRowContext(ctx, query, userID, message).Scan(
		&notification.ID,
		&notification.UserID,
		&notification.Message,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// CreateTx inserts a notification as part of an open transaction, so the
// write commits or rolls back with the rest of the unit
func CreateTx(ctx context.Context, tx *sql.Tx, userID int64, message string) error {
	query := `INSERT INTO notifications (user_id, message) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, query, userID, message); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListRecent retrieves the most recent notifications for a user, newest first
func (r *Repository) ListRecent(ctx context.Context, userID int64, limit int) ([]*Notification, error) {
	query := `
		SELECT id, user_id, message, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		notification := &Notification{}
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Message,
			&notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}
