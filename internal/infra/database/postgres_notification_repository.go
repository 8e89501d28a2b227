// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"isp_billing_panel/internal/domain/notification"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) LoadAll(ctx context.Context) ([]*notification.Notification, error) {
	query := `SELECT id, kind, time, client_id, client_name, due_date, message
              FROM notifications ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*notification.Notification{}
	for rows.Next() {
		var (
			n       notification.Notification
			dueDate sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Kind, &n.Time, &n.ClientID, &n.ClientName, &dueDate, &n.Message); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		n.DueDate = dateFromNull(dueDate)
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// SaveAll replaces the table contents in one transaction, newest first by position.
func (r *PostgresNotificationRepository) SaveAll(ctx context.Context, notifications []*notification.Notification) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO notifications (id, position, kind, time, client_id, client_name, due_date, message)
                                          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("failed to prepare notification insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notifications {
		if _, err := stmt.ExecContext(ctx, n.ID, i, n.Kind, timeOrNow(n.Time), n.ClientID, n.ClientName,
			nullFromDate(n.DueDate), n.Message); err != nil {
			return fmt.Errorf("failed to insert notification %s: %w", n.ID, err)
		}
	}
	return txn.Commit()
}
