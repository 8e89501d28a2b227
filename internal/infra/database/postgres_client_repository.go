// internal/infra/database/postgres_client_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
)

type PostgresClientRepository struct {
	db *sql.DB
}

func NewPostgresClientRepository(db *sql.DB) *PostgresClientRepository {
	return &PostgresClientRepository{db: db}
}

func (r *PostgresClientRepository) LoadAll(ctx context.Context) ([]*client.Client, error) {
	query := `SELECT id, name, phone, plan, location, install_date, billing_cycle, due_date, status, created_at, paid_at
              FROM clients ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing clients: %w", err)
	}
	defer rows.Close()

	clients := []*client.Client{}
	for rows.Next() {
		var (
			c                    client.Client
			installDate, dueDate sql.NullTime
			paidAt               sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Plan, &c.Location, &installDate,
			&c.BillingCycle, &dueDate, &c.Status, &c.CreatedAt, &paidAt); err != nil {
			return nil, fmt.Errorf("error scanning client: %w", err)
		}
		c.InstallDate = dateFromNull(installDate)
		c.DueDate = dateFromNull(dueDate)
		if paidAt.Valid {
			t := paidAt.Time
			c.PaidAt = &t
		}
		clients = append(clients, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}
	return clients, nil
}

// SaveAll replaces the table contents in one transaction.
func (r *PostgresClientRepository) SaveAll(ctx context.Context, clients []*client.Client) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DELETE FROM clients`); err != nil {
		return fmt.Errorf("failed to clear clients: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO clients (id, position, name, phone, plan, location, install_date, billing_cycle, due_date, status, created_at, paid_at)
                                          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
	if err != nil {
		return fmt.Errorf("failed to prepare client insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range clients {
		var paidAt sql.NullTime
		if c.PaidAt != nil {
			paidAt = sql.NullTime{Time: *c.PaidAt, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, c.ID, i, c.Name, c.Phone, c.Plan, c.Location, nullFromDate(c.InstallDate),
			c.BillingCycle, nullFromDate(c.DueDate), c.Status, timeOrNow(c.CreatedAt), paidAt); err != nil {
			return fmt.Errorf("failed to insert client %s: %w", c.ID, err)
		}
	}
	return txn.Commit()
}

func dateFromNull(t sql.NullTime) billing.Date {
	if !t.Valid {
		return billing.Date{}
	}
	return billing.FromTime(t.Time)
}

func nullFromDate(d billing.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time(), Valid: true}
}

// timeOrNow keeps NOT NULL columns satisfied for records imported without a timestamp.
func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
