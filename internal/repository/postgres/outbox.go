package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"

	"github.com/google/uuid"
)

type outboxRepository struct {
	db DBTX
}

func (r *outboxRepository) Enqueue(ctx context.Context, e *domain.OutboxEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Status = domain.OutboxStatusPending

	refs, err := json.Marshal(e.Refs)
	if err != nil {
		return err
	}

	query := `INSERT INTO notification_outbox (id, user_id, type, title, message, url, refs, status, attempts, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9)`
	logger.DatabaseCall("INSERT", "notification_outbox", "eventID", e.ID, "type", e.Type)
	_, err = r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Type, e.Title, e.Message, e.URL, refs, e.Status, e.CreatedAt)
	logger.DatabaseResult("INSERT", 1, err, "eventID", e.ID)
	return convertErr(err)
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	query := `SELECT id, user_id, type, title, message, url, refs, status, attempts, COALESCE(last_error, ''), created_at, dispatched_at
	          FROM notification_outbox WHERE status = $1 ORDER BY created_at, id LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, domain.OutboxStatusPending, limit)
	if err != nil {
		return nil, convertErr(err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		var refs []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Title, &e.Message, &e.URL, &refs, &e.Status, &e.Attempts, &e.LastError, &e.CreatedAt, &e.DispatchedAt); err != nil {
			return nil, err
		}
		if len(refs) > 0 {
			if err := json.Unmarshal(refs, &e.Refs); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *outboxRepository) Claim(ctx context.Context, id string) (bool, error) {
	query := `SELECT id FROM notification_outbox WHERE id = $1 AND status = $2 FOR UPDATE SKIP LOCKED`
	var claimed string
	err := r.db.QueryRowContext(ctx, query, id, domain.OutboxStatusPending).Scan(&claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, convertErr(err)
	}
	return true, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE notification_outbox SET status = $1, attempts = attempts + 1, dispatched_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, domain.OutboxStatusSent, at, id)
	return convertErr(err)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, lastError string, giveUp bool) error {
	status := domain.OutboxStatusPending
	if giveUp {
		status = domain.OutboxStatusFailed
	}
	query := `UPDATE notification_outbox SET status = $1, attempts = attempts + 1, last_error = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, lastError, id)
	return convertErr(err)
}
