package repo

import (
	"context"
	"database/sql"

	"github.com/agripulse/agripulse/internal/models"
)

// InboundRepo logs webhook messages and the replies we sent.
type InboundRepo struct {
	DB *sql.DB
}

// NewInboundRepo returns a new InboundRepo.
func NewInboundRepo(db *sql.DB) *InboundRepo {
	return &InboundRepo{DB: db}
}

// Log records one inbound message. ownerID is 0 when the sender is unknown.
func (r *InboundRepo) Log(ctx context.Context, phone string, ownerID int, body, reply string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO inbound_messages (phone_number, owner_id, body, reply) VALUES ($1, $2, $3, $4)`,
		phone, nullInt(ownerID), body, reply)
	return err
}

// List returns recent inbound messages, newest first.
func (r *InboundRepo) List(ctx context.Context, limit, offset int) ([]models.InboundMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, phone_number, COALESCE(owner_id, 0), body, reply, created_at
		FROM inbound_messages ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.InboundMessage
	for rows.Next() {
		var m models.InboundMessage
		if err := rows.Scan(&m.ID, &m.PhoneNumber, &m.OwnerID, &m.Body, &m.Reply, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
