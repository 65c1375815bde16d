package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velmart/chat/internal/domain"
)

const messageColumns = "id, message, created_at, updated_at, is_edited, is_deleted, sender_id, recipient_id"

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// withTx runs fn inside a transaction, rolling back on any error.
func (r *MessageRepo) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, message, created_at, is_edited, is_deleted, sender_id, recipient_id)
		VALUES ($1, $2, $3, FALSE, FALSE, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.Content, msg.CreatedAt, msg.SenderID, msg.RecipientID,
	)
	return err
}

// Edit replaces the content of a message the requester sent. The row is read
// and locked in the same transaction as the write, so concurrent edits are
// serialized (last commit wins).
func (r *MessageRepo) Edit(ctx context.Context, messageID, requesterID uuid.UUID, content string) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockMessage(ctx, tx, messageID, requesterID, &msg); err != nil {
			return err
		}

		now := time.Now()
		if _, err := tx.Exec(ctx,
			`UPDATE chat_messages SET message = $1, is_edited = TRUE, updated_at = $2 WHERE id = $3`,
			content, now, messageID,
		); err != nil {
			return err
		}

		msg.Content = content
		msg.IsEdited = true
		msg.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// SoftDelete marks a message the requester sent as deleted. Content is kept.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID, requesterID uuid.UUID) (*domain.ChatMessage, error) {
	var msg domain.ChatMessage
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockMessage(ctx, tx, messageID, requesterID, &msg); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE chat_messages SET is_deleted = TRUE WHERE id = $1`, messageID,
		); err != nil {
			return err
		}

		msg.IsDeleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// lockMessage reads a row FOR UPDATE and applies the existence and ownership
// checks shared by Edit and SoftDelete. A soft-deleted row is reported the
// same as a missing one.
func lockMessage(ctx context.Context, tx pgx.Tx, messageID, requesterID uuid.UUID, msg *domain.ChatMessage) error {
	err := tx.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM chat_messages WHERE id = $1 FOR UPDATE`, messageID,
	).Scan(
		&msg.ID, &msg.Content, &msg.CreatedAt, &msg.UpdatedAt,
		&msg.IsEdited, &msg.IsDeleted, &msg.SenderID, &msg.RecipientID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return domain.ErrMessageNotFound
	}
	if msg.SenderID != requesterID {
		return domain.ErrNotSender
	}
	return nil
}

// Partners returns every user who has exchanged at least one non-deleted
// message with userID, in either direction.
func (r *MessageRepo) Partners(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT DISTINCT u.id, u.fio, u.phone, u.created_at
		FROM users u
		JOIN chat_messages m
			ON (m.sender_id = u.id AND m.recipient_id = $1)
			OR (m.recipient_id = u.id AND m.sender_id = $1)
		WHERE m.is_deleted = FALSE`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.FIO, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// LatestBetween returns the most recent non-deleted message between the pair,
// or nil if none exists.
func (r *MessageRepo) LatestBetween(ctx context.Context, userID, partnerID uuid.UUID) (*domain.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE is_deleted = FALSE
			AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		ORDER BY created_at DESC
		LIMIT 1`

	var msg domain.ChatMessage
	err := r.pool.QueryRow(ctx, query, userID, partnerID).Scan(
		&msg.ID, &msg.Content, &msg.CreatedAt, &msg.UpdatedAt,
		&msg.IsEdited, &msg.IsDeleted, &msg.SenderID, &msg.RecipientID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListBetween returns non-deleted messages between the pair, newest first.
func (r *MessageRepo) ListBetween(ctx context.Context, userID, partnerID uuid.UUID, limit, offset int) ([]domain.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE is_deleted = FALSE
			AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, userID, partnerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID, &msg.Content, &msg.CreatedAt, &msg.UpdatedAt,
			&msg.IsEdited, &msg.IsDeleted, &msg.SenderID, &msg.RecipientID,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
