package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/velmart/chat/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// MessageRepository persists chat messages. Edit and SoftDelete perform their
// existence and ownership checks inside one transaction and return
// domain.ErrMessageNotFound (also for soft-deleted rows) or domain.ErrNotSender.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	Edit(ctx context.Context, messageID, requesterID uuid.UUID, content string) (*domain.ChatMessage, error)
	SoftDelete(ctx context.Context, messageID, requesterID uuid.UUID) (*domain.ChatMessage, error)
	Partners(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
	LatestBetween(ctx context.Context, userID, partnerID uuid.UUID) (*domain.ChatMessage, error)
	ListBetween(ctx context.Context, userID, partnerID uuid.UUID, limit, offset int) ([]domain.ChatMessage, error)
}
