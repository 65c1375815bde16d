package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/velmart/chat/internal/domain"
	"github.com/velmart/chat/internal/repository"
)

// Notifier pushes the state of a mutated message to its live participants.
type Notifier interface {
	NotifyMessage(msg *domain.ChatMessage)
}

type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send creates a new message to an existing recipient and fans it out.
func (s *ChatService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*domain.ChatMessage, error) {
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, domain.ErrRecipientNotFound
	}

	msg := &domain.ChatMessage{
		ID:          uuid.New(),
		Content:     content,
		CreatedAt:   time.Now(),
		SenderID:    senderID,
		RecipientID: recipientID,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating chat message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(msg)
	}

	return msg, nil
}

// Edit replaces the content of the requester's own message.
func (s *ChatService) Edit(ctx context.Context, requesterID, messageID uuid.UUID, content string) (*domain.ChatMessage, error) {
	msg, err := s.messageRepo.Edit(ctx, messageID, requesterID, content)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(msg)
	}

	return msg, nil
}

// Delete soft-deletes the requester's own message. Further edits or deletes
// of it fail as if it never existed.
func (s *ChatService) Delete(ctx context.Context, requesterID, messageID uuid.UUID) (*domain.ChatMessage, error) {
	msg, err := s.messageRepo.SoftDelete(ctx, messageID, requesterID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMessage(msg)
	}

	return msg, nil
}

// ListConversations returns the user's conversation partners with the latest
// non-deleted message per pair, most recent conversation first. Ties are
// broken by partner id to keep the order stable.
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.ConversationItem, error) {
	partners, err := s.messageRepo.Partners(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := []domain.ConversationItem{}
	for _, partner := range partners {
		last, err := s.messageRepo.LatestBetween(ctx, userID, partner.ID)
		if err != nil {
			return nil, err
		}
		if last == nil {
			continue
		}
		items = append(items, domain.ConversationItem{
			ID:            partner.ID,
			Username:      partner.FIO,
			LastMessage:   last.Content,
			LastMessageAt: last.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].LastMessageAt.Equal(items[j].LastMessageAt) {
			return items[i].LastMessageAt.After(items[j].LastMessageAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})

	return items, nil
}

// History returns non-deleted messages between the user and a partner, newest
// first. An offset past the end yields an empty slice.
func (s *ChatService) History(ctx context.Context, userID, partnerID uuid.UUID, limit, offset int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messageRepo.ListBetween(ctx, userID, partnerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return messages, nil
}
