package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/velmart/chat/internal/domain"
	"github.com/velmart/chat/internal/service"
)

type stubUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *stubUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return nil, nil
}

type stubMessageRepo struct {
	createErr error
	editErr   error
	deleteErr error
}

func (r *stubMessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	return r.createErr
}

func (r *stubMessageRepo) Edit(ctx context.Context, messageID, requesterID uuid.UUID, content string) (*domain.ChatMessage, error) {
	if r.editErr != nil {
		return nil, r.editErr
	}
	now := time.Now()
	return &domain.ChatMessage{ID: messageID, Content: content, SenderID: requesterID, UpdatedAt: &now, IsEdited: true}, nil
}

func (r *stubMessageRepo) SoftDelete(ctx context.Context, messageID, requesterID uuid.UUID) (*domain.ChatMessage, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	return &domain.ChatMessage{ID: messageID, SenderID: requesterID, IsDeleted: true}, nil
}

func (r *stubMessageRepo) Partners(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	return nil, nil
}

func (r *stubMessageRepo) LatestBetween(ctx context.Context, userID, partnerID uuid.UUID) (*domain.ChatMessage, error) {
	return nil, nil
}

func (r *stubMessageRepo) ListBetween(ctx context.Context, userID, partnerID uuid.UUID, limit, offset int) ([]domain.ChatMessage, error) {
	return nil, nil
}

func newTestSession(t *testing.T, msgRepo *stubMessageRepo, users ...*domain.User) (*Session, *Registry) {
	t.Helper()
	userRepo := &stubUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		userRepo.users[u.ID] = u
	}
	registry := NewRegistry()
	chat := service.NewChatService(msgRepo, userRepo)
	chat.SetNotifier(NewFanout(registry))

	session := NewSession(nil, uuid.New(), registry, chat)
	registry.Register(session.userID, session)
	return session, registry
}

func readFrame(t *testing.T, s *Session) []byte {
	t.Helper()
	select {
	case data := <-s.send:
		return data
	default:
		t.Fatal("expected a frame on the session buffer")
		return nil
	}
}

func readErrorFrame(t *testing.T, s *Session) errorBody {
	t.Helper()
	var evt errorEvent
	require.NoError(t, json.Unmarshal(readFrame(t, s), &evt))
	return evt.Error
}

func TestSession_InvalidActionReportsViolations(t *testing.T) {
	req := require.New(t)
	session, _ := newTestSession(t, &stubMessageRepo{})

	session.handleFrame([]byte(`{"action":"send"}`))

	body := readErrorFrame(t, session)
	req.Equal("VALIDATION_ERROR", body.Code)
	req.Len(body.Fields, 2) // recipient_id and content both missing
}

func TestSession_UnknownRecipientIsNotFound(t *testing.T) {
	req := require.New(t)
	session, _ := newTestSession(t, &stubMessageRepo{})

	session.handleFrame(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":"hi"}`, uuid.New()))

	body := readErrorFrame(t, session)
	req.Equal("NOT_FOUND", body.Code)
}

func TestSession_EditByNonSenderIsForbidden(t *testing.T) {
	req := require.New(t)
	session, _ := newTestSession(t, &stubMessageRepo{editErr: domain.ErrNotSender})

	session.handleFrame(fmt.Appendf(nil, `{"action":"edit","message_id":%q,"content":"hi"}`, uuid.New()))

	body := readErrorFrame(t, session)
	req.Equal("FORBIDDEN", body.Code)
}

func TestSession_DeletedMessageLooksMissing(t *testing.T) {
	req := require.New(t)
	session, _ := newTestSession(t, &stubMessageRepo{deleteErr: domain.ErrMessageNotFound})

	session.handleFrame(fmt.Appendf(nil, `{"action":"delete","message_id":%q}`, uuid.New()))

	body := readErrorFrame(t, session)
	req.Equal("NOT_FOUND", body.Code)
}

func TestSession_StorageErrorIsOpaque(t *testing.T) {
	req := require.New(t)
	recipient := &domain.User{ID: uuid.New(), FIO: "Bob"}
	session, _ := newTestSession(t, &stubMessageRepo{createErr: errors.New("pq: down")}, recipient)

	session.handleFrame(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":"hi"}`, recipient.ID))

	body := readErrorFrame(t, session)
	req.Equal("INTERNAL", body.Code)
	req.NotContains(body.Message, "pq")
}

func TestSession_SendDeliversToBothParties(t *testing.T) {
	req := require.New(t)
	recipient := &domain.User{ID: uuid.New(), FIO: "Bob"}
	session, registry := newTestSession(t, &stubMessageRepo{}, recipient)

	recipientConn := &fakePusher{}
	registry.Register(recipient.ID, recipientConn)

	session.handleFrame(fmt.Appendf(nil, `{"action":"send","recipient_id":%q,"content":"hi"}`, recipient.ID))

	// the sender's own session gets the pushed message, not an error
	var msg domain.ChatMessage
	req.NoError(json.Unmarshal(readFrame(t, session), &msg))
	req.Equal("hi", msg.Content)
	req.Equal(session.userID, msg.SenderID)

	req.Len(recipientConn.pushed(), 1)
}
