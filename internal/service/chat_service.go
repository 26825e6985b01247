package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/domain"
	"github.com/Samuliej/mobilechat/internal/repository"
	"github.com/Samuliej/mobilechat/pkg/msgcipher"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start a conversation with yourself")
	ErrNotFriends           = errors.New("you can only chat with friends")
	ErrEmptyMessage         = errors.New("message content is required")
)

type ChatService struct {
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	friendRepo repository.FriendshipRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	friendRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
) *ChatService {
	return &ChatService{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

type MessageListResponse struct {
	Messages    []domain.Message `json:"messages"`
	HasNextPage bool             `json:"has_next_page"`
}

// GetOrCreateConversation finds or lazily creates the conversation between
// two friends. The symmetric key minted at creation is returned to both
// participants; see pkg/msgcipher for why that scheme is considered weak.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Conversation, error) {
	if userID == otherUserID {
		return nil, ErrCannotChatSelf
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	friends, err := s.friendRepo.AreFriends(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, ErrNotFriends
	}

	// Canonical pair order so each pair maps to one row.
	u1, u2 := userID, otherUserID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	conv, err := s.convRepo.GetByUsers(ctx, u1, u2)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		conv.OtherUserID = otherUserID
		conv.OtherUserUsername = other.Username
		conv.OtherUserDisplayName = other.DisplayName
		return conv, nil
	}

	key, err := msgcipher.NewKey()
	if err != nil {
		return nil, fmt.Errorf("generating conversation key: %w", err)
	}

	now := time.Now()
	conv = &domain.Conversation{
		ID:            uuid.New(),
		User1ID:       u1,
		User2ID:       u2,
		EncryptionKey: key,
		CreatedAt:     now,
		LastMessageAt: now,

		OtherUserID:          otherUserID,
		OtherUserUsername:    other.Username,
		OtherUserDisplayName: other.DisplayName,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with the other participant; theirs won.
			existing, err := s.convRepo.GetByUsers(ctx, u1, u2)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				existing.OtherUserID = otherUserID
				existing.OtherUserUsername = other.Username
				existing.OtherUserDisplayName = other.DisplayName
				return existing, nil
			}
		}
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	return conv, nil
}

func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	if _, err := s.checkParticipant(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.convRepo.Delete(ctx, conversationID)
}

// SendMessage persists one message and pushes it to the other participant's
// live connection, if any. Offline receivers catch up on their next fetch;
// there is no retry queue.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string, emojis []msgcipher.EmojiRef, clientTime *time.Time) (*domain.Message, error) {
	if content == "" && len(emojis) == 0 {
		return nil, ErrEmptyMessage
	}

	conv, err := s.checkParticipant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now()
	if clientTime != nil {
		createdAt = *clientTime
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       userID,
		ReceiverID:     conv.OtherParty(userID),
		Content:        content,
		Emojis:         emojis,
		CreatedAt:      createdAt,
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.msgRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		// Conversation deleted under us; the cascade took the row with it.
		full = msg
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// ListMessages returns page p of the conversation's history, newest first.
// has_next_page is true iff p*size < total messages.
func (s *ChatService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, page, size int) (*MessageListResponse, error) {
	if _, err := s.checkParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	messages, err := s.msgRepo.ListPage(ctx, conversationID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	total, err := s.msgRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return &MessageListResponse{
		Messages:    messages,
		HasNextPage: page*size < total,
	}, nil
}

func (s *ChatService) checkParticipant(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.Participant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}
