package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/domain"
)

// ErrDuplicate reports a unique-constraint violation on insert, so services
// can resolve check-then-insert races instead of failing opaquely.
var ErrDuplicate = errors.New("duplicate row")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SearchByUsername(ctx context.Context, prefix string, limit int) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type FriendshipRepository interface {
	Create(ctx context.Context, f *domain.Friendship) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error)
	GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.Friendship, error)
	Update(ctx context.Context, f *domain.Friendship) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error)
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	// Create persists the message and bumps the conversation's last activity
	// in one transaction.
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListPage(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error)
	CountByConversation(ctx context.Context, conversationID uuid.UUID) (int, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListFeed(ctx context.Context, viewerID uuid.UUID, offset, limit int) ([]domain.Post, error)
	CountFeed(ctx context.Context, viewerID uuid.UUID) (int, error)
	// Like is idempotent; it reports whether a new like was recorded.
	Like(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, postID, userID uuid.UUID) error
	AddComment(ctx context.Context, comment *domain.Comment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
}
