package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samuliej/mobilechat/internal/domain"
	"github.com/Samuliej/mobilechat/internal/repository"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, user1_id, user2_id, encryption_key, created_at, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.User1ID, conv.User2ID, conv.EncryptionKey, conv.CreatedAt, conv.LastMessageAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user1_id, user2_id, encryption_key, created_at, last_message_at
		FROM conversations
		WHERE id = $1`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.EncryptionKey,
		&conv.CreatedAt, &conv.LastMessageAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ConversationRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, user1_id, user2_id, encryption_key, created_at, last_message_at
		FROM conversations
		WHERE user1_id = $1 AND user2_id = $2`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, user1ID, user2ID).Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.EncryptionKey,
		&conv.CreatedAt, &conv.LastMessageAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.encryption_key, c.created_at, c.last_message_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.username ELSE u1.username END AS other_username,
			CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END AS other_display_name
		FROM conversations c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.last_message_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.User1ID, &conv.User2ID, &conv.EncryptionKey,
			&conv.CreatedAt, &conv.LastMessageAt,
			&conv.OtherUserID, &conv.OtherUserUsername, &conv.OtherUserDisplayName,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// Delete removes the conversation; messages go with it via ON DELETE CASCADE.
func (r *ConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	return err
}
