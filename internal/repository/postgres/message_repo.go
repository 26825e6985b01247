package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samuliej/mobilechat/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts the message and bumps the conversation's last_message_at in
// a single transaction so the history and the conversation list never
// disagree.
func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	emojis, err := json.Marshal(msg.Emojis)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, emojis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content, emojis, msg.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET last_message_at = $1 WHERE id = $2`,
		msg.CreatedAt, msg.ConversationID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.emojis,
			m.created_at, u.username, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`

	var msg domain.Message
	var emojis []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID,
		&msg.Content, &emojis, &msg.CreatedAt,
		&msg.SenderUsername, &msg.SenderDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(emojis) > 0 {
		if err := json.Unmarshal(emojis, &msg.Emojis); err != nil {
			return nil, err
		}
	}
	return &msg, nil
}

// ListPage returns one page of a conversation's history, newest first.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.emojis,
			m.created_at, u.username, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, conversationID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var emojis []byte
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID,
			&msg.Content, &emojis, &msg.CreatedAt,
			&msg.SenderUsername, &msg.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		if len(emojis) > 0 {
			if err := json.Unmarshal(emojis, &msg.Emojis); err != nil {
				return nil, err
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) CountByConversation(ctx context.Context, conversationID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID,
	).Scan(&count)
	return count, err
}
