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

type FriendshipRepo struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepo(pool *pgxpool.Pool) *FriendshipRepo {
	return &FriendshipRepo{pool: pool}
}

func (r *FriendshipRepo) Create(ctx context.Context, f *domain.Friendship) error {
	query := `
		INSERT INTO friendships (id, sender_id, receiver_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, f.ID, f.SenderID, f.ReceiverID, f.Status, f.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *FriendshipRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, responded_at
		FROM friendships
		WHERE id = $1`
	var f domain.Friendship
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &f, err
}

// GetByPair returns the friendship between two users regardless of which of
// them sent the request. At most one row exists per unordered pair.
func (r *FriendshipRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.Friendship, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, responded_at
		FROM friendships
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)`
	var f domain.Friendship
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.RespondedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &f, err
}

func (r *FriendshipRepo) Update(ctx context.Context, f *domain.Friendship) error {
	query := `
		UPDATE friendships
		SET sender_id = $1, receiver_id = $2, status = $3, created_at = $4, responded_at = $5
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, query,
		f.SenderID, f.ReceiverID, f.Status, f.CreatedAt, f.RespondedAt, f.ID,
	)
	return err
}

func (r *FriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	return err
}

func (r *FriendshipRepo) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	query := `
		SELECT f.id, f.sender_id, f.receiver_id, f.status, f.created_at, f.responded_at,
			u.username, u.display_name
		FROM friendships f
		JOIN users u ON f.sender_id = u.id
		WHERE f.receiver_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs []domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		if err := rows.Scan(
			&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.RespondedAt,
			&f.SenderUsername, &f.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, rows.Err()
}

func (r *FriendshipRepo) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	query := `
		SELECT f.id, f.sender_id, f.receiver_id, f.status, f.created_at, f.responded_at,
			u.username, u.display_name
		FROM friendships f
		JOIN users u ON f.receiver_id = u.id
		WHERE f.sender_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs []domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		if err := rows.Scan(
			&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.RespondedAt,
			&f.ReceiverUsername, &f.ReceiverDisplayName,
		); err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, rows.Err()
}

func (r *FriendshipRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	query := `
		SELECT
			CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END AS user_id,
			u.username, u.display_name, u.avatar_url, f.responded_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
		WHERE (f.sender_id = $1 OR f.receiver_id = $1) AND f.status = 'accepted'
		ORDER BY u.display_name ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []domain.Friend
	for rows.Next() {
		var fr domain.Friend
		if err := rows.Scan(
			&fr.UserID, &fr.Username, &fr.DisplayName, &fr.AvatarURL, &fr.FriendsAt,
		); err != nil {
			return nil, err
		}
		friends = append(friends, fr)
	}
	return friends, rows.Err()
}

func (r *FriendshipRepo) AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
				AND status = 'accepted'
		)`, userA, userB,
	).Scan(&exists)
	return exists, err
}
