package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Samuliej/mobilechat/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, text, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.Text, post.ImageURL, post.CreatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.text, p.image_url, p.created_at,
			u.username, u.display_name,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
			EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $2),
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`

	var post domain.Post
	err := r.pool.QueryRow(ctx, query, id, viewerID).Scan(
		&post.ID, &post.AuthorID, &post.Text, &post.ImageURL, &post.CreatedAt,
		&post.AuthorUsername, &post.AuthorDisplayName,
		&post.LikeCount, &post.LikedByViewer, &post.CommentCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &post, err
}

func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// ListFeed returns the viewer's own posts plus their friends' posts.
func (r *PostRepo) ListFeed(ctx context.Context, viewerID uuid.UUID, offset, limit int) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.text, p.image_url, p.created_at,
			u.username, u.display_name,
			(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
			EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1),
			(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.author_id = $1 OR p.author_id IN (
			SELECT CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
			FROM friendships f
			WHERE (f.sender_id = $1 OR f.receiver_id = $1) AND f.status = 'accepted'
		)
		ORDER BY p.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, viewerID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Text, &post.ImageURL, &post.CreatedAt,
			&post.AuthorUsername, &post.AuthorDisplayName,
			&post.LikeCount, &post.LikedByViewer, &post.CommentCount,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *PostRepo) CountFeed(ctx context.Context, viewerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM posts p
		WHERE p.author_id = $1 OR p.author_id IN (
			SELECT CASE WHEN f.sender_id = $1 THEN f.receiver_id ELSE f.sender_id END
			FROM friendships f
			WHERE (f.sender_id = $1 OR f.receiver_id = $1) AND f.status = 'accepted'
		)`, viewerID,
	).Scan(&count)
	return count, err
}

// Like records the like once per user; re-liking is a no-op.
func (r *PostRepo) Like(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostRepo) Unlike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID,
	)
	return err
}

func (r *PostRepo) AddComment(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Text, comment.CreatedAt,
	)
	return err
}

func (r *PostRepo) ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
			u.username, u.display_name
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&c.AuthorUsername, &c.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
