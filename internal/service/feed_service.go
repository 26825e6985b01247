package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/domain"
	"github.com/Samuliej/mobilechat/internal/repository"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("only the author can delete a post")
	ErrEmptyPost    = errors.New("post text is required")
	ErrEmptyComment = errors.New("comment text is required")
)

type FeedService struct {
	postRepo repository.PostRepository
}

func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

type FeedResponse struct {
	Posts       []domain.Post `json:"posts"`
	HasNextPage bool          `json:"has_next_page"`
}

func (s *FeedService) CreatePost(ctx context.Context, authorID uuid.UUID, text string, imageURL *string) (*domain.Post, error) {
	if text == "" {
		return nil, ErrEmptyPost
	}

	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return s.GetPost(ctx, post.ID, authorID)
}

func (s *FeedService) GetPost(ctx context.Context, postID, viewerID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *FeedService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != userID {
		return ErrNotPostOwner
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListFeed pages through the viewer's own and friends' posts, newest first.
func (s *FeedService) ListFeed(ctx context.Context, viewerID uuid.UUID, page, size int) (*FeedResponse, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}

	posts, err := s.postRepo.ListFeed(ctx, viewerID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	total, err := s.postRepo.CountFeed(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return &FeedResponse{
		Posts:       posts,
		HasNextPage: page*size < total,
	}, nil
}

// LikePost records the like at most once per user.
func (s *FeedService) LikePost(ctx context.Context, userID, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if _, err := s.postRepo.Like(ctx, postID, userID); err != nil {
		return nil, fmt.Errorf("liking post: %w", err)
	}

	return s.GetPost(ctx, postID, userID)
}

func (s *FeedService) UnlikePost(ctx context.Context, userID, postID uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if err := s.postRepo.Unlike(ctx, postID, userID); err != nil {
		return nil, fmt.Errorf("unliking post: %w", err)
	}

	return s.GetPost(ctx, postID, userID)
}

func (s *FeedService) AddComment(ctx context.Context, userID, postID uuid.UUID, text string) (*domain.Comment, error) {
	if text == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  userID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

func (s *FeedService) ListComments(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	comments, err := s.postRepo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
