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
	ErrCannotRequestSelf    = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadyExists = errors.New("a pending request already exists")
	ErrAlreadyFriends       = errors.New("you are already friends")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrRequestNotPending    = errors.New("friend request is no longer pending")
	ErrNotRequestReceiver   = errors.New("only the request receiver can perform this action")
	ErrNotRequestSender     = errors.New("only the request sender can cancel")
	ErrFriendshipNotFound   = errors.New("friendship not found")
)

type FriendshipService struct {
	friendRepo repository.FriendshipRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFriendshipService(friendRepo repository.FriendshipRepository, userRepo repository.UserRepository) *FriendshipService {
	return &FriendshipService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (s *FriendshipService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendRequest sends a friend request by target username. A declined
// friendship between the pair is revived as a fresh pending request from the
// caller; a pending one in either direction is a conflict.
func (s *FriendshipService) SendRequest(ctx context.Context, senderID uuid.UUID, targetUsername string) (*domain.Friendship, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if senderID == target.ID {
		return nil, ErrCannotRequestSelf
	}

	existing, err := s.friendRepo.GetByPair(ctx, senderID, target.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		switch existing.Status {
		case domain.FriendshipAccepted:
			return nil, ErrAlreadyFriends
		case domain.FriendshipPending:
			return nil, ErrRequestAlreadyExists
		case domain.FriendshipDeclined:
			existing.SenderID = senderID
			existing.ReceiverID = target.ID
			existing.Status = domain.FriendshipPending
			existing.CreatedAt = time.Now()
			existing.RespondedAt = nil
			if err := s.friendRepo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("reviving friend request: %w", err)
			}
			s.fillNames(ctx, existing, target)
			if s.notifier != nil {
				s.notifier.NotifyFriendRequest(existing)
			}
			return existing, nil
		}
	}

	req := &domain.Friendship{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: target.ID,
		Status:     domain.FriendshipPending,
		CreatedAt:  time.Now(),
	}

	if err := s.friendRepo.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent request for the same pair.
			return nil, ErrRequestAlreadyExists
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	s.fillNames(ctx, req, target)
	if s.notifier != nil {
		s.notifier.NotifyFriendRequest(req)
	}

	return req, nil
}

// AcceptRequest accepts a pending friend request. Only the receiver may
// accept, and only while the request is still pending.
func (s *FriendshipService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) (*domain.Friendship, error) {
	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return nil, ErrNotRequestReceiver
	}
	if req.Status != domain.FriendshipPending {
		return nil, ErrRequestNotPending
	}

	now := time.Now()
	req.Status = domain.FriendshipAccepted
	req.RespondedAt = &now

	if err := s.friendRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}

	s.fillNames(ctx, req, nil)
	if s.notifier != nil {
		s.notifier.NotifyFriendRequestAccepted(req)
	}

	return req, nil
}

// DeclineRequest marks a pending request declined. The row is kept so a later
// request between the same pair revives it.
func (s *FriendshipService) DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return ErrNotRequestReceiver
	}
	if req.Status != domain.FriendshipPending {
		return ErrRequestNotPending
	}

	now := time.Now()
	req.Status = domain.FriendshipDeclined
	req.RespondedAt = &now

	return s.friendRepo.Update(ctx, req)
}

// CancelRequest deletes a pending request sent by the caller.
func (s *FriendshipService) CancelRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.SenderID != userID {
		return ErrNotRequestSender
	}
	if req.Status != domain.FriendshipPending {
		return ErrRequestNotPending
	}

	return s.friendRepo.Delete(ctx, requestID)
}

func (s *FriendshipService) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.Friend{}
	}
	return friends, nil
}

func (s *FriendshipService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	reqs, err := s.friendRepo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.Friendship{}
	}
	return reqs, nil
}

func (s *FriendshipService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	reqs, err := s.friendRepo.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.Friendship{}
	}
	return reqs, nil
}

// RemoveFriend deletes the accepted friendship between the caller and another
// user.
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, otherUserID uuid.UUID) error {
	f, err := s.friendRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil {
		return err
	}
	if f == nil || f.Status != domain.FriendshipAccepted {
		return ErrFriendshipNotFound
	}
	return s.friendRepo.Delete(ctx, f.ID)
}

// fillNames populates the joined username fields for notification payloads.
// target may be pre-fetched by the caller to save a lookup.
func (s *FriendshipService) fillNames(ctx context.Context, f *domain.Friendship, target *domain.User) {
	if sender, err := s.userRepo.GetByID(ctx, f.SenderID); err == nil && sender != nil {
		f.SenderUsername = sender.Username
		f.SenderDisplayName = sender.DisplayName
	}
	receiver := target
	if receiver == nil || receiver.ID != f.ReceiverID {
		if u, err := s.userRepo.GetByID(ctx, f.ReceiverID); err == nil && u != nil {
			receiver = u
		} else {
			receiver = nil
		}
	}
	if receiver != nil {
		f.ReceiverUsername = receiver.Username
		f.ReceiverDisplayName = receiver.DisplayName
	}
}
