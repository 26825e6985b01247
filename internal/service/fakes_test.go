package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Samuliej/mobilechat/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) SearchByUsername(_ context.Context, prefix string, limit int) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		if len(u.Username) >= len(prefix) && u.Username[:len(prefix)] == prefix {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
	return nil
}

type memFriendshipRepo struct {
	mu          sync.Mutex
	friendships map[uuid.UUID]*domain.Friendship
	users       *memUserRepo
}

func newMemFriendshipRepo(users *memUserRepo) *memFriendshipRepo {
	return &memFriendshipRepo{
		friendships: make(map[uuid.UUID]*domain.Friendship),
		users:       users,
	}
}

func (m *memFriendshipRepo) Create(_ context.Context, f *domain.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.friendships[f.ID] = &cp
	return nil
}

func (m *memFriendshipRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.friendships[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memFriendshipRepo) GetByPair(_ context.Context, userA, userB uuid.UUID) (*domain.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.friendships {
		if (f.SenderID == userA && f.ReceiverID == userB) || (f.SenderID == userB && f.ReceiverID == userA) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memFriendshipRepo) Update(_ context.Context, f *domain.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.friendships[f.ID] = &cp
	return nil
}

func (m *memFriendshipRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friendships, id)
	return nil
}

func (m *memFriendshipRepo) ListIncoming(_ context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Friendship
	for _, f := range m.friendships {
		if f.ReceiverID == userID && f.Status == domain.FriendshipPending {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memFriendshipRepo) ListOutgoing(_ context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Friendship
	for _, f := range m.friendships {
		if f.SenderID == userID && f.Status == domain.FriendshipPending {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *memFriendshipRepo) ListFriends(_ context.Context, userID uuid.UUID) ([]domain.Friend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Friend
	for _, f := range m.friendships {
		if f.Status != domain.FriendshipAccepted {
			continue
		}
		var otherID uuid.UUID
		switch userID {
		case f.SenderID:
			otherID = f.ReceiverID
		case f.ReceiverID:
			otherID = f.SenderID
		default:
			continue
		}
		fr := domain.Friend{UserID: otherID}
		if f.RespondedAt != nil {
			fr.FriendsAt = *f.RespondedAt
		}
		if m.users != nil {
			if u := m.users.users[otherID]; u != nil {
				fr.Username = u.Username
				fr.DisplayName = u.DisplayName
			}
		}
		out = append(out, fr)
	}
	return out, nil
}

func (m *memFriendshipRepo) AreFriends(_ context.Context, userA, userB uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.friendships {
		if f.Status != domain.FriendshipAccepted {
			continue
		}
		if (f.SenderID == userA && f.ReceiverID == userB) || (f.SenderID == userB && f.ReceiverID == userA) {
			return true, nil
		}
	}
	return false, nil
}

type memConversationRepo struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*domain.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{convs: make(map[uuid.UUID]*domain.Conversation)}
}

func (m *memConversationRepo) Create(_ context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *conv
	m.convs[conv.ID] = &cp
	return nil
}

func (m *memConversationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memConversationRepo) GetByUsers(_ context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.convs {
		if c.User1ID == user1ID && c.User2ID == user2ID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memConversationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Conversation
	for _, c := range m.convs {
		if c.User1ID == userID || c.User2ID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memConversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, id)
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (m *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == id {
			cp := m.messages[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memMessageRepo) ListPage(_ context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			all = append(all, msg)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memMessageRepo) CountByConversation(_ context.Context, conversationID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

type memPostRepo struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]*domain.Post
	likes    map[uuid.UUID]map[uuid.UUID]bool
	comments []domain.Comment
	friends  *memFriendshipRepo
}

func newMemPostRepo(friends *memFriendshipRepo) *memPostRepo {
	return &memPostRepo{
		posts:   make(map[uuid.UUID]*domain.Post),
		likes:   make(map[uuid.UUID]map[uuid.UUID]bool),
		friends: friends,
	}
}

func (m *memPostRepo) Create(_ context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *memPostRepo) GetByID(_ context.Context, id, viewerID uuid.UUID) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.LikeCount = len(m.likes[id])
	cp.LikedByViewer = m.likes[id][viewerID]
	for _, c := range m.comments {
		if c.PostID == id {
			cp.CommentCount++
		}
	}
	return &cp, nil
}

func (m *memPostRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	delete(m.likes, id)
	return nil
}

func (m *memPostRepo) feedAuthors(ctx context.Context, viewerID uuid.UUID) map[uuid.UUID]bool {
	authors := map[uuid.UUID]bool{viewerID: true}
	if m.friends != nil {
		friends, _ := m.friends.ListFriends(ctx, viewerID)
		for _, f := range friends {
			authors[f.UserID] = true
		}
	}
	return authors
}

func (m *memPostRepo) ListFeed(ctx context.Context, viewerID uuid.UUID, offset, limit int) ([]domain.Post, error) {
	authors := m.feedAuthors(ctx, viewerID)

	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Post
	for _, p := range m.posts {
		if authors[p.AuthorID] {
			cp := *p
			cp.LikeCount = len(m.likes[p.ID])
			cp.LikedByViewer = m.likes[p.ID][viewerID]
			all = append(all, cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memPostRepo) CountFeed(ctx context.Context, viewerID uuid.UUID) (int, error) {
	authors := m.feedAuthors(ctx, viewerID)

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.posts {
		if authors[p.AuthorID] {
			count++
		}
	}
	return count, nil
}

func (m *memPostRepo) Like(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[postID] == nil {
		m.likes[postID] = make(map[uuid.UUID]bool)
	}
	if m.likes[postID][userID] {
		return false, nil
	}
	m.likes[postID][userID] = true
	return true, nil
}

func (m *memPostRepo) Unlike(_ context.Context, postID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes[postID], userID)
	return nil
}

func (m *memPostRepo) AddComment(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memPostRepo) ListComments(_ context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	requests []domain.Friendship
	accepts  []domain.Friendship
	messages []domain.Message
}

func (n *recordingNotifier) NotifyFriendRequest(req *domain.Friendship) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, *req)
}

func (n *recordingNotifier) NotifyFriendRequestAccepted(f *domain.Friendship) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepts = append(n.accepts, *f)
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, *msg)
}
