package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Samuliej/mobilechat/internal/domain"
)

type feedFixture struct {
	feed        *FeedService
	friendships *FriendshipService
	users       *memUserRepo
	posts       *memPostRepo
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	users := newMemUserRepo()
	friendRepo := newMemFriendshipRepo(users)
	posts := newMemPostRepo(friendRepo)

	return &feedFixture{
		feed:        NewFeedService(posts),
		friendships: NewFriendshipService(friendRepo, users),
		users:       users,
		posts:       posts,
	}
}

func (f *feedFixture) makeFriends(t *testing.T, a uuid.UUID, bUsername string, b uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	req, err := f.friendships.SendRequest(ctx, a, bUsername)
	require.NoError(t, err)
	_, err = f.friendships.AcceptRequest(ctx, b, req.ID)
	require.NoError(t, err)
}

func TestCreatePost(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")

	post, err := f.feed.CreatePost(ctx, alice.ID, "first!", nil)
	require.NoError(t, err)
	require.Equal(t, alice.ID, post.AuthorID)
	require.Equal(t, "first!", post.Text)
	require.Zero(t, post.LikeCount)
	require.False(t, post.LikedByViewer)

	_, err = f.feed.CreatePost(ctx, alice.ID, "", nil)
	require.ErrorIs(t, err, ErrEmptyPost)
}

func TestLikePost_Idempotent(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")
	bob := addUser(t, f.users, "bob")

	post, err := f.feed.CreatePost(ctx, alice.ID, "like me", nil)
	require.NoError(t, err)

	liked, err := f.feed.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, liked.LikeCount)
	require.True(t, liked.LikedByViewer)

	// A second like from the same user does not double count.
	liked, err = f.feed.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, liked.LikeCount)

	liked, err = f.feed.LikePost(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 2, liked.LikeCount)

	unliked, err := f.feed.UnlikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, unliked.LikeCount)
	require.False(t, unliked.LikedByViewer)

	// Unliking when not liked is a no-op.
	unliked, err = f.feed.UnlikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, 1, unliked.LikeCount)
}

func TestDeletePost_AuthorOnly(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")
	bob := addUser(t, f.users, "bob")

	post, err := f.feed.CreatePost(ctx, alice.ID, "mine", nil)
	require.NoError(t, err)

	err = f.feed.DeletePost(ctx, bob.ID, post.ID)
	require.ErrorIs(t, err, ErrNotPostOwner)

	require.NoError(t, f.feed.DeletePost(ctx, alice.ID, post.ID))

	_, err = f.feed.GetPost(ctx, post.ID, alice.ID)
	require.ErrorIs(t, err, ErrPostNotFound)

	err = f.feed.DeletePost(ctx, alice.ID, post.ID)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestListFeed_FriendsOnly(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")
	bob := addUser(t, f.users, "bob")
	carol := addUser(t, f.users, "carol")
	f.makeFriends(t, alice.ID, "bob", bob.ID)

	_, err := f.feed.CreatePost(ctx, alice.ID, "from alice", nil)
	require.NoError(t, err)
	_, err = f.feed.CreatePost(ctx, bob.ID, "from bob", nil)
	require.NoError(t, err)
	_, err = f.feed.CreatePost(ctx, carol.ID, "from carol", nil)
	require.NoError(t, err)

	// Alice sees her own and bob's posts; carol is not a friend.
	resp, err := f.feed.ListFeed(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Posts, 2)
	for _, p := range resp.Posts {
		require.NotEqual(t, carol.ID, p.AuthorID)
	}

	// Carol sees only her own post.
	resp, err = f.feed.ListFeed(ctx, carol.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	require.Equal(t, carol.ID, resp.Posts[0].AuthorID)
}

func TestListFeed_Pagination(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")
	for i := 0; i < 5; i++ {
		_, err := f.feed.CreatePost(ctx, alice.ID, fmt.Sprintf("post %d", i), nil)
		require.NoError(t, err)
	}

	resp, err := f.feed.ListFeed(ctx, alice.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, resp.Posts, 2)
	require.True(t, resp.HasNextPage)

	resp, err = f.feed.ListFeed(ctx, alice.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	require.False(t, resp.HasNextPage)

	resp, err = f.feed.ListFeed(ctx, alice.ID, 1, 5)
	require.NoError(t, err)
	require.Len(t, resp.Posts, 5)
	require.False(t, resp.HasNextPage)
}

func TestComments(t *testing.T) {
	f := newFeedFixture(t)
	ctx := context.Background()

	alice := addUser(t, f.users, "alice")
	bob := addUser(t, f.users, "bob")

	post, err := f.feed.CreatePost(ctx, alice.ID, "discuss", nil)
	require.NoError(t, err)

	_, err = f.feed.AddComment(ctx, bob.ID, post.ID, "")
	require.ErrorIs(t, err, ErrEmptyComment)

	_, err = f.feed.AddComment(ctx, bob.ID, uuid.New(), "nice")
	require.ErrorIs(t, err, ErrPostNotFound)

	first, err := f.feed.AddComment(ctx, bob.ID, post.ID, "nice")
	require.NoError(t, err)
	second, err := f.feed.AddComment(ctx, alice.ID, post.ID, "thanks")
	require.NoError(t, err)

	comments, err := f.feed.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, commentIDs(comments))

	got, err := f.feed.GetPost(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.CommentCount)
}

func commentIDs(comments []domain.Comment) []uuid.UUID {
	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids
}
