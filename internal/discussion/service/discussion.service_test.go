package service

import (
	"context"
	"testing"
	"wikiforum/internal/discussion/model"
	"wikiforum/internal/discussion/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *DiscussionService {
	return NewDiscussionService(repository.NewCommentMemoryRepository(), repository.NewConversationMemoryRepository())
}

var alice = &model.Author{ID: 1, Name: "alice"}

func TestCanonicalPair(t *testing.T) {
	pairs := [][2]string{{"alice", "bob"}, {"bob", "alice"}, {"Zed", "amy"}, {"same", "same"}}
	for _, p := range pairs {
		a1, a2 := model.CanonicalPair(p[0], p[1])
		b1, b2 := model.CanonicalPair(p[1], p[0])
		assert.Equal(t, a1, b1)
		assert.Equal(t, a2, b2)
		assert.LessOrEqual(t, a1, a2)
	}
}

func TestOpenConversation_OrderIndependent(t *testing.T) {
	s := newService()
	ctx := context.Background()

	ab, err := s.OpenConversation(ctx, "/user/bob", "alice", "bob")
	require.NoError(t, err)
	ba, err := s.OpenConversation(ctx, "/user/bob", "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, "alice", ba.User1)
	assert.Equal(t, "bob", ba.User2)

	_, err = s.OpenConversation(ctx, "/user/bob", "alice", "")
	assert.ErrorIs(t, err, ErrMissingPartner)
}

func TestSayAndConversation(t *testing.T) {
	s := newService()
	ctx := context.Background()

	c, err := s.OpenConversation(ctx, "/p", "bob", "alice")
	require.NoError(t, err)
	_, err = s.Say(ctx, c, "hi bob", alice)
	require.NoError(t, err)
	_, err = s.Say(ctx, c, "   ", alice)
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = s.Say(ctx, c, "anon", nil)
	assert.ErrorIs(t, err, ErrMissingAuthor)

	got, msgs, err := s.Conversation(ctx, "/p", "1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi bob", msgs[0].Content)
	assert.Equal(t, "alice", msgs[0].AuthorName)

	_, _, err = s.Conversation(ctx, "/p", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, _, err = s.Conversation(ctx, "/other", "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddReply_CommentFiveUnderFoo(t *testing.T) {
	s := newService()
	ctx := context.Background()

	var five *model.Comment
	for i := 0; i < 5; i++ {
		c, err := s.AddComment(ctx, "/foo", "comment", alice)
		require.NoError(t, err)
		five = c
	}
	require.Equal(t, int64(5), five.ID)

	reply, err := s.AddReply(ctx, "/foo", 5, "a reply", alice)
	require.NoError(t, err)

	replies, err := s.Comments.SubCommentsByPathComment(ctx, "/foo", 5)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)
	assert.Equal(t, "a reply", replies[0].Content)

	_, err = s.AddReply(ctx, "/bar", 5, "wrong path", alice)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.AddReply(ctx, "/foo", 5, "", alice)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestThread(t *testing.T) {
	s := newService()
	ctx := context.Background()

	first, err := s.AddComment(ctx, "/foo", "first", alice)
	require.NoError(t, err)
	second, err := s.AddComment(ctx, "/foo", "second", nil)
	require.NoError(t, err)
	_, err = s.AddReply(ctx, "/foo", second.ID, "r1", alice)
	require.NoError(t, err)
	_, err = s.AddReply(ctx, "/foo", first.ID, "r2", alice)
	require.NoError(t, err)
	_, err = s.AddReply(ctx, "/foo", second.ID, "r3", alice)
	require.NoError(t, err)

	thread, err := s.Thread(ctx, "/foo")
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Comment.Content)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, "r2", thread[0].Replies[0].Content)
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, "r1", thread[1].Replies[0].Content)
	assert.Equal(t, "r3", thread[1].Replies[1].Content)
	assert.Equal(t, 2, thread[1].Replies[0].Level())
	assert.Equal(t, 1, thread[1].Comment.Level())

	c, replies, err := s.Comment(ctx, "/foo", "2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, c.ID)
	assert.Len(t, replies, 2)

	_, err = s.AddComment(ctx, "/foo", "", alice)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestRecentComments(t *testing.T) {
	s := newService()
	ctx := context.Background()
	for i := 0; i < RecentLimit+3; i++ {
		_, err := s.AddComment(ctx, "/p", "c", alice)
		require.NoError(t, err)
	}
	recent, err := s.RecentComments(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, int64(RecentLimit+3), recent[0].ID)
}
