package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"wikiforum/internal/discussion/model"
	"wikiforum/internal/discussion/repository"
)

// RecentLimit is how many comments the sidebar shows.
const RecentLimit = 10

var (
	ErrEmptyContent   = errors.New("content is empty")
	ErrMissingAuthor  = errors.New("author is required")
	ErrMissingPartner = errors.New("both participants are required")
)

type DiscussionService struct {
	Comments      repository.CommentRepository
	Conversations repository.ConversationRepository
}

func NewDiscussionService(comments repository.CommentRepository, conversations repository.ConversationRepository) *DiscussionService {
	return &DiscussionService{Comments: comments, Conversations: conversations}
}

// ParseID turns a raw query id into a record id. Non-numeric input is not found.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, repository.ErrNotFound
	}
	return id, nil
}

// Thread lists the comments at path in creation order, each with its replies.
func (s *DiscussionService) Thread(ctx context.Context, path string) ([]model.ThreadEntry, error) {
	comments, err := s.Comments.CommentsByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	replies, err := s.Comments.SubCommentsByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	byParent := make(map[int64][]model.SubComment)
	for _, r := range replies {
		byParent[r.ParentCommentID] = append(byParent[r.ParentCommentID], r)
	}
	thread := make([]model.ThreadEntry, 0, len(comments))
	for _, c := range comments {
		thread = append(thread, model.ThreadEntry{Comment: c, Replies: byParent[c.ID]})
	}
	return thread, nil
}

func (s *DiscussionService) RecentComments(ctx context.Context) ([]model.Comment, error) {
	return s.Comments.RecentComments(ctx, RecentLimit)
}

func (s *DiscussionService) AddComment(ctx context.Context, path, content string, author *model.Author) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return s.Comments.CreateComment(ctx, path, content, author)
}

// Comment returns the comment named by the raw id together with its replies.
func (s *DiscussionService) Comment(ctx context.Context, path, rawID string) (*model.Comment, []model.SubComment, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.Comments.CommentByID(ctx, id, path)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.Comments.SubCommentsByPathComment(ctx, path, id)
	if err != nil {
		return nil, nil, err
	}
	return c, replies, nil
}

// AddReply appends a sub-comment; the parent must exist at path.
func (s *DiscussionService) AddReply(ctx context.Context, path string, parentID int64, content string, author *model.Author) (*model.SubComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.Comments.CommentByID(ctx, parentID, path); err != nil {
		return nil, err
	}
	return s.Comments.CreateSubComment(ctx, path, parentID, content, author)
}

// OpenConversation resolves the conversation between u and v at path regardless of argument order.
func (s *DiscussionService) OpenConversation(ctx context.Context, path, u, v string) (*model.Conversation, error) {
	if u == "" || v == "" {
		return nil, ErrMissingPartner
	}
	user1, user2 := model.CanonicalPair(u, v)
	return s.Conversations.GetOrCreate(ctx, path, user1, user2)
}

// Conversation loads a conversation by raw id with its messages.
func (s *DiscussionService) Conversation(ctx context.Context, path, rawID string) (*model.Conversation, []model.Dialogue, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.Conversations.ConversationByID(ctx, id, path)
	if err != nil {
		return nil, nil, err
	}
	dialogues, err := s.Conversations.DialoguesByPathConversation(ctx, path, id)
	if err != nil {
		return nil, nil, err
	}
	return c, dialogues, nil
}

// Say appends a message from author to the conversation.
func (s *DiscussionService) Say(ctx context.Context, c *model.Conversation, content string, author *model.Author) (*model.Dialogue, error) {
	if author == nil {
		return nil, ErrMissingAuthor
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return s.Conversations.CreateDialogue(ctx, c.Path, c.ID, content, *author)
}
