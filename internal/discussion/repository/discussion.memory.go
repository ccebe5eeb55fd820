package repository

import (
	"context"
	"sync"
	"time"
	"wikiforum/internal/discussion/model"
)

// CommentMemoryRepository keeps comments in creation order, which is also id order.
type CommentMemoryRepository struct {
	mu       sync.RWMutex
	comments []model.Comment
	replies  []model.SubComment
	nextID   int64
}

func NewCommentMemoryRepository() *CommentMemoryRepository {
	return &CommentMemoryRepository{nextID: 1}
}

func (r *CommentMemoryRepository) CreateComment(_ context.Context, path, content string, author *model.Author) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c := model.Comment{ID: r.nextID, Path: path, Content: content, CreatedAt: now, LastModified: now}
	applyAuthor(&c, author)
	r.nextID++
	r.comments = append(r.comments, c)
	return &c, nil
}

func (r *CommentMemoryRepository) CommentByID(_ context.Context, id int64, path string) (*model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.comments {
		if c.ID == id && c.Path == path {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *CommentMemoryRepository) CommentsByPath(_ context.Context, path string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Comment
	for _, c := range r.comments {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CommentMemoryRepository) RecentComments(_ context.Context, limit int) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Comment
	for i := len(r.comments) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.comments[i])
	}
	return out, nil
}

func (r *CommentMemoryRepository) CreateSubComment(_ context.Context, path string, parentID int64, content string, author *model.Author) (*model.SubComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	s := model.SubComment{
		Comment:         model.Comment{ID: r.nextID, Path: path, Content: content, CreatedAt: now, LastModified: now},
		ParentCommentID: parentID,
	}
	applyAuthor(&s.Comment, author)
	r.nextID++
	r.replies = append(r.replies, s)
	return &s, nil
}

func (r *CommentMemoryRepository) SubCommentsByPathComment(_ context.Context, path string, parentID int64) ([]model.SubComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.SubComment
	for _, s := range r.replies {
		if s.Path == path && s.ParentCommentID == parentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *CommentMemoryRepository) SubCommentsByPath(_ context.Context, path string) ([]model.SubComment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.SubComment
	for _, s := range r.replies {
		if s.Path == path {
			out = append(out, s)
		}
	}
	return out, nil
}

type conversationKey struct {
	path, user1, user2 string
}

type ConversationMemoryRepository struct {
	mu            sync.RWMutex
	conversations map[int64]model.Conversation
	byKey         map[conversationKey]int64
	dialogues     []model.Dialogue
	nextID        int64
}

func NewConversationMemoryRepository() *ConversationMemoryRepository {
	return &ConversationMemoryRepository{
		conversations: make(map[int64]model.Conversation),
		byKey:         make(map[conversationKey]int64),
		nextID:        1,
	}
}

func (r *ConversationMemoryRepository) GetOrCreate(_ context.Context, path, user1, user2 string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := conversationKey{path, user1, user2}
	if id, ok := r.byKey[key]; ok {
		c := r.conversations[id]
		return &c, nil
	}
	c := model.Conversation{ID: r.nextID, Path: path, User1: user1, User2: user2, CreatedAt: time.Now()}
	r.nextID++
	r.conversations[c.ID] = c
	r.byKey[key] = c.ID
	return &c, nil
}

func (r *ConversationMemoryRepository) ConversationByID(_ context.Context, id int64, path string) (*model.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[id]
	if !ok || c.Path != path {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *ConversationMemoryRepository) CreateDialogue(_ context.Context, path string, conversationID int64, content string, author model.Author) (*model.Dialogue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	d := model.Dialogue{
		ID:             r.nextID,
		Path:           path,
		ConversationID: conversationID,
		Content:        content,
		AuthorID:       author.ID,
		AuthorName:     author.Name,
		CreatedAt:      now,
		LastModified:   now,
	}
	r.nextID++
	r.dialogues = append(r.dialogues, d)
	return &d, nil
}

func (r *ConversationMemoryRepository) DialoguesByPathConversation(_ context.Context, path string, conversationID int64) ([]model.Dialogue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Dialogue
	for _, d := range r.dialogues {
		if d.Path == path && d.ConversationID == conversationID {
			out = append(out, d)
		}
	}
	return out, nil
}
