package model

import (
	"time"
	usermodel "wikiforum/internal/user/model"
)

// Author is the non-owning reference a comment or dialogue keeps to its writer.
type Author struct {
	ID   int64
	Name string
}

// AuthorOf returns nil for a nil user.
func AuthorOf(u *usermodel.User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Name: u.Name}
}

type Comment struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Content      string    `json:"content"`
	AuthorID     int64     `json:"author_id,omitempty"`
	AuthorName   string    `json:"author,omitempty"`
	UpVotes      int       `json:"up_votes"`
	DownVotes    int       `json:"down_votes"`
	CreatedAt    time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// Level is the nesting depth used when rendering a thread.
func (c Comment) Level() int { return 1 }

// SubComment is a reply to a top-level comment on the same path.
type SubComment struct {
	Comment
	ParentCommentID int64 `json:"parent_comment_id"`
}

func (s SubComment) Level() int { return 2 }

// ThreadEntry is a top-level comment followed by its replies, oldest first.
type ThreadEntry struct {
	Comment Comment      `json:"comment"`
	Replies []SubComment `json:"replies"`
}

// Conversation is a private thread between two participants stored in sorted order.
type Conversation struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	User1     string    `json:"user1"`
	User2     string    `json:"user2"`
	CreatedAt time.Time `json:"created"`
}

// Dialogue is one message in a conversation.
type Dialogue struct {
	ID             int64     `json:"id"`
	Path           string    `json:"path"`
	ConversationID int64     `json:"conversation_id"`
	Content        string    `json:"content"`
	AuthorID       int64     `json:"author_id"`
	AuthorName     string    `json:"author"`
	CreatedAt      time.Time `json:"created"`
	LastModified   time.Time `json:"last_modified"`
}

// CanonicalPair orders two participants so (u, v) and (v, u) name the same conversation.
func CanonicalPair(u, v string) (string, string) {
	if v < u {
		return v, u
	}
	return u, v
}
