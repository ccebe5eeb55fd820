package repository

import (
	"context"
	"database/sql"
	"errors"
	"wikiforum/internal/discussion/model"
	"wikiforum/pkg/logger"
)

type ConversationRepository interface {
	// GetOrCreate returns the conversation for the already sorted pair at path, creating it once.
	GetOrCreate(ctx context.Context, path, user1, user2 string) (*model.Conversation, error)
	ConversationByID(ctx context.Context, id int64, path string) (*model.Conversation, error)
	CreateDialogue(ctx context.Context, path string, conversationID int64, content string, author model.Author) (*model.Dialogue, error)
	// DialoguesByPathConversation returns the messages of one conversation, oldest first.
	DialoguesByPathConversation(ctx context.Context, path string, conversationID int64) ([]model.Dialogue, error)
}

type ConversationPostgresRepository struct {
	DB *sql.DB
}

func NewConversationPostgresRepository(db *sql.DB) *ConversationPostgresRepository {
	return &ConversationPostgresRepository{DB: db}
}

// GetOrCreate relies on UNIQUE (path, user1, user2); the no-op update makes
// RETURNING yield the existing row on conflict.
func (r *ConversationPostgresRepository) GetOrCreate(ctx context.Context, path, user1, user2 string) (*model.Conversation, error) {
	c := &model.Conversation{Path: path, User1: user1, User2: user2}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO conversations (path, user1, user2, created_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (path, user1, user2) DO UPDATE SET path = EXCLUDED.path
		RETURNING id, created_at`,
		path, user1, user2,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to resolve conversation %s/%s on %s: %v", user1, user2, path, err)
		return nil, err
	}
	return c, nil
}

func (r *ConversationPostgresRepository) ConversationByID(ctx context.Context, id int64, path string) (*model.Conversation, error) {
	var c model.Conversation
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, path, user1, user2, created_at FROM conversations WHERE id = $1 AND path = $2",
		id, path,
	).Scan(&c.ID, &c.Path, &c.User1, &c.User2, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get conversation %d: %v", id, err)
		return nil, err
	}
	return &c, nil
}

func (r *ConversationPostgresRepository) CreateDialogue(ctx context.Context, path string, conversationID int64, content string, author model.Author) (*model.Dialogue, error) {
	d := &model.Dialogue{
		Path:           path,
		ConversationID: conversationID,
		Content:        content,
		AuthorID:       author.ID,
		AuthorName:     author.Name,
	}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO dialogues (path, conversation_id, content, author_id, created_at, last_modified)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, last_modified`,
		path, conversationID, content, author.ID,
	).Scan(&d.ID, &d.CreatedAt, &d.LastModified)
	if err != nil {
		logger.Sugar.Errorf("Failed to add message to conversation %d: %v", conversationID, err)
		return nil, err
	}
	return d, nil
}

func (r *ConversationPostgresRepository) DialoguesByPathConversation(ctx context.Context, path string, conversationID int64) ([]model.Dialogue, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT d.id, d.path, d.conversation_id, d.content, d.author_id, COALESCE(u.name, ''), d.created_at, d.last_modified
		FROM dialogues d LEFT JOIN users u ON u.id = d.author_id
		WHERE d.path = $1 AND d.conversation_id = $2 ORDER BY d.created_at, d.id`,
		path, conversationID)
	if err != nil {
		logger.Sugar.Errorf("Failed to query conversation %d: %v", conversationID, err)
		return nil, err
	}
	defer rows.Close()

	var dialogues []model.Dialogue
	for rows.Next() {
		var d model.Dialogue
		if err := rows.Scan(&d.ID, &d.Path, &d.ConversationID, &d.Content, &d.AuthorID, &d.AuthorName, &d.CreatedAt, &d.LastModified); err != nil {
			logger.Sugar.Errorf("Failed to scan dialogue row: %v", err)
			return nil, err
		}
		dialogues = append(dialogues, d)
	}
	return dialogues, rows.Err()
}
