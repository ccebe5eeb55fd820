package repository

import (
	"context"
	"database/sql"
	"errors"
	"wikiforum/internal/discussion/model"
	"wikiforum/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

// CommentRepository stores append-only comments and their replies, scoped by page path.
type CommentRepository interface {
	CreateComment(ctx context.Context, path, content string, author *model.Author) (*model.Comment, error)
	CommentByID(ctx context.Context, id int64, path string) (*model.Comment, error)
	// CommentsByPath returns the top-level comments at path, oldest first.
	CommentsByPath(ctx context.Context, path string) ([]model.Comment, error)
	// RecentComments returns the newest comments across all paths.
	RecentComments(ctx context.Context, limit int) ([]model.Comment, error)

	CreateSubComment(ctx context.Context, path string, parentID int64, content string, author *model.Author) (*model.SubComment, error)
	// SubCommentsByPathComment returns the replies to one comment, oldest first.
	SubCommentsByPathComment(ctx context.Context, path string, parentID int64) ([]model.SubComment, error)
	// SubCommentsByPath returns every reply at path, oldest first.
	SubCommentsByPath(ctx context.Context, path string) ([]model.SubComment, error)
}

const commentColumns = `c.id, c.path, c.content, COALESCE(c.author_id, 0), COALESCE(u.name, ''),
	c.up_votes, c.down_votes, c.created_at, c.last_modified`

type CommentPostgresRepository struct {
	DB *sql.DB
}

func NewCommentPostgresRepository(db *sql.DB) *CommentPostgresRepository {
	return &CommentPostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner, c *model.Comment, extra ...any) error {
	dest := append([]any{&c.ID, &c.Path, &c.Content, &c.AuthorID, &c.AuthorName,
		&c.UpVotes, &c.DownVotes, &c.CreatedAt, &c.LastModified}, extra...)
	return row.Scan(dest...)
}

func authorID(a *model.Author) sql.NullInt64 {
	if a == nil || a.ID == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: a.ID, Valid: true}
}

func applyAuthor(c *model.Comment, a *model.Author) {
	if a != nil {
		c.AuthorID = a.ID
		c.AuthorName = a.Name
	}
}

func (r *CommentPostgresRepository) CreateComment(ctx context.Context, path, content string, author *model.Author) (*model.Comment, error) {
	c := &model.Comment{Path: path, Content: content}
	applyAuthor(c, author)
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO comments (path, content, author_id, created_at, last_modified) VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, up_votes, down_votes, created_at, last_modified`,
		path, content, authorID(author),
	).Scan(&c.ID, &c.UpVotes, &c.DownVotes, &c.CreatedAt, &c.LastModified)
	if err != nil {
		logger.Sugar.Errorf("Failed to create comment on %s: %v", path, err)
		return nil, err
	}
	return c, nil
}

func (r *CommentPostgresRepository) CommentByID(ctx context.Context, id int64, path string) (*model.Comment, error) {
	var c model.Comment
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments c LEFT JOIN users u ON u.id = c.author_id WHERE c.id = $1 AND c.path = $2",
		id, path)
	if err := scanComment(row, &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Sugar.Errorf("Failed to get comment %d at %s: %v", id, path, err)
		return nil, err
	}
	return &c, nil
}

func (r *CommentPostgresRepository) CommentsByPath(ctx context.Context, path string) ([]model.Comment, error) {
	return r.queryComments(ctx,
		"SELECT "+commentColumns+" FROM comments c LEFT JOIN users u ON u.id = c.author_id WHERE c.path = $1 ORDER BY c.created_at, c.id",
		path)
}

func (r *CommentPostgresRepository) RecentComments(ctx context.Context, limit int) ([]model.Comment, error) {
	return r.queryComments(ctx,
		"SELECT "+commentColumns+" FROM comments c LEFT JOIN users u ON u.id = c.author_id ORDER BY c.created_at DESC, c.id DESC LIMIT $1",
		limit)
}

func (r *CommentPostgresRepository) queryComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to query comments: %v", err)
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := scanComment(rows, &c); err != nil {
			logger.Sugar.Errorf("Failed to scan comment row: %v", err)
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentPostgresRepository) CreateSubComment(ctx context.Context, path string, parentID int64, content string, author *model.Author) (*model.SubComment, error) {
	s := &model.SubComment{Comment: model.Comment{Path: path, Content: content}, ParentCommentID: parentID}
	applyAuthor(&s.Comment, author)
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO sub_comments (path, parent_comment_id, content, author_id, created_at, last_modified)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, up_votes, down_votes, created_at, last_modified`,
		path, parentID, content, authorID(author),
	).Scan(&s.ID, &s.UpVotes, &s.DownVotes, &s.CreatedAt, &s.LastModified)
	if err != nil {
		logger.Sugar.Errorf("Failed to create reply to comment %d on %s: %v", parentID, path, err)
		return nil, err
	}
	return s, nil
}

func (r *CommentPostgresRepository) SubCommentsByPathComment(ctx context.Context, path string, parentID int64) ([]model.SubComment, error) {
	return r.querySubComments(ctx,
		"SELECT "+commentColumns+", c.parent_comment_id FROM sub_comments c LEFT JOIN users u ON u.id = c.author_id WHERE c.path = $1 AND c.parent_comment_id = $2 ORDER BY c.created_at, c.id",
		path, parentID)
}

func (r *CommentPostgresRepository) SubCommentsByPath(ctx context.Context, path string) ([]model.SubComment, error) {
	return r.querySubComments(ctx,
		"SELECT "+commentColumns+", c.parent_comment_id FROM sub_comments c LEFT JOIN users u ON u.id = c.author_id WHERE c.path = $1 ORDER BY c.created_at, c.id",
		path)
}

func (r *CommentPostgresRepository) querySubComments(ctx context.Context, query string, args ...any) ([]model.SubComment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to query replies: %v", err)
		return nil, err
	}
	defer rows.Close()

	var replies []model.SubComment
	for rows.Next() {
		var s model.SubComment
		if err := scanComment(rows, &s.Comment, &s.ParentCommentID); err != nil {
			logger.Sugar.Errorf("Failed to scan reply row: %v", err)
			return nil, err
		}
		replies = append(replies, s)
	}
	return replies, rows.Err()
}
