package repository

import (
	"context"
	"database/sql"
	"errors"
	"wikiforum/internal/wiki/model"
	"wikiforum/pkg/logger"
)

var ErrNotFound = errors.New("page not found")

// PageRepository stores append-only page versions scoped by path.
type PageRepository interface {
	Create(ctx context.Context, path, content string) (*model.Page, error)
	// ByPath returns up to limit versions at path, newest first. limit <= 0 means all.
	ByPath(ctx context.Context, path string, limit int) ([]model.Page, error)
	ByID(ctx context.Context, id int64, path string) (*model.Page, error)
	// Paths lists every path with at least one version, sorted.
	Paths(ctx context.Context) ([]string, error)
}

type PagePostgresRepository struct {
	DB *sql.DB
}

func NewPagePostgresRepository(db *sql.DB) *PagePostgresRepository {
	return &PagePostgresRepository{DB: db}
}

func (r *PagePostgresRepository) Create(ctx context.Context, path, content string) (*model.Page, error) {
	p := &model.Page{Path: path, Content: content}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO pages (path, content, created_at, last_modified) VALUES ($1, $2, NOW(), NOW())
		RETURNING id, created_at, last_modified`,
		path, content,
	).Scan(&p.ID, &p.CreatedAt, &p.LastModified)
	if err != nil {
		logger.Sugar.Errorf("Failed to create page version for %s: %v", path, err)
		return nil, err
	}
	return p, nil
}

func (r *PagePostgresRepository) ByPath(ctx context.Context, path string, limit int) ([]model.Page, error) {
	query := `SELECT id, path, content, created_at, last_modified FROM pages
		WHERE path = $1 ORDER BY created_at DESC, id DESC`
	args := []any{path}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to query pages for %s: %v", path, err)
		return nil, err
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.Path, &p.Content, &p.CreatedAt, &p.LastModified); err != nil {
			logger.Sugar.Errorf("Failed to scan page row: %v", err)
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *PagePostgresRepository) ByID(ctx context.Context, id int64, path string) (*model.Page, error) {
	var p model.Page
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, path, content, created_at, last_modified FROM pages WHERE id = $1 AND path = $2",
		id, path,
	).Scan(&p.ID, &p.Path, &p.Content, &p.CreatedAt, &p.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get page %d at %s: %v", id, path, err)
		return nil, err
	}
	return &p, nil
}

func (r *PagePostgresRepository) Paths(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT DISTINCT path FROM pages ORDER BY path")
	if err != nil {
		logger.Sugar.Errorf("Failed to list page paths: %v", err)
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
