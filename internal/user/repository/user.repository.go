package repository

import (
	"context"
	"database/sql"
	"errors"
	"wikiforum/internal/user/model"
	"wikiforum/pkg/logger"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// uniqueViolation is the postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

type UserRepository interface {
	Create(ctx context.Context, name, passwordHash, email string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type UserPostgresRepository struct {
	DB *sql.DB
}

func NewUserPostgresRepository(db *sql.DB) *UserPostgresRepository {
	return &UserPostgresRepository{DB: db}
}

func (r *UserPostgresRepository) Create(ctx context.Context, name, passwordHash, email string) (*model.User, error) {
	u := &model.User{Name: name, PasswordHash: passwordHash, Email: email}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (name, pw_hash, email, created_at) VALUES ($1, $2, NULLIF($3, ''), NOW())
		RETURNING id, created_at`,
		name, passwordHash, email,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		logger.Sugar.Errorf("Failed to create user %s: %v", name, err)
		return nil, err
	}
	return u, nil
}

func (r *UserPostgresRepository) GetByName(ctx context.Context, name string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, name, pw_hash, COALESCE(email, ''), created_at FROM users WHERE name = $1", name)
	return scanUser(row, "name "+name)
}

func (r *UserPostgresRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, name, pw_hash, COALESCE(email, ''), created_at FROM users WHERE id = $1", id)
	return scanUser(row, "id")
}

func scanUser(row *sql.Row, lookup string) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Sugar.Errorf("Failed to get user by %s: %v", lookup, err)
		return nil, err
	}
	return &u, nil
}
