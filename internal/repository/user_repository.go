package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

type UserRepo struct{ q database.Querier }

func NewUserRepo(q database.Querier) *UserRepo { return &UserRepo{q: q} }

// NormalizeUsername trims and lower-cases a login name.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Create inserts a user with an already hashed password and returns its
// ID.  A taken username comes back as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (uint64, error) {
	res, err := r.q.Write(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?,?)",
		NormalizeUsername(username), passwordHash)
	if err != nil {
		return 0, err
	}
	return uint64(res.LastInsertID), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	rows, err := r.q.Read(ctx,
		"SELECT id,username,password_hash,created_at FROM users WHERE username=? LIMIT 1",
		NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return scanUser(rows[0]), nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	rows, err := r.q.Read(ctx,
		"SELECT id,username,password_hash,created_at FROM users WHERE id=? LIMIT 1", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return scanUser(rows[0]), nil
}

func scanUser(row database.Row) *model.User {
	return &model.User{
		ID:           row.Uint64("id"),
		Username:     row.String("username"),
		PasswordHash: row.String("password_hash"),
		CreatedAt:    row.Time("created_at"),
	}
}
