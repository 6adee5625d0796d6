package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// RoleRepo encapsulates all queries on the roles table.  It is bound to a
// database.Querier, which is either the DAL itself or an open
// transaction, so the casting engine can compose several repositories in
// one transaction.
type RoleRepo struct {
	q database.Querier
}

// NewRoleRepo constructs a RoleRepo over q.
func NewRoleRepo(q database.Querier) *RoleRepo { return &RoleRepo{q: q} }

// Create inserts a role.  A second role with the same (owner, name)
// violates uq_roles_user_name and comes back as ErrDuplicate; there is no
// separate existence check to race against.
func (r *RoleRepo) Create(ctx context.Context, ownerID uint64, name string) (*model.Role, error) {
	res, err := r.q.Write(ctx, "INSERT INTO roles (user_id, role_name) VALUES (?, ?)", ownerID, name)
	if err != nil {
		return nil, err
	}
	return &model.Role{ID: uint64(res.LastInsertID), OwnerID: ownerID, Name: name}, nil
}

// GetByNameAndOwner returns the owner's role with exactly this name, or
// ErrNotFound.
func (r *RoleRepo) GetByNameAndOwner(ctx context.Context, ownerID uint64, name string) (*model.Role, error) {
	rows, err := r.q.Read(ctx,
		"SELECT id, user_id, role_name FROM roles WHERE user_id = ? AND role_name = ? LIMIT 1",
		ownerID, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return scanRole(rows[0]), nil
}

// ListByOwner returns the owner's roles ordered by name.
func (r *RoleRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Role, error) {
	rows, err := r.q.Read(ctx,
		"SELECT id, user_id, role_name FROM roles WHERE user_id = ? ORDER BY role_name, id",
		ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, scanRole(row))
	}
	return out, nil
}

// Owners maps each existing id in ids to its owner.  Ids that do not
// exist are absent from the result.
func (r *RoleRepo) Owners(ctx context.Context, ids []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := fmt.Sprintf("SELECT id, user_id FROM roles WHERE id IN (%s)", placeholders(len(ids)))
	rows, err := r.q.Read(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Uint64("id")] = row.Uint64("user_id")
	}
	return out, nil
}

// DeleteByIDAndOwner removes a role.  Actors and costumes pointing at it
// become unassigned and its Play rows go with it (ON DELETE rules).
// Returns ErrNotFound when the owner has no such role.
func (r *RoleRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.q.Write(ctx, "DELETE FROM roles WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRole(row database.Row) *model.Role {
	return &model.Role{
		ID:      row.Uint64("id"),
		OwnerID: row.Uint64("user_id"),
		Name:    row.String("role_name"),
	}
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
