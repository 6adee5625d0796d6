package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// PlayRepo provides access to the plays join table linking roles to
// scenes.
type PlayRepo struct {
	q database.Querier
}

// NewPlayRepo constructs a PlayRepo over q.
func NewPlayRepo(q database.Querier) *PlayRepo { return &PlayRepo{q: q} }

// CreateBulk inserts one Play row per role id in a single statement.  The
// caller deduplicates roleIDs and checks their ownership; a repeated
// (scene, role) pair still fails on the primary key with ErrDuplicate.
// Passing an empty slice has no effect and returns nil.
func (r *PlayRepo) CreateBulk(ctx context.Context, sceneID, ownerID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	query := "INSERT INTO plays (scenes_id, roles_id, user_id) VALUES "
	args := make([]any, 0, len(roleIDs)*3)
	for i, roleID := range roleIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, sceneID, roleID, ownerID)
	}
	_, err := r.q.Write(ctx, query, args...)
	return err
}

// ListByOwner returns all of the owner's Play rows ordered by scene then
// role.
func (r *PlayRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Play, error) {
	rows, err := r.q.Read(ctx,
		"SELECT scenes_id, roles_id, user_id FROM plays WHERE user_id = ? ORDER BY scenes_id, roles_id", ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Play, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Play{
			SceneID: row.Uint64("scenes_id"),
			RoleID:  row.Uint64("roles_id"),
			OwnerID: row.Uint64("user_id"),
		})
	}
	return out, nil
}
