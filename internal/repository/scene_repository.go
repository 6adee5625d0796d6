package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// SceneRepo provides access to the scenes table.
type SceneRepo struct {
	q database.Querier
}

// NewSceneRepo constructs a SceneRepo over q.
func NewSceneRepo(q database.Querier) *SceneRepo { return &SceneRepo{q: q} }

// Create inserts a scene and populates its ID.  Play rows are written
// separately through PlayRepo, in the same transaction.
func (r *SceneRepo) Create(ctx context.Context, s *model.Scene) error {
	res, err := r.q.Write(ctx, "INSERT INTO scenes (user_id, scene_name) VALUES (?, ?)", s.OwnerID, s.Name)
	if err != nil {
		return err
	}
	s.ID = uint64(res.LastInsertID)
	return nil
}

// ListByOwner returns the owner's scenes ordered by name, each carrying
// the ids of the roles that appear in it.
func (r *SceneRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Scene, error) {
	rows, err := r.q.Read(ctx,
		"SELECT id, user_id, scene_name FROM scenes WHERE user_id = ? ORDER BY scene_name, id", ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Scene, 0, len(rows))
	byID := make(map[uint64]*model.Scene, len(rows))
	for _, row := range rows {
		s := &model.Scene{
			ID:      row.Uint64("id"),
			OwnerID: row.Uint64("user_id"),
			Name:    row.String("scene_name"),
			RoleIDs: []uint64{},
		}
		out = append(out, s)
		byID[s.ID] = s
	}
	if len(out) == 0 {
		return out, nil
	}
	plays, err := NewPlayRepo(r.q).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, p := range plays {
		if s, ok := byID[p.SceneID]; ok {
			s.RoleIDs = append(s.RoleIDs, p.RoleID)
		}
	}
	return out, nil
}

// DeleteByIDAndOwner removes a scene of the owner together with its Play
// rows.
func (r *SceneRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.q.Write(ctx, "DELETE FROM scenes WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
