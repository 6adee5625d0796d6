package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// OverviewRepo runs the read-only projections joining roles, actors,
// costumes, scenes and plays.  Every join is a LEFT JOIN on the role side
// so a role without an actor or costume still appears.
type OverviewRepo struct {
	q database.Querier
}

func NewOverviewRepo(q database.Querier) *OverviewRepo { return &OverviewRepo{q: q} }

// roleOverviewQuery pairs each role with its actors and, per actor, the
// linked costumes of that actor's size.  A costume of the wrong size is
// not matched; an uncast role matches no costume.
const roleOverviewQuery = `
SELECT r.id AS role_id, r.role_name,
       a.id AS actor_id, a.actor_fname, a.actor_lname, a.actor_size,
       c.id AS costume_id, c.costume_name, c.costume_size
FROM roles r
LEFT JOIN actors a
       ON a.role_id = r.id AND a.user_id = r.user_id
LEFT JOIN costumes c
       ON c.role_id = r.id AND c.user_id = r.user_id AND c.costume_size = a.actor_size
WHERE r.user_id = ?
ORDER BY r.role_name, r.id, a.id, c.id`

// RoleOverview returns the fit check rows for the owner.
func (r *OverviewRepo) RoleOverview(ctx context.Context, ownerID uint64) ([]model.RoleOverview, error) {
	rows, err := r.q.Read(ctx, roleOverviewQuery, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.RoleOverview, 0, len(rows))
	for _, row := range rows {
		o := model.RoleOverview{
			RoleID:      row.Uint64("role_id"),
			RoleName:    row.String("role_name"),
			ActorID:     row.NullUint64("actor_id"),
			ActorFirst:  row.NullString("actor_fname"),
			ActorLast:   row.NullString("actor_lname"),
			ActorSize:   row.NullString("actor_size"),
			CostumeID:   row.NullUint64("costume_id"),
			CostumeName: row.NullString("costume_name"),
			CostumeSize: row.NullString("costume_size"),
		}
		o.Prepared = o.ActorID != nil && o.CostumeID != nil
		out = append(out, o)
	}
	return out, nil
}

// SceneCastRow is one (scene, role, actor) combination of the scene
// overview.  Actor fields are nil for an uncast role; RoleID is nil for a
// scene without roles.
type SceneCastRow struct {
	SceneID    uint64
	SceneName  string
	RoleID     *uint64
	RoleName   string
	ActorID    *uint64
	ActorFirst *string
	ActorLast  *string
}

const sceneCastQuery = `
SELECT s.id AS scene_id, s.scene_name,
       r.id AS role_id, r.role_name,
       a.id AS actor_id, a.actor_fname, a.actor_lname
FROM scenes s
LEFT JOIN plays p
       ON p.scenes_id = s.id
LEFT JOIN roles r
       ON r.id = p.roles_id AND r.user_id = s.user_id
LEFT JOIN actors a
       ON a.role_id = r.id AND a.user_id = r.user_id
WHERE s.user_id = ?
ORDER BY s.scene_name, s.id, r.id, a.id`

// SceneCast returns the flattened cast of every scene of the owner.
func (r *OverviewRepo) SceneCast(ctx context.Context, ownerID uint64) ([]SceneCastRow, error) {
	rows, err := r.q.Read(ctx, sceneCastQuery, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]SceneCastRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, SceneCastRow{
			SceneID:    row.Uint64("scene_id"),
			SceneName:  row.String("scene_name"),
			RoleID:     row.NullUint64("role_id"),
			RoleName:   row.String("role_name"),
			ActorID:    row.NullUint64("actor_id"),
			ActorFirst: row.NullString("actor_fname"),
			ActorLast:  row.NullString("actor_lname"),
		})
	}
	return out, nil
}
