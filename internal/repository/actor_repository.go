package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// ActorRepo provides access to the actors table.
type ActorRepo struct {
	q database.Querier
}

// NewActorRepo constructs an ActorRepo over q.
func NewActorRepo(q database.Querier) *ActorRepo { return &ActorRepo{q: q} }

const actorColumns = "id, user_id, actor_fname, actor_lname, actor_email, actor_size, role_id"

// Create inserts a.  The ID field is populated on success.  The caller is
// responsible for checking that a.RoleID belongs to a.OwnerID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.q.Write(ctx,
		`INSERT INTO actors (user_id, actor_fname, actor_lname, actor_email, actor_size, role_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.OwnerID, a.FirstName, a.LastName, a.Email, a.Size, a.RoleID)
	if err != nil {
		return err
	}
	a.ID = uint64(res.LastInsertID)
	return nil
}

// GetByIDAndOwner fetches an actor only if it belongs to the owner.
func (r *ActorRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Actor, error) {
	rows, err := r.q.Read(ctx,
		"SELECT "+actorColumns+" FROM actors WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return scanActor(rows[0]), nil
}

// ListByOwner returns the owner's actors ordered by first name.
func (r *ActorRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Actor, error) {
	rows, err := r.q.Read(ctx,
		"SELECT "+actorColumns+" FROM actors WHERE user_id = ? ORDER BY actor_fname, actor_lname, id", ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Actor, 0, len(rows))
	for _, row := range rows {
		out = append(out, scanActor(row))
	}
	return out, nil
}

// UpdateRole assigns (or with nil, unassigns) an actor's role.  Returns
// ErrNotFound when the owner has no such actor.
func (r *ActorRepo) UpdateRole(ctx context.Context, id, ownerID uint64, roleID *uint64) error {
	// Read first: MySQL reports zero affected rows when the value is unchanged.
	if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := r.q.Write(ctx, "UPDATE actors SET role_id = ? WHERE id = ? AND user_id = ?", roleID, id, ownerID)
	return err
}

// DeleteByIDAndOwner removes an actor of the owner.
func (r *ActorRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.q.Write(ctx, "DELETE FROM actors WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanActor(row database.Row) *model.Actor {
	return &model.Actor{
		ID:        row.Uint64("id"),
		OwnerID:   row.Uint64("user_id"),
		FirstName: row.String("actor_fname"),
		LastName:  row.String("actor_lname"),
		Email:     row.String("actor_email"),
		Size:      row.String("actor_size"),
		RoleID:    row.NullUint64("role_id"),
	}
}
