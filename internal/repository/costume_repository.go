package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// CostumeRepo provides access to the costumes table, including the
// name-based link between costumes and roles.
type CostumeRepo struct {
	q database.Querier
}

// NewCostumeRepo constructs a CostumeRepo over q.
func NewCostumeRepo(q database.Querier) *CostumeRepo { return &CostumeRepo{q: q} }

const costumeColumns = "id, user_id, costume_name, costume_size, role_id"

// Create inserts an unlinked costume and populates its ID.
func (r *CostumeRepo) Create(ctx context.Context, c *model.Costume) error {
	res, err := r.q.Write(ctx,
		"INSERT INTO costumes (user_id, costume_name, costume_size, role_id) VALUES (?, ?, ?, ?)",
		c.OwnerID, c.Name, c.Size, c.RoleID)
	if err != nil {
		return err
	}
	c.ID = uint64(res.LastInsertID)
	return nil
}

// GetByIDAndOwner fetches a costume only if it belongs to the owner.
func (r *CostumeRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Costume, error) {
	rows, err := r.q.Read(ctx,
		"SELECT "+costumeColumns+" FROM costumes WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return scanCostume(rows[0]), nil
}

// ListByOwner returns the owner's costumes ordered by name.
func (r *CostumeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Costume, error) {
	rows, err := r.q.Read(ctx,
		"SELECT "+costumeColumns+" FROM costumes WHERE user_id = ? ORDER BY costume_name, costume_size, id", ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Costume, 0, len(rows))
	for _, row := range rows {
		out = append(out, scanCostume(row))
	}
	return out, nil
}

// LinkUnassignedByName points every unlinked costume of the owner named
// exactly name at roleID.  Linked costumes are left alone.  Returns the
// number of costumes linked.
func (r *CostumeRepo) LinkUnassignedByName(ctx context.Context, ownerID uint64, name string, roleID uint64) (int64, error) {
	res, err := r.q.Write(ctx,
		`UPDATE costumes SET role_id = ?
		 WHERE user_id = ? AND costume_name = ? AND role_id IS NULL`,
		roleID, ownerID, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// LinkAllUnassigned applies the name rule for every role of the owner at
// once.  Idempotent: a second call links nothing.
func (r *CostumeRepo) LinkAllUnassigned(ctx context.Context, ownerID uint64) (int64, error) {
	res, err := r.q.Write(ctx,
		`UPDATE costumes SET role_id = (
		     SELECT r.id FROM roles r
		     WHERE r.user_id = costumes.user_id AND r.role_name = costumes.costume_name
		 )
		 WHERE user_id = ? AND role_id IS NULL AND EXISTS (
		     SELECT 1 FROM roles r
		     WHERE r.user_id = costumes.user_id AND r.role_name = costumes.costume_name
		 )`,
		ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// DeleteByIDAndOwner removes a costume of the owner.
func (r *CostumeRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.q.Write(ctx, "DELETE FROM costumes WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCostume(row database.Row) *model.Costume {
	return &model.Costume{
		ID:      row.Uint64("id"),
		OwnerID: row.Uint64("user_id"),
		Name:    row.String("costume_name"),
		Size:    row.String("costume_size"),
		RoleID:  row.NullUint64("role_id"),
	}
}
