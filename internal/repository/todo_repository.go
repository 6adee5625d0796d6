package repository

import (
	"context"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/model"
)

// TodoRepo provides access to the todos table.
type TodoRepo struct {
	q database.Querier
}

func NewTodoRepo(q database.Querier) *TodoRepo { return &TodoRepo{q: q} }

// Create inserts a todo.  DueAt is stored in UTC.
func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) error {
	var due any
	if t.DueAt != nil {
		utc := t.DueAt.UTC()
		t.DueAt = &utc
		due = utc
	}
	res, err := r.q.Write(ctx, "INSERT INTO todos (user_id, content, due) VALUES (?, ?, ?)", t.OwnerID, t.Content, due)
	if err != nil {
		return err
	}
	t.ID = uint64(res.LastInsertID)
	return nil
}

// ListByOwner returns the owner's todos, earliest due first.  Todos
// without a due date come last.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Todo, error) {
	rows, err := r.q.Read(ctx,
		`SELECT id, user_id, content, due FROM todos
		 WHERE user_id = ?
		 ORDER BY CASE WHEN due IS NULL THEN 1 ELSE 0 END, due, id`, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Todo, 0, len(rows))
	for _, row := range rows {
		out = append(out, &model.Todo{
			ID:      row.Uint64("id"),
			OwnerID: row.Uint64("user_id"),
			Content: row.String("content"),
			DueAt:   row.NullTime("due"),
		})
	}
	return out, nil
}

// DeleteByIDAndOwner removes a todo of the owner.
func (r *TodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.q.Write(ctx, "DELETE FROM todos WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
