// Package service holds the application logic that sits between the HTTP
// handlers and the repositories: the casting engine, the identity gate and
// the deployment event publisher.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/metrics"
	"github.com/iliyamo/theatre-production/internal/model"
	"github.com/iliyamo/theatre-production/internal/repository"
)

// ErrInvalidReference wraps ErrNotFound or ErrForbidden when a request
// names a role it cannot use.  Handlers reject both the same way.
var ErrInvalidReference = errors.New("referenced role is not available")

// Store is the data access the engine needs: plain reads and writes plus
// whole-transaction execution.  *database.DAL satisfies it.
type Store interface {
	database.Querier
	InTx(ctx context.Context, fn func(q database.Querier) error) error
}

const (
	maxNameLen    = 255
	maxSizeLen    = 32
	maxContentLen = 1000
)

// Engine implements the casting and assignment rules.  Every method takes
// the acting owner id explicitly; nothing outside the owner's rows is
// read or written.
type Engine struct {
	store Store
	log   *slog.Logger
}

// NewEngine builds an Engine over store.  A nil logger uses slog.Default.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, log: logger}
}

// ActorInput carries the fields of a new actor.
type ActorInput struct {
	FirstName string
	LastName  string
	Email     string
	Size      string
	RoleID    *uint64
}

// AddRole creates a role.  A second role with the same name for the same
// owner fails with ErrDuplicate; the unique constraint decides, so
// concurrent identical requests produce exactly one role.
func (e *Engine) AddRole(ctx context.Context, ownerID uint64, name string) (role *model.Role, err error) {
	defer func() { record("add_role", err) }()

	name, err = requireText("role name", name, maxNameLen)
	if err != nil {
		return nil, err
	}
	role, err = repository.NewRoleRepo(e.store).Create(ctx, ownerID, name)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("%w: role %q already exists", repository.ErrDuplicate, name)
	}
	if err != nil {
		return nil, err
	}
	return role, nil
}

// AddActor creates an actor, optionally assigned to one of the owner's
// roles.
func (e *Engine) AddActor(ctx context.Context, ownerID uint64, in ActorInput) (actor *model.Actor, err error) {
	defer func() { record("add_actor", err) }()

	actor = &model.Actor{OwnerID: ownerID, RoleID: in.RoleID}
	if actor.FirstName, err = requireText("first name", in.FirstName, maxNameLen); err != nil {
		return nil, err
	}
	if actor.LastName, err = requireText("last name", in.LastName, maxNameLen); err != nil {
		return nil, err
	}
	if actor.Size, err = requireText("size", in.Size, maxSizeLen); err != nil {
		return nil, err
	}
	if actor.Email, err = optionalEmail(in.Email); err != nil {
		return nil, err
	}

	err = e.store.InTx(ctx, func(q database.Querier) error {
		if in.RoleID != nil {
			if err := checkRoleOwnership(ctx, q, ownerID, []uint64{*in.RoleID}); err != nil {
				return err
			}
		}
		return repository.NewActorRepo(q).Create(ctx, actor)
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}

// AssignActor points an actor at one of the owner's roles, or unassigns it
// when roleID is nil.
func (e *Engine) AssignActor(ctx context.Context, ownerID, actorID uint64, roleID *uint64) (actor *model.Actor, err error) {
	defer func() { record("assign_actor", err) }()

	err = e.store.InTx(ctx, func(q database.Querier) error {
		if roleID != nil {
			if err := checkRoleOwnership(ctx, q, ownerID, []uint64{*roleID}); err != nil {
				return err
			}
		}
		actors := repository.NewActorRepo(q)
		if err := actors.UpdateRole(ctx, actorID, ownerID, roleID); err != nil {
			return err
		}
		var err error
		actor, err = actors.GetByIDAndOwner(ctx, actorID, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}

// AddCostume creates a costume and, in the same transaction, links every
// unlinked costume of that name to the owner's role of exactly that name,
// if there is one.  Costumes that are already linked keep their role.
func (e *Engine) AddCostume(ctx context.Context, ownerID uint64, name, size string) (costume *model.Costume, err error) {
	defer func() { record("add_costume", err) }()

	costume = &model.Costume{OwnerID: ownerID}
	if costume.Name, err = requireText("costume name", name, maxNameLen); err != nil {
		return nil, err
	}
	if costume.Size, err = requireText("size", size, maxSizeLen); err != nil {
		return nil, err
	}

	var linked int64
	err = e.store.InTx(ctx, func(q database.Querier) error {
		costumes := repository.NewCostumeRepo(q)
		if err := costumes.Create(ctx, costume); err != nil {
			return err
		}
		role, err := repository.NewRoleRepo(q).GetByNameAndOwner(ctx, ownerID, costume.Name)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if linked, err = costumes.LinkUnassignedByName(ctx, ownerID, costume.Name, role.ID); err != nil {
			return err
		}
		// Re-read: the new costume was one of the unlinked ones.
		costume, err = costumes.GetByIDAndOwner(ctx, costume.ID, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if linked > 0 {
		e.log.Debug("costumes linked to role", "owner_id", ownerID, "name", costume.Name, "linked", linked)
	}
	return costume, nil
}

// RelinkUnassignedCostumes applies the name rule for all of the owner's
// roles: each unlinked costume whose name equals a role name exactly is
// linked to that role.  It returns the number of costumes linked; calling
// it again without changes returns 0.
func (e *Engine) RelinkUnassignedCostumes(ctx context.Context, ownerID uint64) (linked int64, err error) {
	defer func() { record("relink_costumes", err) }()

	err = e.store.InTx(ctx, func(q database.Querier) error {
		var err error
		linked, err = repository.NewCostumeRepo(q).LinkAllUnassigned(ctx, ownerID)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.log.Debug("costumes relinked", "owner_id", ownerID, "linked", linked)
	return linked, nil
}

// AddScene creates a scene and one Play row per distinct role id.  Every
// role id must belong to the owner; otherwise nothing is written.
func (e *Engine) AddScene(ctx context.Context, ownerID uint64, name string, roleIDs []uint64) (scene *model.Scene, err error) {
	defer func() { record("add_scene", err) }()

	scene = &model.Scene{OwnerID: ownerID, RoleIDs: dedupeIDs(roleIDs)}
	if scene.Name, err = requireText("scene name", name, maxNameLen); err != nil {
		return nil, err
	}

	err = e.store.InTx(ctx, func(q database.Querier) error {
		if err := checkRoleOwnership(ctx, q, ownerID, scene.RoleIDs); err != nil {
			return err
		}
		if err := repository.NewSceneRepo(q).Create(ctx, scene); err != nil {
			return err
		}
		return repository.NewPlayRepo(q).CreateBulk(ctx, scene.ID, ownerID, scene.RoleIDs)
	})
	if err != nil {
		return nil, err
	}
	return scene, nil
}

// ProjectRoleOverview returns every role of the owner with its actor and
// the linked costume of the actor's size.  Prepared is set on rows where
// both are present.
func (e *Engine) ProjectRoleOverview(ctx context.Context, ownerID uint64) ([]model.RoleOverview, error) {
	return repository.NewOverviewRepo(e.store).RoleOverview(ctx, ownerID)
}

// ProjectSceneOverview returns every scene of the owner with one cast
// entry per role: "Role (First Last)", or "Role (ROLE NOT YET CAST)" for a
// role without an actor.  Several actors sharing a role are listed inside
// the same parentheses.
func (e *Engine) ProjectSceneOverview(ctx context.Context, ownerID uint64) ([]model.SceneOverview, error) {
	rows, err := repository.NewOverviewRepo(e.store).SceneCast(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return groupSceneCast(rows), nil
}

// groupSceneCast folds the ordered (scene, role, actor) rows into scenes.
// Input order is preserved.
func groupSceneCast(rows []repository.SceneCastRow) []model.SceneOverview {
	out := make([]model.SceneOverview, 0)
	var (
		cur    *model.SceneOverview
		role   *uint64
		label  string
		actors []string
	)
	flush := func() {
		if cur == nil || role == nil {
			return
		}
		if len(actors) == 0 {
			cur.Cast = append(cur.Cast, fmt.Sprintf("%s (%s)", label, model.UncastLabel))
		} else {
			cur.Cast = append(cur.Cast, fmt.Sprintf("%s (%s)", label, strings.Join(actors, ", ")))
		}
		role, actors = nil, nil
	}
	for _, r := range rows {
		if cur == nil || cur.SceneID != r.SceneID {
			flush()
			out = append(out, model.SceneOverview{SceneID: r.SceneID, SceneName: r.SceneName, Cast: []string{}})
			cur = &out[len(out)-1]
		}
		if r.RoleID == nil {
			continue
		}
		if role == nil || *role != *r.RoleID {
			flush()
			role, label = r.RoleID, r.RoleName
		}
		if r.ActorID != nil {
			actors = append(actors, strings.TrimSpace(deref(r.ActorFirst)+" "+deref(r.ActorLast)))
		}
	}
	flush()
	return out
}

// ListRoles returns the owner's roles ordered by name.
func (e *Engine) ListRoles(ctx context.Context, ownerID uint64) ([]*model.Role, error) {
	return repository.NewRoleRepo(e.store).ListByOwner(ctx, ownerID)
}

// ListActors returns the owner's actors ordered by first name.
func (e *Engine) ListActors(ctx context.Context, ownerID uint64) ([]*model.Actor, error) {
	return repository.NewActorRepo(e.store).ListByOwner(ctx, ownerID)
}

// ListCostumes returns the owner's costumes ordered by name.
func (e *Engine) ListCostumes(ctx context.Context, ownerID uint64) ([]*model.Costume, error) {
	return repository.NewCostumeRepo(e.store).ListByOwner(ctx, ownerID)
}

// ListScenes returns the owner's scenes with their role ids.
func (e *Engine) ListScenes(ctx context.Context, ownerID uint64) ([]*model.Scene, error) {
	return repository.NewSceneRepo(e.store).ListByOwner(ctx, ownerID)
}

// DeleteRole removes a role.  Its actors and costumes become unassigned
// and it disappears from every scene.
func (e *Engine) DeleteRole(ctx context.Context, ownerID, roleID uint64) (err error) {
	defer func() { record("delete_role", err) }()
	return e.store.InTx(ctx, func(q database.Querier) error {
		return repository.NewRoleRepo(q).DeleteByIDAndOwner(ctx, roleID, ownerID)
	})
}

// DeleteActor removes an actor.
func (e *Engine) DeleteActor(ctx context.Context, ownerID, actorID uint64) (err error) {
	defer func() { record("delete_actor", err) }()
	return repository.NewActorRepo(e.store).DeleteByIDAndOwner(ctx, actorID, ownerID)
}

// DeleteCostume removes a costume.
func (e *Engine) DeleteCostume(ctx context.Context, ownerID, costumeID uint64) (err error) {
	defer func() { record("delete_costume", err) }()
	return repository.NewCostumeRepo(e.store).DeleteByIDAndOwner(ctx, costumeID, ownerID)
}

// DeleteScene removes a scene and its Play rows.
func (e *Engine) DeleteScene(ctx context.Context, ownerID, sceneID uint64) (err error) {
	defer func() { record("delete_scene", err) }()
	return e.store.InTx(ctx, func(q database.Querier) error {
		return repository.NewSceneRepo(q).DeleteByIDAndOwner(ctx, sceneID, ownerID)
	})
}

// AddTodo creates a todo.  due may be nil.
func (e *Engine) AddTodo(ctx context.Context, ownerID uint64, content string, due *time.Time) (todo *model.Todo, err error) {
	defer func() { record("add_todo", err) }()

	todo = &model.Todo{OwnerID: ownerID, DueAt: due}
	if todo.Content, err = requireText("content", content, maxContentLen); err != nil {
		return nil, err
	}
	if err := repository.NewTodoRepo(e.store).Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// ListTodos returns the owner's todos, earliest due first.
func (e *Engine) ListTodos(ctx context.Context, ownerID uint64) ([]*model.Todo, error) {
	return repository.NewTodoRepo(e.store).ListByOwner(ctx, ownerID)
}

// CompleteTodo marks a todo done, which deletes it.
func (e *Engine) CompleteTodo(ctx context.Context, ownerID, todoID uint64) (err error) {
	defer func() { record("complete_todo", err) }()
	return repository.NewTodoRepo(e.store).DeleteByIDAndOwner(ctx, todoID, ownerID)
}

// checkRoleOwnership fails with ErrNotFound for an id that does not exist
// and ErrForbidden for one owned by someone else, both wrapped in
// ErrInvalidReference.
func checkRoleOwnership(ctx context.Context, q database.Querier, ownerID uint64, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	owners, err := repository.NewRoleRepo(q).Owners(ctx, roleIDs)
	if err != nil {
		return err
	}
	for _, id := range roleIDs {
		owner, ok := owners[id]
		if !ok {
			return fmt.Errorf("%w: %w: role %d", ErrInvalidReference, repository.ErrNotFound, id)
		}
		if owner != ownerID {
			return fmt.Errorf("%w: %w: role %d", ErrInvalidReference, repository.ErrForbidden, id)
		}
	}
	return nil
}

// dedupeIDs drops repeated ids, keeping the first occurrence of each.
func dedupeIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func requireText(field, v string, maxLen int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", repository.ErrValidation, field)
	}
	if utf8.RuneCountInString(v) > maxLen {
		return "", fmt.Errorf("%w: %s must be at most %d characters", repository.ErrValidation, field, maxLen)
	}
	return v, nil
}

func optionalEmail(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", fmt.Errorf("%w: email is not a valid address", repository.ErrValidation)
	}
	if len(v) > maxNameLen {
		return "", fmt.Errorf("%w: email must be at most %d characters", repository.ErrValidation, maxNameLen)
	}
	return v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// record counts a write by outcome.
func record(op string, err error) {
	metrics.CastingWrites.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, repository.ErrValidation):
		return "invalid"
	case errors.Is(err, repository.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, repository.ErrForbidden):
		return "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
