package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/logging"
	"github.com/iliyamo/theatre-production/internal/model"
	"github.com/iliyamo/theatre-production/internal/repository"
	"github.com/iliyamo/theatre-production/internal/testutil"
)

func newEngine(t *testing.T) (*Engine, *database.DAL, uint64) {
	t.Helper()
	dal := testutil.NewStore(t)
	owner := testutil.CreateUser(t, dal, "director@example.com")
	return NewEngine(dal, logging.Discard()), dal, owner
}

func ptr[T any](v T) *T { return &v }

// playCount counts the owner's Play rows for sceneID, or all of them when
// sceneID is 0.
func playCount(t *testing.T, dal *database.DAL, owner, sceneID uint64) int {
	t.Helper()
	plays, err := repository.NewPlayRepo(dal).ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	n := 0
	for _, p := range plays {
		if sceneID == 0 || p.SceneID == sceneID {
			n++
		}
	}
	return n
}

func TestAddRoleUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	role, err := e.AddRole(ctx, owner, "  Hamlet ")
	require.NoError(t, err)
	assert.Equal(t, "Hamlet", role.Name)
	assert.Equal(t, owner, role.OwnerID)

	_, err = e.AddRole(ctx, owner, "Hamlet")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = e.AddRole(ctx, owner, "hamlet")
	assert.NoError(t, err, "names are case-sensitive")

	_, err = e.AddRole(ctx, other, "Hamlet")
	assert.NoError(t, err, "another owner may reuse the name")

	roles, err := e.ListRoles(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

func TestAddRoleConcurrentRequestsCreateOne(t *testing.T) {
	ctx := context.Background()
	e, _, owner := newEngine(t)

	const n = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, dupes  int
		unexpected []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.AddRole(ctx, owner, "Ophelia")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrDuplicate):
				dupes++
			default:
				unexpected = append(unexpected, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unexpected)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupes)

	roles, err := e.ListRoles(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	e, _, owner := newEngine(t)

	long := make([]byte, maxNameLen+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name string
		call func() error
	}{
		{"empty role", func() error { _, err := e.AddRole(ctx, owner, "   "); return err }},
		{"long role", func() error { _, err := e.AddRole(ctx, owner, string(long)); return err }},
		{"actor without size", func() error {
			_, err := e.AddActor(ctx, owner, ActorInput{FirstName: "A", LastName: "B"})
			return err
		}},
		{"actor bad email", func() error {
			_, err := e.AddActor(ctx, owner, ActorInput{FirstName: "A", LastName: "B", Size: "M", Email: "not-an-email"})
			return err
		}},
		{"costume without name", func() error { _, err := e.AddCostume(ctx, owner, "", "M"); return err }},
		{"scene without name", func() error { _, err := e.AddScene(ctx, owner, "", nil); return err }},
		{"empty todo", func() error { _, err := e.AddTodo(ctx, owner, " ", nil); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), repository.ErrValidation)
		})
	}
}

func TestAddActorRoleOwnership(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	foreign, err := e.AddRole(ctx, other, "Lear")
	require.NoError(t, err)

	t.Run("foreign role", func(t *testing.T) {
		_, err := e.AddActor(ctx, owner, ActorInput{FirstName: "Ian", LastName: "M", Size: "L", RoleID: &foreign.ID})
		assert.ErrorIs(t, err, ErrInvalidReference)
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := e.AddActor(ctx, owner, ActorInput{FirstName: "Ian", LastName: "M", Size: "L", RoleID: ptr(uint64(9999))})
		assert.ErrorIs(t, err, ErrInvalidReference)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	actors, err := e.ListActors(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, actors, "rejected actors are not stored")

	t.Run("own role", func(t *testing.T) {
		role, err := e.AddRole(ctx, owner, "Cordelia")
		require.NoError(t, err)
		a, err := e.AddActor(ctx, owner, ActorInput{FirstName: "Ann", LastName: "B", Email: "ann@example.com", Size: "S", RoleID: &role.ID})
		require.NoError(t, err)
		require.NotNil(t, a.RoleID)
		assert.Equal(t, role.ID, *a.RoleID)
		assert.Equal(t, "ann@example.com", a.Email)
	})
}

func TestAssignActor(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	role, err := e.AddRole(ctx, owner, "Macbeth")
	require.NoError(t, err)
	actor, err := e.AddActor(ctx, owner, ActorInput{FirstName: "Jo", LastName: "Doe", Size: "M"})
	require.NoError(t, err)
	assert.Nil(t, actor.RoleID)

	got, err := e.AssignActor(ctx, owner, actor.ID, &role.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RoleID)
	assert.Equal(t, role.ID, *got.RoleID)

	// Assigning the same role again is not an error.
	_, err = e.AssignActor(ctx, owner, actor.ID, &role.ID)
	require.NoError(t, err)

	got, err = e.AssignActor(ctx, owner, actor.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.RoleID)

	_, err = e.AssignActor(ctx, other, actor.ID, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound, "another owner's actor is invisible")
}

func TestAddCostumeAutoLink(t *testing.T) {
	ctx := context.Background()
	e, _, owner := newEngine(t)

	early, err := e.AddCostume(ctx, owner, "Hamlet", "M")
	require.NoError(t, err)
	assert.Nil(t, early.RoleID, "no role of that name yet")

	role, err := e.AddRole(ctx, owner, "Hamlet")
	require.NoError(t, err)

	c, err := e.AddCostume(ctx, owner, "Hamlet", "L")
	require.NoError(t, err)
	require.NotNil(t, c.RoleID)
	assert.Equal(t, role.ID, *c.RoleID)

	unrelated, err := e.AddCostume(ctx, owner, "hamlet", "L")
	require.NoError(t, err)
	assert.Nil(t, unrelated.RoleID, "matching is exact")

	costumes, err := e.ListCostumes(ctx, owner)
	require.NoError(t, err)
	byID := map[uint64]*model.Costume{}
	for _, c := range costumes {
		byID[c.ID] = c
	}
	require.NotNil(t, byID[early.ID].RoleID, "earlier unlinked costume of the same name is linked too")
	assert.Equal(t, role.ID, *byID[early.ID].RoleID)
	assert.Nil(t, byID[unrelated.ID].RoleID)
}

func TestRelinkUnassignedCostumes(t *testing.T) {
	ctx := context.Background()
	e, _, owner := newEngine(t)

	_, err := e.AddCostume(ctx, owner, "Puck", "S")
	require.NoError(t, err)
	_, err = e.AddCostume(ctx, owner, "Puck", "M")
	require.NoError(t, err)
	_, err = e.AddCostume(ctx, owner, "Crown", "M")
	require.NoError(t, err)

	puck, err := e.AddRole(ctx, owner, "Puck")
	require.NoError(t, err)

	n, err := e.RelinkUnassignedCostumes(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = e.RelinkUnassignedCostumes(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, n, "second pass links nothing")

	costumes, err := e.ListCostumes(ctx, owner)
	require.NoError(t, err)
	for _, c := range costumes {
		if c.Name == "Puck" {
			require.NotNil(t, c.RoleID)
			assert.Equal(t, puck.ID, *c.RoleID)
		} else {
			assert.Nil(t, c.RoleID)
		}
	}
}

func TestRoleOverviewFitCheck(t *testing.T) {
	ctx := context.Background()
	e, _, owner := newEngine(t)

	hamlet, err := e.AddRole(ctx, owner, "Hamlet")
	require.NoError(t, err)
	_, err = e.AddRole(ctx, owner, "Ghost")
	require.NoError(t, err)
	yorick, err := e.AddRole(ctx, owner, "Yorick")
	require.NoError(t, err)

	_, err = e.AddCostume(ctx, owner, "Hamlet", "M")
	require.NoError(t, err)
	_, err = e.AddCostume(ctx, owner, "Hamlet", "L")
	require.NoError(t, err)
	_, err = e.AddCostume(ctx, owner, "Yorick", "XL")
	require.NoError(t, err)

	_, err = e.AddActor(ctx, owner, ActorInput{FirstName: "David", LastName: "T", Size: "M", RoleID: &hamlet.ID})
	require.NoError(t, err)
	_, err = e.AddActor(ctx, owner, ActorInput{FirstName: "Skull", LastName: "Prop", Size: "S", RoleID: &yorick.ID})
	require.NoError(t, err)

	rows, err := e.ProjectRoleOverview(ctx, owner)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by role name.
	ghost, ham, yor := rows[0], rows[1], rows[2]

	assert.Equal(t, "Ghost", ghost.RoleName)
	assert.Nil(t, ghost.ActorID)
	assert.Nil(t, ghost.CostumeID)
	assert.False(t, ghost.Prepared)

	assert.Equal(t, "Hamlet", ham.RoleName)
	require.NotNil(t, ham.ActorSize)
	require.NotNil(t, ham.CostumeSize, "costume of the actor's size matches")
	assert.Equal(t, "M", *ham.CostumeSize)
	assert.True(t, ham.Prepared)

	assert.Equal(t, "Yorick", yor.RoleName)
	require.NotNil(t, yor.ActorID)
	assert.Nil(t, yor.CostumeID, "XL costume does not fit an S actor")
	assert.Nil(t, yor.CostumeName)
	assert.False(t, yor.Prepared)
}

func TestAddSceneAndOverview(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	romeo, err := e.AddRole(ctx, owner, "Romeo")
	require.NoError(t, err)
	juliet, err := e.AddRole(ctx, owner, "Juliet")
	require.NoError(t, err)
	nurse, err := e.AddRole(ctx, owner, "Nurse")
	require.NoError(t, err)
	foreign, err := e.AddRole(ctx, other, "Tybalt")
	require.NoError(t, err)

	_, err = e.AddActor(ctx, owner, ActorInput{FirstName: "Leo", LastName: "D", Size: "M", RoleID: &romeo.ID})
	require.NoError(t, err)
	_, err = e.AddActor(ctx, owner, ActorInput{FirstName: "Claire", LastName: "D", Size: "S", RoleID: &juliet.ID})
	require.NoError(t, err)
	_, err = e.AddActor(ctx, owner, ActorInput{FirstName: "Understudy", LastName: "J", Size: "S", RoleID: &juliet.ID})
	require.NoError(t, err)

	t.Run("foreign role rejects the whole scene", func(t *testing.T) {
		_, err := e.AddScene(ctx, owner, "Balcony", []uint64{romeo.ID, foreign.ID})
		assert.ErrorIs(t, err, ErrInvalidReference)
		assert.ErrorIs(t, err, repository.ErrForbidden)

		scenes, err := e.ListScenes(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, scenes)
		assert.Zero(t, playCount(t, dal, owner, 0))
	})

	scene, err := e.AddScene(ctx, owner, "Balcony", []uint64{juliet.ID, romeo.ID, juliet.ID, nurse.ID, romeo.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint64{juliet.ID, romeo.ID, nurse.ID}, scene.RoleIDs, "duplicates dropped")
	assert.Equal(t, 3, playCount(t, dal, owner, scene.ID))

	_, err = e.AddScene(ctx, owner, "Empty stage", nil)
	require.NoError(t, err)

	overview, err := e.ProjectSceneOverview(ctx, owner)
	require.NoError(t, err)
	require.Len(t, overview, 2)

	assert.Equal(t, "Balcony", overview[0].SceneName)
	assert.Equal(t, []string{
		"Romeo (Leo D)",
		"Juliet (Claire D, Understudy J)",
		"Nurse (" + model.UncastLabel + ")",
	}, overview[0].Cast)

	assert.Equal(t, "Empty stage", overview[1].SceneName)
	assert.Empty(t, overview[1].Cast)
	assert.NotNil(t, overview[1].Cast)

	otherView, err := e.ProjectSceneOverview(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, otherView)
}

func TestDeleteRoleCleansUp(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)

	role, err := e.AddRole(ctx, owner, "Iago")
	require.NoError(t, err)
	keep, err := e.AddRole(ctx, owner, "Othello")
	require.NoError(t, err)
	actor, err := e.AddActor(ctx, owner, ActorInput{FirstName: "K", LastName: "B", Size: "M", RoleID: &role.ID})
	require.NoError(t, err)
	costume, err := e.AddCostume(ctx, owner, "Iago", "M")
	require.NoError(t, err)
	require.NotNil(t, costume.RoleID)
	scene, err := e.AddScene(ctx, owner, "Act III", []uint64{role.ID, keep.ID})
	require.NoError(t, err)

	require.NoError(t, e.DeleteRole(ctx, owner, role.ID))
	assert.ErrorIs(t, e.DeleteRole(ctx, owner, role.ID), repository.ErrNotFound)

	a, err := repository.NewActorRepo(dal).GetByIDAndOwner(ctx, actor.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, a.RoleID)

	c, err := repository.NewCostumeRepo(dal).GetByIDAndOwner(ctx, costume.ID, owner)
	require.NoError(t, err)
	assert.Nil(t, c.RoleID)

	assert.Equal(t, 1, playCount(t, dal, owner, scene.ID))

	overview, err := e.ProjectSceneOverview(ctx, owner)
	require.NoError(t, err)
	require.Len(t, overview, 1)
	assert.Equal(t, []string{"Othello (" + model.UncastLabel + ")"}, overview[0].Cast)
}

func TestDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	actor, err := e.AddActor(ctx, owner, ActorInput{FirstName: "A", LastName: "B", Size: "M"})
	require.NoError(t, err)
	costume, err := e.AddCostume(ctx, owner, "Cape", "M")
	require.NoError(t, err)
	scene, err := e.AddScene(ctx, owner, "Prologue", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, e.DeleteActor(ctx, other, actor.ID), repository.ErrNotFound)
	assert.ErrorIs(t, e.DeleteCostume(ctx, other, costume.ID), repository.ErrNotFound)
	assert.ErrorIs(t, e.DeleteScene(ctx, other, scene.ID), repository.ErrNotFound)

	assert.NoError(t, e.DeleteActor(ctx, owner, actor.ID))
	assert.NoError(t, e.DeleteCostume(ctx, owner, costume.ID))
	assert.NoError(t, e.DeleteScene(ctx, owner, scene.ID))
}

func TestTodos(t *testing.T) {
	ctx := context.Background()
	e, dal, owner := newEngine(t)
	other := testutil.CreateUser(t, dal, "other@example.com")

	later := time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC)
	sooner := time.Date(2030, 2, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	undated, err := e.AddTodo(ctx, owner, "Book rehearsal room", nil)
	require.NoError(t, err)
	l, err := e.AddTodo(ctx, owner, "Print programmes", &later)
	require.NoError(t, err)
	s, err := e.AddTodo(ctx, owner, "Fit costumes", &sooner)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, s.DueAt.Location(), "stored in UTC")

	todos, err := e.ListTodos(ctx, owner)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	assert.Equal(t, []uint64{s.ID, l.ID, undated.ID}, []uint64{todos[0].ID, todos[1].ID, todos[2].ID})
	require.NotNil(t, todos[0].DueAt)
	assert.True(t, sooner.Equal(*todos[0].DueAt))
	assert.Nil(t, todos[2].DueAt)

	assert.ErrorIs(t, e.CompleteTodo(ctx, other, s.ID), repository.ErrNotFound)
	require.NoError(t, e.CompleteTodo(ctx, owner, s.ID))
	assert.ErrorIs(t, e.CompleteTodo(ctx, owner, s.ID), repository.ErrNotFound)

	todos, err = e.ListTodos(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestGroupSceneCast(t *testing.T) {
	id := func(v uint64) *uint64 { return &v }
	str := func(v string) *string { return &v }

	rows := []repository.SceneCastRow{
		{SceneID: 1, SceneName: "A", RoleID: id(10), RoleName: "King", ActorID: id(100), ActorFirst: str("Old"), ActorLast: str("Man")},
		{SceneID: 1, SceneName: "A", RoleID: id(11), RoleName: "Fool"},
		{SceneID: 2, SceneName: "B"},
		{SceneID: 3, SceneName: "C", RoleID: id(10), RoleName: "King", ActorID: id(100), ActorFirst: str("Old"), ActorLast: str("Man")},
		{SceneID: 3, SceneName: "C", RoleID: id(10), RoleName: "King", ActorID: id(101), ActorFirst: str("Young"), ActorLast: str("")},
	}
	got := groupSceneCast(rows)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"King (Old Man)", "Fool (" + model.UncastLabel + ")"}, got[0].Cast)
	assert.Equal(t, []string{}, got[1].Cast)
	assert.Equal(t, []string{"King (Old Man, Young)"}, got[2].Cast)

	assert.Empty(t, groupSceneCast(nil))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "forbidden", resultLabel(errors.Join(ErrInvalidReference, repository.ErrForbidden)))
	assert.Equal(t, "not_found", resultLabel(repository.ErrNotFound))
	assert.Equal(t, "duplicate", resultLabel(repository.ErrDuplicate))
	assert.Equal(t, "unavailable", resultLabel(repository.ErrUnavailable))
	assert.Equal(t, "error", resultLabel(errors.New("x")))
}
