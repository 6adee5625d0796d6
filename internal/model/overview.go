package model

// UncastLabel is shown in a scene overview for a role without an actor.
const UncastLabel = "ROLE NOT YET CAST"

// RoleOverview is one line of the role overview: a role, the actor
// playing it (if any) and a linked costume whose size matches that
// actor's size (if any).  A role with several actors, or several matching
// costumes, yields several lines.
type RoleOverview struct {
	RoleID      uint64  `json:"role_id"`
	RoleName    string  `json:"role_name"`
	ActorID     *uint64 `json:"actor_id"`
	ActorFirst  *string `json:"actor_first"`
	ActorLast   *string `json:"actor_last"`
	ActorSize   *string `json:"actor_size"`
	CostumeID   *uint64 `json:"costume_id"`
	CostumeName *string `json:"costume_name"`
	CostumeSize *string `json:"costume_size"`
	// Prepared is the fit check: an actor is assigned and a costume of
	// the actor's size is linked to the role.
	Prepared bool `json:"prepared"`
}

// SceneOverview is a scene with its full cast, one entry per role.
type SceneOverview struct {
	SceneID   uint64   `json:"scene_id"`
	SceneName string   `json:"scene_name"`
	Cast      []string `json:"cast"`
}
