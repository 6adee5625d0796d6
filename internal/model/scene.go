package model

// Scene is a scene of the production.  The roles appearing in it are
// recorded as Play rows.
type Scene struct {
	ID      uint64   `json:"id"`       // scenes.id
	OwnerID uint64   `json:"-"`        // scenes.user_id
	Name    string   `json:"name"`     // scenes.scene_name
	RoleIDs []uint64 `json:"role_ids"` // plays.roles_id for this scene, ascending
}

// Play links a role to a scene.  (SceneID, RoleID) is unique.
type Play struct {
	SceneID uint64 // plays.scenes_id
	RoleID  uint64 // plays.roles_id
	OwnerID uint64 // plays.user_id
}
