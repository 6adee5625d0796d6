package model

// Role represents a character or part in a production.  Roles are the
// hub of the casting model: actors and costumes each point at no more
// than one role, and scenes reference roles through Play rows.  A role
// name is unique per owner and is compared case-sensitively.
//
// Fields:
//
//	ID      – primary key identifier.
//	OwnerID – user ID of the owner.
//	Name    – display name, unique per owner.
type Role struct {
	ID      uint64 `json:"id"`   // roles.id
	OwnerID uint64 `json:"-"`    // roles.user_id
	Name    string `json:"name"` // roles.role_name
}
