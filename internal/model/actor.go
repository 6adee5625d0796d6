package model

// Actor is a cast member.  An actor is either unassigned (RoleID nil) or
// assigned to exactly one role of the same owner.  Size is compared with
// costume sizes by the role overview.
//
// Fields:
//
//	ID        – primary key identifier.
//	OwnerID   – user ID of the owner.
//	FirstName – given name.
//	LastName  – family name.
//	Email     – contact address (may be empty).
//	Size      – clothing size label, e.g. "M".
//	RoleID    – assigned role (nil when unassigned).
type Actor struct {
	ID        uint64  `json:"id"`         // actors.id
	OwnerID   uint64  `json:"-"`          // actors.user_id
	FirstName string  `json:"first_name"` // actors.actor_fname
	LastName  string  `json:"last_name"`  // actors.actor_lname
	Email     string  `json:"email"`      // actors.actor_email
	Size      string  `json:"size"`       // actors.actor_size
	RoleID    *uint64 `json:"role_id"`    // actors.role_id (nullable)
}

// FullName joins first and last name with a single space.
func (a Actor) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
