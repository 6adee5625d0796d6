package model

// Costume is a piece of wardrobe.  A costume whose name equals the name
// of one of the owner's roles is linked to that role while it is still
// unlinked; once linked it keeps its role.
//
// Fields:
//
//	ID      – primary key identifier.
//	OwnerID – user ID of the owner.
//	Name    – display name, matched against role names.
//	Size    – size label, matched against actor sizes.
//	RoleID  – linked role (nil when unlinked).
type Costume struct {
	ID      uint64  `json:"id"`      // costumes.id
	OwnerID uint64  `json:"-"`       // costumes.user_id
	Name    string  `json:"name"`    // costumes.costume_name
	Size    string  `json:"size"`    // costumes.costume_size
	RoleID  *uint64 `json:"role_id"` // costumes.role_id (nullable)
}
