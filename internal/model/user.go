package model

import "time"

// User represents an application account as stored in the `users`
// table.  Only the repository layer sees PasswordHash.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique, lower-cased login name (usually an email).
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
}

// Principal is the authenticated user a request acts for.  Its ID is the
// owner id passed to every casting operation.
type Principal struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
}
