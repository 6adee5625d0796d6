package database

import (
	"context"
	"database/sql"
	"fmt"
)

// mysqlSchema creates the tables on MySQL. Name columns compared by the
// casting rules use a binary collation so matching is case-sensitive.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS todos (
		id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		content VARCHAR(1000) NOT NULL,
		due     DATETIME NULL,
		INDEX idx_todos_user_due (user_id, due)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS roles (
		id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id   BIGINT UNSIGNED NOT NULL,
		role_name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		UNIQUE KEY uq_roles_user_name (user_id, role_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS actors (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id     BIGINT UNSIGNED NOT NULL,
		actor_fname VARCHAR(255) NOT NULL,
		actor_lname VARCHAR(255) NOT NULL,
		actor_email VARCHAR(255) NOT NULL DEFAULT '',
		actor_size  VARCHAR(32) COLLATE utf8mb4_bin NOT NULL,
		role_id     BIGINT UNSIGNED NULL,
		INDEX idx_actors_user (user_id),
		CONSTRAINT fk_actors_role FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS costumes (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		costume_name VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
		costume_size VARCHAR(32) COLLATE utf8mb4_bin NOT NULL,
		role_id      BIGINT UNSIGNED NULL,
		INDEX idx_costumes_user_name (user_id, costume_name),
		CONSTRAINT fk_costumes_role FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS scenes (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		scene_name VARCHAR(255) NOT NULL,
		INDEX idx_scenes_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS plays (
		scenes_id BIGINT UNSIGNED NOT NULL,
		roles_id  BIGINT UNSIGNED NOT NULL,
		user_id   BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (scenes_id, roles_id),
		INDEX idx_plays_role (roles_id),
		CONSTRAINT fk_plays_scene FOREIGN KEY (scenes_id) REFERENCES scenes(id) ON DELETE CASCADE,
		CONSTRAINT fk_plays_role FOREIGN KEY (roles_id) REFERENCES roles(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// sqliteSchema mirrors mysqlSchema. SQLite compares TEXT with the BINARY
// collation by default, which keeps name matching case-sensitive.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		due     DATETIME NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_user_due ON todos(user_id, due)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id   INTEGER NOT NULL,
		role_name TEXT NOT NULL,
		UNIQUE (user_id, role_name)
	)`,
	`CREATE TABLE IF NOT EXISTS actors (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id     INTEGER NOT NULL,
		actor_fname TEXT NOT NULL,
		actor_lname TEXT NOT NULL,
		actor_email TEXT NOT NULL DEFAULT '',
		actor_size  TEXT NOT NULL,
		role_id     INTEGER NULL REFERENCES roles(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_actors_user ON actors(user_id)`,
	`CREATE TABLE IF NOT EXISTS costumes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL,
		costume_name TEXT NOT NULL,
		costume_size TEXT NOT NULL,
		role_id      INTEGER NULL REFERENCES roles(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_costumes_user_name ON costumes(user_id, costume_name)`,
	`CREATE TABLE IF NOT EXISTS scenes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL,
		scene_name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scenes_user ON scenes(user_id)`,
	`CREATE TABLE IF NOT EXISTS plays (
		scenes_id INTEGER NOT NULL REFERENCES scenes(id) ON DELETE CASCADE,
		roles_id  INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
		user_id   INTEGER NOT NULL,
		PRIMARY KEY (scenes_id, roles_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plays_role ON plays(roles_id)`,
}

// Migrate creates the schema if it does not exist. Safe to call on every
// startup; statements run one at a time because the MySQL driver rejects
// multi-statement strings by default.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts := mysqlSchema
	if dialect == SQLite {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
