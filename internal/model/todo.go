package model

import "time"

// Todo is a production to-do item.  Completing a todo deletes it.
type Todo struct {
	ID      uint64     `json:"id"`      // todos.id
	OwnerID uint64     `json:"-"`       // todos.user_id
	Content string     `json:"content"` // todos.content
	DueAt   *time.Time `json:"due_at"`  // todos.due (nullable)
}
