package domain

import "time"

// Entity carries the ID and timestamps every stored row has.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch marks the entity as changed now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now()
}

// InitTimestamps stamps a new entity's creation and update times with the same instant.
func (e *Entity) InitTimestamps() {
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
}
