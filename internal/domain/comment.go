package domain

import "time"

// Comment is a note left on a recipe by a signed-in user.
// Only its author may edit or delete it.
type Comment struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is denormalized for rendering and is not persisted.
	AuthorName string `json:"author_name,omitempty"`
}

// IsEdited reports whether the comment changed after it was posted.
func (c *Comment) IsEdited() bool {
	return c.UpdatedAt.Sub(c.CreatedAt) > time.Second
}
