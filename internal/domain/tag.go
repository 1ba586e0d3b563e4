package domain

import "time"

// Tag is a short community label shared across recipes.
// Name is stored in its normalized display form ("Italian Food").
// Tags are created on first use and never deleted.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipeTag is one (recipe, tag) association.
type RecipeTag struct {
	RecipeID  string    `json:"recipe_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
