// Package dto provides Data Transfer Objects for API responses and rendered pages.
//
// DTOs carry denormalized display fields next to the normalized IDs so a feed
// card can be drawn without further lookups.
package dto

import "github.com/simmerapp/simmer-server/internal/domain"

// RecipeCard is the client-facing representation of a recipe in a feed.
type RecipeCard struct {
	domain.RecipeSummary

	// Denormalized fields, populated by Enricher.
	AuthorName string `json:"author_name"`
	TotalTime  int    `json:"total_time_minutes"`
	Slug       string `json:"slug"` // Readable URL suffix derived from the title
}

// HasTime reports whether the card should show a cooking time.
func (c RecipeCard) HasTime() bool {
	return c.TotalTime > 0
}
