package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the closed set of recipe difficulty levels.
type Difficulty string

const (
	// DifficultyEasy is the default for new recipes.
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every level in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// ParseDifficulty accepts a level name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Recipe is a user-authored recipe. Drafts (IsPublished=false) are visible to their author only.
type Recipe struct {
	Entity
	AuthorID        string     `json:"author_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	PrepTimeMinutes *int       `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int       `json:"cook_time_minutes,omitempty"`
	Servings        *int       `json:"servings,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	Ingredients     []string   `json:"ingredients"`
	Instructions    []string   `json:"instructions"`
	IsPublished     bool       `json:"is_published"`
}

// TotalTime returns prep plus cook minutes, counting absent values as zero.
func (r *Recipe) TotalTime() int {
	return totalTime(r.PrepTimeMinutes, r.CookTimeMinutes)
}

// IsOwnedBy reports whether userID authored the recipe.
func (r *Recipe) IsOwnedBy(userID string) bool {
	return userID != "" && r.AuthorID == userID
}

// VisibleTo reports whether the viewer may see the recipe.
func (r *Recipe) VisibleTo(viewerID string) bool {
	return r.IsPublished || r.IsOwnedBy(viewerID)
}

// Summary returns the list/filter view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:              r.ID,
		AuthorID:        r.AuthorID,
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		IsPublished:     r.IsPublished,
		CreatedAt:       r.CreatedAt,
	}
}

// RecipeSummary is the subset of a recipe used for listing and filtering.
// It excludes ingredient and instruction bodies.
type RecipeSummary struct {
	ID              string     `json:"id"`
	AuthorID        string     `json:"author_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	PrepTimeMinutes *int       `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int       `json:"cook_time_minutes,omitempty"`
	Servings        *int       `json:"servings,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TotalTime returns prep plus cook minutes, counting absent values as zero.
// Derived for filtering only; never persisted.
func (r RecipeSummary) TotalTime() int {
	return totalTime(r.PrepTimeMinutes, r.CookTimeMinutes)
}

func totalTime(prep, cook *int) int {
	total := 0
	if prep != nil {
		total += *prep
	}
	if cook != nil {
		total += *cook
	}
	return total
}

// RecipeDetail is everything the recipe page shows for one viewer.
type RecipeDetail struct {
	Recipe     *Recipe    `json:"recipe"`
	Author     *Profile   `json:"author"`
	AuthorName string     `json:"author_name"`
	Tags       []*Tag     `json:"tags"`
	LikeCount  int        `json:"like_count"`
	IsLiked    bool       `json:"is_liked"`
	IsFavorite bool       `json:"is_favorite"`
	IsOwner    bool       `json:"is_owner"`
	Comments   []*Comment `json:"comments"`
}

// SplitLines turns a multi-line text block into trimmed, non-empty lines.
// Ingredients and instructions are entered one per line.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}
