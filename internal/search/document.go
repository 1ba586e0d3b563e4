// Package search provides full-text recipe search using Bleve.
// Only published recipes are indexed. Titles, descriptions, ingredients and
// tag names are searchable; tags and difficulty are facetable.
package search

import (
	"strings"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/normalize"
)

// RecipeDocument is the Bleve document for one published recipe.
// Tag names are denormalized so a single query covers recipe text and labels.
type RecipeDocument struct {
	ID          string
	Title       string
	Description string
	Ingredients string // One ingredient per line
	AuthorID    string
	Difficulty  string
	TotalTime   int      // Minutes, prep plus cook
	Tags        []string // Display names, for facets and highlighting
	TagKeys     []string // Folded keys, for exact filtering
	CreatedAt   int64    // Unix millis
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *RecipeDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author_id":  d.AuthorID,
		"total_time": d.TotalTime,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Ingredients != "" {
		m["ingredients"] = d.Ingredients
	}
	if d.Difficulty != "" {
		m["difficulty"] = d.Difficulty
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
		m["tag_text"] = strings.Join(d.Tags, " ")
		m["tag_keys"] = d.TagKeys
	}

	return m
}

// RecipeToDocument converts a recipe and its tag names to a RecipeDocument.
func RecipeToDocument(recipe *domain.Recipe, tags []string) *RecipeDocument {
	doc := &RecipeDocument{
		ID:          recipe.ID,
		Title:       recipe.Title,
		Description: recipe.Description,
		Ingredients: strings.Join(recipe.Ingredients, "\n"),
		AuthorID:    recipe.AuthorID,
		Difficulty:  string(recipe.Difficulty),
		TotalTime:   recipe.TotalTime(),
		CreatedAt:   recipe.CreatedAt.UnixMilli(),
	}

	for _, t := range tags {
		name := normalize.TagName(t)
		if name == "" {
			continue
		}
		doc.Tags = append(doc.Tags, name)
		doc.TagKeys = append(doc.TagKeys, normalize.TagKey(name))
	}

	return doc
}
