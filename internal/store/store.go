// Package store defines the persistence contracts shared by the SQLite store and its collaborators.
package store

import (
	"context"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// EventEmitter publishes live updates. Services emit after a write commits;
// the SSE manager is the production implementation.
type EventEmitter interface {
	Emit(event any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(any) {}

// NewNoopEmitter returns an emitter that drops every event.
func NewNoopEmitter() EventEmitter { return noopEmitter{} }

// SearchIndexer keeps the full-text index in step with recipe writes.
// Only published recipes are searchable; IndexRecipe is expected to drop drafts.
type SearchIndexer interface {
	IndexRecipe(ctx context.Context, recipe *domain.Recipe, tags []string) error
	DeleteRecipe(ctx context.Context, recipeID string) error
}

type noopIndexer struct{}

func (noopIndexer) IndexRecipe(context.Context, *domain.Recipe, []string) error { return nil }
func (noopIndexer) DeleteRecipe(context.Context, string) error                  { return nil }

// NewNoopSearchIndexer returns an indexer that ignores every write. The store
// uses it until SetSearchIndexer is called, and when search is disabled.
func NewNoopSearchIndexer() SearchIndexer { return noopIndexer{} }
