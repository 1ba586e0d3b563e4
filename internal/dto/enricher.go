package dto

import (
	"context"
	"fmt"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/normalize"
)

// Store defines the lookups needed during enrichment.
type Store interface {
	GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// Enricher denormalizes recipe summaries for client consumption.
//
// One display-name query is made per call regardless of how many cards are enriched.
// Authors without a resolvable name render as "Anonymous".
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// EnrichSummaries turns summaries into cards, preserving order.
func (e *Enricher) EnrichSummaries(ctx context.Context, recipes []domain.RecipeSummary) ([]RecipeCard, error) {
	cards := make([]RecipeCard, len(recipes))
	if len(recipes) == 0 {
		return cards, nil
	}

	seen := make(map[string]struct{}, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	for _, r := range recipes {
		if _, ok := seen[r.AuthorID]; ok {
			continue
		}
		seen[r.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, r.AuthorID)
	}

	names, err := e.store.GetDisplayNames(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch author names: %w", err)
	}

	for i, r := range recipes {
		name := names[r.AuthorID]
		if name == "" {
			name = "Anonymous"
		}
		cards[i] = RecipeCard{
			RecipeSummary: r,
			AuthorName:    name,
			TotalTime:     r.TotalTime(),
			Slug:          normalize.Slugify(r.Title),
		}
	}
	return cards, nil
}
