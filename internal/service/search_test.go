package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/search"
)

func TestSearchService_TagFacetAndFilter(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	ctx := context.Background()

	_, err := env.recipes.Create(ctx, author.ID, RecipeInput{Title: "Lentil Soup", NewTag: "Vegan", Publish: domain.BoolPtr(true)})
	require.NoError(t, err)
	_, err = env.recipes.Create(ctx, author.ID, RecipeInput{Title: "Beef Soup", NewTag: "Meat", Publish: domain.BoolPtr(true)})
	require.NoError(t, err)

	res, err := env.search.Search(ctx, search.SearchParams{Query: "soup", IncludeFacets: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Total)
	assert.Len(t, res.Facets.Tags, 2)

	res, err = env.search.Search(ctx, search.SearchParams{Query: "soup", Tags: []string{"vegan"}})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Lentil Soup", res.Hits[0].Title)
}

func TestSearchService_Validation(t *testing.T) {
	env := setupServices(t)

	_, err := env.search.Search(context.Background(), search.SearchParams{SortBy: "popularity"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.search.Search(context.Background(), search.SearchParams{Difficulty: "impossible"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSearchService_Disabled(t *testing.T) {
	env := setupServices(t)
	disabled := NewSearchService(nil, env.store, nil, nil)

	assert.False(t, disabled.Enabled())
	_, err := disabled.Search(context.Background(), search.SearchParams{Query: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}

func TestSearchService_Reindex(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	ctx := context.Background()

	env.createRecipe(t, author.ID, "Published", true)
	env.createRecipe(t, author.ID, "Draft", false)

	require.NoError(t, env.index.Rebuild())
	require.NoError(t, env.search.ReindexIfEmpty(ctx))

	count, err := env.index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	n, err := env.search.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
