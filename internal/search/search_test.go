package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testRecipe(id, title string, prep, cook int, difficulty domain.Difficulty, age time.Duration) *domain.Recipe {
	r := &domain.Recipe{
		AuthorID:        "user-1",
		Title:           title,
		PrepTimeMinutes: domain.IntPtr(prep),
		CookTimeMinutes: domain.IntPtr(cook),
		Difficulty:      difficulty,
		IsPublished:     true,
	}
	r.ID = id
	r.CreatedAt = time.Now().Add(-age)
	return r
}

func seedIndex(t *testing.T, index *SearchIndex) {
	t.Helper()
	ctx := context.Background()

	soup := testRecipe("rcp-soup", "Tomato Soup", 10, 20, domain.DifficultyEasy, 3*time.Hour)
	soup.Ingredients = []string{"4 tomatoes", "1 onion"}
	require.NoError(t, index.IndexRecipe(ctx, soup, []string{"Vegan", "Soup"}))

	curry := testRecipe("rcp-curry", "Chickpea Curry", 15, 45, domain.DifficultyMedium, 2*time.Hour)
	curry.Description = "Warming and spicy"
	require.NoError(t, index.IndexRecipe(ctx, curry, []string{"vegan", "Dinner"}))

	bread := testRecipe("rcp-bread", "Sourdough Bread", 60, 40, domain.DifficultyHard, time.Hour)
	require.NoError(t, index.IndexRecipe(ctx, bread, []string{"Baking"}))
}

func hitIDs(res *SearchResult) []string {
	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexDocument(&RecipeDocument{ID: "rcp-1", Title: "Pancakes"}))
	require.NoError(t, index.Close())

	reopened, err := NewSearchIndex(Options{Dir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndexRecipe_DraftIsRemoved(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	r := testRecipe("rcp-1", "Pancakes", 5, 10, domain.DifficultyEasy, 0)
	require.NoError(t, index.IndexRecipe(ctx, r, nil))

	r.IsPublished = false
	require.NoError(t, index.IndexRecipe(ctx, r, nil))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestDeleteRecipe(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	require.NoError(t, index.DeleteRecipe(context.Background(), "rcp-soup"))
	require.NoError(t, index.DeleteRecipe(context.Background(), "rcp-missing"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestIndexAll_CommitsInBatches(t *testing.T) {
	index, err := NewSearchIndex(Options{Dir: t.TempDir(), BatchSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	docs := []*RecipeDocument{
		{ID: "rcp-1", Title: "One"},
		{ID: "rcp-2", Title: "Two"},
		{ID: "rcp-3", Title: "Three"},
	}
	n, err := index.IndexAll(context.Background(), func(yield func(*RecipeDocument, error) bool) {
		for _, d := range docs {
			if !yield(d, nil) {
				return
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndexAll_StopsOnSourceError(t *testing.T) {
	index, err := NewSearchIndex(Options{Dir: t.TempDir(), BatchSize: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	boom := errors.New("database closed")
	n, err := index.IndexAll(context.Background(), func(yield func(*RecipeDocument, error) bool) {
		if !yield(&RecipeDocument{ID: "rcp-1", Title: "One"}, nil) {
			return
		}
		yield(nil, boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
}

func TestNewSearchIndex_MappingChangeRecreates(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexDocument(&RecipeDocument{ID: "rcp-1", Title: "Pancakes"}))
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipes.version"), []byte("0"), 0o644))

	reopened, err := NewSearchIndex(Options{Dir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "curry", Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "rcp-curry", res.Hits[0].ID)
	assert.Equal(t, "Chickpea Curry", res.Hits[0].Title)
	assert.Equal(t, 60, res.Hits[0].TotalTime)
}

func TestSearch_StemmedIngredient(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "tomato", Limit: 10})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "rcp-soup")
}

func TestSearch_TagsAreANDedAndCaseInsensitive(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)
	ctx := context.Background()

	res, err := index.Search(ctx, SearchParams{Tags: []string{"VEGAN"}, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rcp-soup", "rcp-curry"}, hitIDs(res))

	res, err = index.Search(ctx, SearchParams{Tags: []string{"vegan", "dinner"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"rcp-curry"}, hitIDs(res))
}

func TestSearch_DifficultyAndTimeFilters(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)
	ctx := context.Background()

	res, err := index.Search(ctx, SearchParams{Difficulty: "Hard", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"rcp-bread"}, hitIDs(res))

	res, err = index.Search(ctx, SearchParams{MaxTotalTime: 60, Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rcp-soup", "rcp-curry"}, hitIDs(res))
}

func TestSearch_TimeFilterExcludesUntimed(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	untimed := testRecipe("rcp-untimed", "Salad", 0, 0, domain.DifficultyEasy, 0)
	untimed.PrepTimeMinutes, untimed.CookTimeMinutes = nil, nil
	require.NoError(t, index.IndexRecipe(ctx, untimed, nil))

	res, err := index.Search(ctx, SearchParams{MaxTotalTime: 30, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_SortRecentAndPagination(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)
	ctx := context.Background()

	res, err := index.Search(ctx, SearchParams{SortBy: SortRecent, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Equal(t, []string{"rcp-bread", "rcp-curry"}, hitIDs(res))

	res, err = index.Search(ctx, SearchParams{SortBy: SortRecent, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"rcp-soup"}, hitIDs(res))
}

func TestSearch_SortByTime(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{SortBy: SortTime, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"rcp-soup", "rcp-curry", "rcp-bread"}, hitIDs(res))
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{IncludeFacets: true, Limit: 10})
	require.NoError(t, err)

	tagCounts := map[string]int{}
	for _, f := range res.Facets.Tags {
		tagCounts[f.Value] = f.Count
	}
	assert.Equal(t, 1, tagCounts["Baking"])
	assert.Len(t, res.Facets.Difficulties, 3)
}

func TestSearch_Highlight(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "sourdough", Highlight: true, Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Contains(t, res.Hits[0].Highlights["title"], "<mark>")
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRecipeToDocument(t *testing.T) {
	r := testRecipe("rcp-1", "Pho", 20, 180, domain.DifficultyMedium, 0)
	r.Ingredients = []string{"beef bones", "star anise"}

	doc := RecipeToDocument(r, []string{"  Vietnamese  ", "", "Soup"})

	assert.Equal(t, 200, doc.TotalTime)
	assert.Equal(t, "beef bones\nstar anise", doc.Ingredients)
	assert.Equal(t, []string{"Vietnamese", "Soup"}, doc.Tags)
	assert.Len(t, doc.TagKeys, 2)

	m := doc.ToMap()
	assert.Equal(t, "Vietnamese Soup", m["tag_text"])
	assert.NotContains(t, doc.ToMap(), "description")
}
