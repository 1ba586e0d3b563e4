package service

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/store"
)

// MaxSearchLimit caps the page size of a full-text search.
const MaxSearchLimit = 50

// SearchService runs full-text queries over published recipes and rebuilds the index.
// The index is kept current by the store on every recipe write; this service only reads
// it, except for Reindex.
type SearchService struct {
	index   *search.SearchIndex
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewSearchService creates a new search service. index may be nil when search is
// disabled, in which case Search reports UNAVAILABLE.
func NewSearchService(index *search.SearchIndex, store store.Store, m *metrics.Metrics, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:   index,
		store:   store,
		metrics: m,
		logger:  orDiscard(logger),
	}
}

// Enabled reports whether a search index is configured.
func (s *SearchService) Enabled() bool {
	return s.index != nil
}

// DocumentCount returns the number of indexed recipes.
func (s *SearchService) DocumentCount() (uint64, error) {
	if s.index == nil {
		return 0, domainerrors.Wrap(nil, domainerrors.CodeUnavailable, "search is disabled")
	}
	return s.index.DocumentCount()
}

// Search executes a full-text query with tag and difficulty facets.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.index == nil {
		return nil, domainerrors.Wrap(nil, domainerrors.CodeUnavailable, "search is disabled")
	}

	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	params.Limit = min(params.Limit, MaxSearchLimit)
	params.Offset = max(params.Offset, 0)

	details := map[string]string{}
	if params.Difficulty != "" {
		d, err := domain.ParseDifficulty(params.Difficulty)
		if err != nil {
			details["difficulty"] = "must be Easy, Medium or Hard"
		}
		params.Difficulty = string(d)
	}
	switch params.SortBy {
	case "", search.SortRelevance, search.SortRecent, search.SortTime:
	default:
		details["sort"] = "must be one of relevance, recent, time"
	}
	if params.MaxTotalTime < 0 {
		details["max_time"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, domainerrors.ValidationWithDetails("invalid search", details)
	}

	s.metrics.SearchQuery()

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// Reindex drops the index and rebuilds it from every published recipe.
// Returns the number of recipes indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	n, err := s.index.IndexAll(ctx, s.publishedDocuments(ctx))
	if err != nil {
		return n, fmt.Errorf("index recipes: %w", err)
	}

	s.logger.Info("reindex complete", "recipes", n)
	return n, nil
}

// publishedDocuments streams every published recipe as a search document.
// A recipe whose tags cannot be read is indexed without them.
func (s *SearchService) publishedDocuments(ctx context.Context) iter.Seq2[*search.RecipeDocument, error] {
	return func(yield func(*search.RecipeDocument, error) bool) {
		for recipe, err := range s.store.StreamPublishedRecipes(ctx) {
			if err != nil {
				yield(nil, fmt.Errorf("stream recipes: %w", err))
				return
			}
			tags, err := s.store.GetTagsForRecipe(ctx, recipe.ID)
			if err != nil {
				s.logger.Warn("failed to load tags for recipe", "recipe_id", recipe.ID, "error", err)
			}
			names := make([]string, len(tags))
			for i, t := range tags {
				names[i] = t.Name
			}
			if !yield(search.RecipeToDocument(recipe, names), nil) {
				return
			}
		}
	}
}

// ReindexIfEmpty rebuilds an empty index when recipes exist, as happens after
// the index mapping changes or the index directory is removed.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) error {
	if s.index == nil {
		return nil
	}

	indexed, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count indexed documents: %w", err)
	}
	if indexed > 0 {
		return nil
	}

	stored, err := s.store.CountRecipes(ctx)
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if stored == 0 {
		return nil
	}

	_, err = s.Reindex(ctx)
	return err
}
