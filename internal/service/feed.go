package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/filter"
	"github.com/simmerapp/simmer-server/internal/store"
)

// Feed sizes.
const (
	DashboardFeedSize = 12
	ExploreFeedSize   = 24
)

// Dashboard is the signed-in landing page: the community feed beside the viewer's own recipes.
type Dashboard struct {
	Community []domain.RecipeSummary `json:"community"`
	Mine      []domain.RecipeSummary `json:"mine"`
}

// FilteredFeed is a feed after the filter engine has run over it.
type FilteredFeed struct {
	Recipes              []domain.RecipeSummary `json:"recipes"`
	Shown                int                    `json:"shown"`
	Total                int                    `json:"total"`
	State                filter.State           `json:"-"`
	PublishFilterEnabled bool                   `json:"-"`
}

// Filter runs the engine over a feed snapshot once with the given state.
func Filter(recipes []domain.RecipeSummary, state filter.State, publishFilterEnabled bool) *FilteredFeed {
	engine := filter.NewEngine(recipes, publishFilterEnabled, nil)
	engine.Apply(state)
	shown, total := engine.Counts()
	return &FilteredFeed{
		Recipes:              engine.Results(),
		Shown:                shown,
		Total:                total,
		State:                engine.State(),
		PublishFilterEnabled: publishFilterEnabled,
	}
}

// Dashboard loads the latest published recipes and the viewer's latest recipes concurrently.
func (s *RecipeService) Dashboard(ctx context.Context, viewerID string) (*Dashboard, error) {
	var d Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.store.ListPublishedRecipes(gctx, store.PaginationParams{Limit: DashboardFeedSize})
		if err != nil {
			return fmt.Errorf("community feed: %w", err)
		}
		d.Community = page.Items
		return nil
	})
	g.Go(func() error {
		mine, err := s.store.ListRecipesByAuthor(gctx, viewerID, DashboardFeedSize)
		if err != nil {
			return fmt.Errorf("own recipes: %w", err)
		}
		d.Mine = mine
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Explore returns a newest-first page of published recipes.
func (s *RecipeService) Explore(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.RecipeSummary], error) {
	if params.Limit <= 0 {
		params.Limit = ExploreFeedSize
	}
	page, err := s.store.ListPublishedRecipes(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("explore feed: %w", err)
	}
	return page, nil
}

// SearchSource returns every published recipe, newest first, for the filter engine.
func (s *RecipeService) SearchSource(ctx context.Context) ([]domain.RecipeSummary, error) {
	recipes, err := s.store.ListAllPublishedRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("search source: %w", err)
	}
	return recipes, nil
}

// MyRecipes returns all of the viewer's recipes, drafts included, newest first.
func (s *RecipeService) MyRecipes(ctx context.Context, viewerID string) ([]domain.RecipeSummary, error) {
	recipes, err := s.store.ListRecipesByAuthor(ctx, viewerID, 0)
	if err != nil {
		return nil, fmt.Errorf("my recipes: %w", err)
	}
	return recipes, nil
}

// Saved returns the viewer's favorites, most recently saved first.
func (s *RecipeService) Saved(ctx context.Context, viewerID string) ([]domain.RecipeSummary, error) {
	recipes, err := s.store.ListFavoriteRecipes(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("saved recipes: %w", err)
	}
	return recipes, nil
}
