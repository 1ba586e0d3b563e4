package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/dto"
	"github.com/simmerapp/simmer-server/internal/filter"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/store"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exploreRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "Explore recipes",
		Description: "Returns published recipes, newest first, one page at a time",
		Tags:        []string{"Feeds"},
	}, s.handleExplore)

	huma.Register(s.api, huma.Operation{
		OperationID: "filterRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/search",
		Summary:     "Filter published recipes",
		Description: "Runs the text, difficulty and time filters over every published recipe",
		Tags:        []string{"Feeds"},
	}, s.handleFilterRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "myRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/mine",
		Summary:     "My recipes",
		Description: "Returns the caller's recipes, drafts included, with the publish status filter enabled",
		Tags:        []string{"Feeds"},
		Security:    authOperation,
	}, s.handleMyRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "savedRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/saved",
		Summary:     "Saved recipes",
		Description: "Returns the caller's favorites, most recently saved first",
		Tags:        []string{"Feeds"},
		Security:    authOperation,
	}, s.handleSavedRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Dashboard",
		Description: "Returns the latest community recipes beside the caller's latest recipes",
		Tags:        []string{"Feeds"},
		Security:    authOperation,
	}, s.handleDashboard)
}

// === DTOs ===

// ExploreInput contains pagination parameters.
type ExploreInput struct {
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"24" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ExploreResponse is one page of the explore feed.
type ExploreResponse struct {
	Recipes    []dto.RecipeCard `json:"recipes" doc:"Published recipes"`
	NextCursor string           `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool             `json:"has_more" doc:"Whether more pages exist"`
}

// ExploreOutput wraps the explore page for Huma.
type ExploreOutput struct {
	Body ExploreResponse
}

// FilterInput carries the filter controls.
type FilterInput struct {
	Query      string `query:"q" doc:"Case-insensitive text matched against title and description"`
	Difficulty string `query:"difficulty" doc:"All, Easy, Medium or Hard"`
	MaxTime    string `query:"max_time" doc:"any, 15, 30, 60 or 120 minutes"`
}

// MyRecipesInput carries the filter controls plus the publish status.
type MyRecipesInput struct {
	Query      string `query:"q" doc:"Case-insensitive text matched against title and description"`
	Difficulty string `query:"difficulty" doc:"All, Easy, Medium or Hard"`
	MaxTime    string `query:"max_time" doc:"any, 15, 30, 60 or 120 minutes"`
	Status     string `query:"status" doc:"All, Published or Draft"`
}

// FilterStateResponse echoes the applied filter state.
type FilterStateResponse struct {
	Query      string `json:"q"`
	Difficulty string `json:"difficulty"`
	MaxTime    string `json:"max_time"`
	Status     string `json:"status,omitempty"`
}

// FeedResponse is a filtered feed with its "Showing X of Y" counts.
type FeedResponse struct {
	Recipes []dto.RecipeCard    `json:"recipes" doc:"Recipes that pass every filter, in feed order"`
	Shown   int                 `json:"shown" doc:"Number of recipes shown"`
	Total   int                 `json:"total" doc:"Number of recipes in the feed before filtering"`
	Filters FilterStateResponse `json:"filters" doc:"Applied filters"`
}

// FeedOutput wraps a filtered feed for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// DashboardResponse is the signed-in landing page.
type DashboardResponse struct {
	Community []dto.RecipeCard `json:"community" doc:"Latest published recipes"`
	Mine      []dto.RecipeCard `json:"mine" doc:"Caller's latest recipes, drafts included"`
}

// DashboardOutput wraps the dashboard for Huma.
type DashboardOutput struct {
	Body DashboardResponse
}

// === Handlers ===

func (s *Server) handleExplore(ctx context.Context, input *ExploreInput) (*ExploreOutput, error) {
	page, err := s.services.Recipe.Explore(ctx, store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor})
	if err != nil {
		return nil, err
	}

	cards, err := s.enricher.EnrichSummaries(ctx, page.Items)
	if err != nil {
		return nil, err
	}

	return &ExploreOutput{Body: ExploreResponse{
		Recipes:    cards,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}}, nil
}

func (s *Server) handleFilterRecipes(ctx context.Context, input *FilterInput) (*FeedOutput, error) {
	state, err := filter.ParseState(input.Query, input.Difficulty, input.MaxTime, "")
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.SearchSource(ctx)
	if err != nil {
		return nil, err
	}

	return s.feedOutput(ctx, service.Filter(recipes, state, false))
}

func (s *Server) handleMyRecipes(ctx context.Context, input *MyRecipesInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	state, err := filter.ParseState(input.Query, input.Difficulty, input.MaxTime, input.Status)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.MyRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.feedOutput(ctx, service.Filter(recipes, state, true))
}

func (s *Server) handleSavedRecipes(ctx context.Context, input *FilterInput) (*FeedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	state, err := filter.ParseState(input.Query, input.Difficulty, input.MaxTime, "")
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipe.Saved(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.feedOutput(ctx, service.Filter(recipes, state, false))
}

func (s *Server) handleDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	dash, err := s.services.Recipe.Dashboard(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One enrichment pass covers both lists.
	all := append(append([]domain.RecipeSummary{}, dash.Community...), dash.Mine...)
	cards, err := s.enricher.EnrichSummaries(ctx, all)
	if err != nil {
		return nil, err
	}

	return &DashboardOutput{Body: DashboardResponse{
		Community: cards[:len(dash.Community)],
		Mine:      cards[len(dash.Community):],
	}}, nil
}

// === Helpers ===

func (s *Server) feedOutput(ctx context.Context, feed *service.FilteredFeed) (*FeedOutput, error) {
	cards, err := s.enricher.EnrichSummaries(ctx, feed.Recipes)
	if err != nil {
		return nil, err
	}

	return &FeedOutput{Body: FeedResponse{
		Recipes: cards,
		Shown:   feed.Shown,
		Total:   feed.Total,
		Filters: filterStateResponse(feed.State, feed.PublishFilterEnabled),
	}}, nil
}

func filterStateResponse(state filter.State, publishEnabled bool) FilterStateResponse {
	resp := FilterStateResponse{
		Query:      state.Query,
		Difficulty: string(state.Difficulty),
		MaxTime:    state.MaxTotalTime.String(),
	}
	if publishEnabled {
		resp.Status = string(state.PublishStatus)
	}
	return resp
}
