package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search recipes",
		Description: "Full-text search over published recipes with tag and difficulty facets",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching recipes.
type SearchInput struct {
	Query      string `query:"q" maxLength:"200" doc:"Search query; empty lists every published recipe"`
	Tags       string `query:"tags" maxLength:"500" doc:"Comma-separated tag names; every tag must match"`
	Difficulty string `query:"difficulty" doc:"Easy, Medium or Hard"`
	MaxTime    int    `query:"max_time" minimum:"0" doc:"Maximum total time in minutes; 0 disables"`
	Sort       string `query:"sort" enum:"relevance,recent,time" default:"relevance" doc:"Result order"`
	Limit      int    `query:"limit" minimum:"1" maximum:"50" default:"20" doc:"Page size"`
	Offset     int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	Facets     bool   `query:"facets" default:"true" doc:"Include facets in response"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.SearchParams{
		Query:         input.Query,
		Tags:          splitTags(input.Tags),
		Difficulty:    input.Difficulty,
		MaxTotalTime:  input.MaxTime,
		Limit:         input.Limit,
		Offset:        input.Offset,
		SortBy:        input.Sort,
		IncludeFacets: input.Facets,
		Highlight:     true,
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: result}, nil
}

func splitTags(raw string) []string {
	var tags []string
	for t := range strings.SplitSeq(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
