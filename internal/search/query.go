package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/simmerapp/simmer-server/internal/normalize"
)

// Sort orders accepted by SearchParams.SortBy.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
	SortTime      = "time"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Tags         []string // Every tag must be present (matched by folded key)
	Difficulty   string   // Exact difficulty level
	MaxTotalTime int      // Minutes; 0 disables the filter

	// Pagination
	Limit  int
	Offset int

	SortBy string // "relevance", "recent", "time"

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        SortRelevance,
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets"`
}

// SearchHit represents a single matching recipe.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	AuthorID   string            `json:"author_id"`
	Difficulty string            `json:"difficulty,omitempty"`
	TotalTime  int               `json:"total_time"`
	Tags       []string          `json:"tags,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Tags         []FacetCount `json:"tags,omitempty"`
	Difficulties []FacetCount `json:"difficulties,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
		req.AddFacet("difficulty", bleve.NewFacetRequest("difficulty", 3))
	}

	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
	}

	req.Fields = []string{"title", "author_id", "difficulty", "total_time", "tags"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}

		if v, ok := hit.Fields["title"].(string); ok {
			h.Title = v
		}
		if v, ok := hit.Fields["author_id"].(string); ok {
			h.AuthorID = v
		}
		if v, ok := hit.Fields["difficulty"].(string); ok {
			h.Difficulty = v
		}
		if v, ok := hit.Fields["total_time"].(float64); ok {
			h.TotalTime = int(v)
		}
		h.Tags = stringList(hit.Fields["tags"])

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		match := func(field string, boost float64) query.Query {
			mq := bleve.NewMatchQuery(q)
			mq.SetField(field)
			mq.SetBoost(boost)
			return mq
		}

		textQueries := []query.Query{
			match("title", 3.0),
			match("tag_text", 2.0),
			match("ingredients", 1.0),
			match("description", 1.0),
		}

		// Typo tolerance on titles.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)
		textQueries = append(textQueries, fuzzy)

		// Prefix match for search-as-you-type.
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Tags combine with AND.
	for _, tag := range params.Tags {
		key := normalize.TagKey(tag)
		if key == "" {
			continue
		}
		tq := bleve.NewTermQuery(key)
		tq.SetField("tag_keys")
		queries = append(queries, tq)
	}

	if params.Difficulty != "" {
		dq := bleve.NewTermQuery(params.Difficulty)
		dq.SetField("difficulty")
		queries = append(queries, dq)
	}

	// Recipes with no recorded time never satisfy a time limit.
	if params.MaxTotalTime > 0 {
		minT, maxT := 0.0, float64(params.MaxTotalTime)
		exclusive, inclusive := false, true
		rq := bleve.NewNumericRangeInclusiveQuery(&minT, &maxT, &exclusive, &inclusive)
		rq.SetField("total_time")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order. Ties fall back to newest first.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case SortRecent:
		req.SortBy([]string{"-created_at", "_id"})
	case SortTime:
		req.SortBy([]string{"total_time", "-created_at"})
	default:
		if strings.TrimSpace(params.Query) == "" {
			req.SortBy([]string{"-created_at", "_id"})
			return
		}
		req.SortBy([]string{"-_score", "-created_at"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	var facets SearchFacets

	if f, ok := result.Facets["tags"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Tags = append(facets.Tags, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := result.Facets["difficulty"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Difficulties = append(facets.Difficulties, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return facets
}

// stringList reads a stored field that Bleve returns as a string for one
// value and as a slice for several.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
