package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag, ordered by name",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipeTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}/tags",
		Summary:     "Get recipe tags",
		Description: "Returns the tags attached to a visible recipe, ordered by name",
		Tags:        []string{"Tags"},
	}, s.handleGetRecipeTags)
}

// === DTOs ===

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []*domain.Tag `json:"tags" doc:"Tags ordered by name"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleGetRecipeTags(ctx context.Context, input *RecipeIDInput) (*ListTagsOutput, error) {
	tags, err := s.services.Recipe.Tags(ctx, optionalUserID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}
