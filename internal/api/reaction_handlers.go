package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/service"
)

func (s *Server) registerReactionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}/favorite",
		Summary:     "Toggle favorite",
		Description: "Saves the recipe, or unsaves it when already saved",
		Tags:        []string{"Reactions"},
		Security:    authOperation,
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPut,
		Path:        "/api/v1/recipes/{id}/like",
		Summary:     "Toggle like",
		Description: "Likes the recipe, or unlikes it when already liked. Subscribers of the recipe receive the new count.",
		Tags:        []string{"Reactions"},
		Security:    authOperation,
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLikes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}/likes",
		Summary:     "Get likes",
		Description: "Returns the like count, and whether the caller likes the recipe",
		Tags:        []string{"Reactions"},
	}, s.handleGetLikes)
}

// === DTOs ===

// FavoriteResponse reports whether a recipe is saved.
type FavoriteResponse struct {
	RecipeID string `json:"recipe_id" doc:"Recipe ID"`
	Saved    bool   `json:"saved" doc:"Whether the caller has saved the recipe"`
}

// FavoriteOutput wraps the favorite state for Huma.
type FavoriteOutput struct {
	Body FavoriteResponse
}

// LikeOutput wraps the like state for Huma.
type LikeOutput struct {
	Body *service.LikeState
}

// === Handlers ===

func (s *Server) handleToggleFavorite(ctx context.Context, input *RecipeIDInput) (*FavoriteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.services.Favorite.Toggle(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &FavoriteOutput{Body: FavoriteResponse{RecipeID: input.ID, Saved: saved}}, nil
}

func (s *Server) handleToggleLike(ctx context.Context, input *RecipeIDInput) (*LikeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	state, err := s.services.Like.Toggle(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &LikeOutput{Body: state}, nil
}

func (s *Server) handleGetLikes(ctx context.Context, input *RecipeIDInput) (*LikeOutput, error) {
	state, err := s.services.Like.Count(ctx, optionalUserID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &LikeOutput{Body: state}, nil
}
