package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/sse"
	"github.com/simmerapp/simmer-server/internal/store"
)

// FavoriteService manages saved recipes. A user saves a recipe at most once.
type FavoriteService struct {
	store   store.Store
	metrics *metrics.Metrics
}

// NewFavoriteService creates a new favorite service. m may be nil.
func NewFavoriteService(store store.Store, m *metrics.Metrics) *FavoriteService {
	return &FavoriteService{store: store, metrics: m}
}

// Toggle saves or unsaves a visible recipe and reports whether it is now saved.
func (s *FavoriteService) Toggle(ctx context.Context, userID, recipeID string) (bool, error) {
	if _, err := visibleRecipe(ctx, s.store, userID, recipeID); err != nil {
		return false, err
	}
	saved, err := s.store.ToggleFavorite(ctx, userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	s.metrics.Reaction("favorite", saved)
	return saved, nil
}

// IsFavorite reports whether userID has saved the recipe.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.store.IsFavorite(ctx, userID, recipeID)
}

// LikeState is a recipe's like count and whether the viewer is among the likers.
type LikeState struct {
	RecipeID  string `json:"recipe_id"`
	LikeCount int    `json:"like_count"`
	Liked     bool   `json:"liked"`
}

// LikeService manages likes. Every change is broadcast so open recipe pages
// update their counts live.
type LikeService struct {
	store   store.Store
	events  store.EventEmitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLikeService creates a new like service. m may be nil.
func NewLikeService(store store.Store, events store.EventEmitter, m *metrics.Metrics, logger *slog.Logger) *LikeService {
	return &LikeService{store: store, events: orNoop(events), metrics: m, logger: orDiscard(logger)}
}

// Toggle likes or unlikes a visible recipe, then emits a recipe.likes_changed
// event carrying the count read back after the write.
func (s *LikeService) Toggle(ctx context.Context, userID, recipeID string) (*LikeState, error) {
	if _, err := visibleRecipe(ctx, s.store, userID, recipeID); err != nil {
		return nil, err
	}

	liked, count, err := s.store.ToggleLike(ctx, userID, recipeID)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	s.metrics.Reaction("like", liked)
	s.events.Emit(sse.NewLikesChangedEvent(recipeID, count, userID, liked))
	s.logger.Debug("like toggled", "recipe_id", recipeID, "user_id", userID, "liked", liked, "count", count)

	return &LikeState{RecipeID: recipeID, LikeCount: count, Liked: liked}, nil
}

// Count returns a visible recipe's like state for viewerID, who may be empty.
func (s *LikeService) Count(ctx context.Context, viewerID, recipeID string) (*LikeState, error) {
	if _, err := visibleRecipe(ctx, s.store, viewerID, recipeID); err != nil {
		return nil, err
	}

	count, err := s.store.CountLikes(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	state := &LikeState{RecipeID: recipeID, LikeCount: count}
	if viewerID != "" {
		if state.Liked, err = s.store.IsLiked(ctx, viewerID, recipeID); err != nil {
			return nil, fmt.Errorf("is liked: %w", err)
		}
	}
	return state, nil
}

// IsLiked reports whether userID likes the recipe.
func (s *LikeService) IsLiked(ctx context.Context, userID, recipeID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.store.IsLiked(ctx, userID, recipeID)
}
