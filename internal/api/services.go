package api

import (
	"github.com/simmerapp/simmer-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Session  *service.SessionService
	Recipe   *service.RecipeService
	Tag      *service.TagService
	Favorite *service.FavoriteService
	Like     *service.LikeService
	Comment  *service.CommentService
	Profile  *service.ProfileService
	Search   *service.SearchService // Full-text search (may report unavailable)
}
