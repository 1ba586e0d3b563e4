package store

import (
	"context"
	"iter"

	"github.com/simmerapp/simmer-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Profiles
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error)
	SaveProfile(ctx context.Context, profile *domain.Profile) error
	GetDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)

	// Recipes
	CreateRecipe(ctx context.Context, recipe *domain.Recipe, tagIDs []string) error
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe, tagIDs []string) error
	SetRecipePublished(ctx context.Context, recipeID string, published bool) error
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ListPublishedRecipes(ctx context.Context, params PaginationParams) (*PaginatedResult[domain.RecipeSummary], error)
	ListAllPublishedRecipes(ctx context.Context) ([]domain.RecipeSummary, error)
	ListRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]domain.RecipeSummary, error)
	ListFavoriteRecipes(ctx context.Context, userID string) ([]domain.RecipeSummary, error)
	StreamPublishedRecipes(ctx context.Context) iter.Seq2[*domain.Recipe, error]
	CountRecipes(ctx context.Context) (int, error)

	// Tags
	CreateTag(ctx context.Context, name string) (*domain.Tag, error)
	GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error)
	GetTagByKey(ctx context.Context, key string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	GetTagsForRecipe(ctx context.Context, recipeID string) ([]*domain.Tag, error)
	SetRecipeTags(ctx context.Context, recipeID string, tagIDs []string) error

	// Favorites
	ToggleFavorite(ctx context.Context, userID, recipeID string) (bool, error)
	IsFavorite(ctx context.Context, userID, recipeID string) (bool, error)

	// Likes
	ToggleLike(ctx context.Context, userID, recipeID string) (liked bool, count int, err error)
	IsLiked(ctx context.Context, userID, recipeID string) (bool, error)
	CountLikes(ctx context.Context, recipeID string) (int, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, recipeID string) ([]*domain.Comment, error)
}
