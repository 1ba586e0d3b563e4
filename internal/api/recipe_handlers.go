package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipes",
		Summary:       "Create recipe",
		Description:   "Creates a recipe as a draft or published. Selected and new tags are reconciled first.",
		Tags:          []string{"Recipes"},
		Security:      authOperation,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a recipe with its author, tags, likes and comments. Drafts are visible to their author only.",
		Tags:        []string{"Recipes"},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Changes only the fields present in the body; everything else, tags included, is kept. Author only.",
		Tags:        []string{"Recipes"},
		Security:    authOperation,
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes/{id}/publish",
		Summary:     "Publish recipe",
		Description: "Makes a draft visible to everyone. Publishing twice is a no-op. Author only.",
		Tags:        []string{"Recipes"},
		Security:    authOperation,
	}, s.handlePublishRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/api/v1/recipes/{id}",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe with its tags, likes, favorites and comments. Author only.",
		Tags:          []string{"Recipes"},
		Security:      authOperation,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// RecipeRequest is the create body for a recipe.
type RecipeRequest struct {
	Title           string   `json:"title" doc:"Recipe title"`
	Description     string   `json:"description,omitempty" doc:"Short description"`
	ImageURL        string   `json:"image_url,omitempty" doc:"Image URL (http or https)"`
	PrepTimeMinutes *int     `json:"prep_time_minutes,omitempty" doc:"Preparation time in minutes"`
	CookTimeMinutes *int     `json:"cook_time_minutes,omitempty" doc:"Cooking time in minutes"`
	Servings        *int     `json:"servings,omitempty" doc:"Number of servings"`
	Difficulty      string   `json:"difficulty,omitempty" doc:"Easy, Medium or Hard (default Easy)"`
	Ingredients     []string `json:"ingredients,omitempty" doc:"One ingredient per entry"`
	Instructions    []string `json:"instructions,omitempty" doc:"One step per entry"`
	TagIDs          []string `json:"tag_ids,omitempty" doc:"Existing tag IDs to attach"`
	NewTag          string   `json:"new_tag,omitempty" doc:"Name of a tag to find or create and attach"`
	Publish         bool     `json:"publish,omitempty" doc:"Publish immediately instead of saving a draft"`
}

func (r RecipeRequest) toInput() service.RecipeInput {
	return service.RecipeInput{
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		TagIDs:          r.TagIDs,
		NewTag:          r.NewTag,
		Publish:         &r.Publish,
	}
}

// RecipePatchRequest is the body of a partial recipe edit. Absent fields keep
// their stored value; an empty list clears ingredients, instructions or tags.
type RecipePatchRequest struct {
	Title           *string  `json:"title,omitempty" doc:"Recipe title"`
	Description     *string  `json:"description,omitempty" doc:"Short description"`
	ImageURL        *string  `json:"image_url,omitempty" doc:"Image URL (http or https)"`
	PrepTimeMinutes *int     `json:"prep_time_minutes,omitempty" doc:"Preparation time in minutes"`
	CookTimeMinutes *int     `json:"cook_time_minutes,omitempty" doc:"Cooking time in minutes"`
	Servings        *int     `json:"servings,omitempty" doc:"Number of servings"`
	Difficulty      *string  `json:"difficulty,omitempty" doc:"Easy, Medium or Hard"`
	Ingredients     []string `json:"ingredients,omitempty" doc:"One ingredient per entry"`
	Instructions    []string `json:"instructions,omitempty" doc:"One step per entry"`
	TagIDs          []string `json:"tag_ids,omitempty" doc:"Replacement set of tag IDs"`
	NewTag          string   `json:"new_tag,omitempty" doc:"Name of a tag to find or create and attach"`
	Publish         *bool    `json:"publish,omitempty" doc:"true publishes, false returns the recipe to draft"`
}

func (r RecipePatchRequest) toPatch() service.RecipePatch {
	return service.RecipePatch{
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		TagIDs:          r.TagIDs,
		NewTag:          r.NewTag,
		Publish:         r.Publish,
	}
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body RecipeRequest
}

// UpdateRecipeInput wraps the patch request for Huma.
type UpdateRecipeInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body RecipePatchRequest
}

// RecipeIDInput addresses one recipe.
type RecipeIDInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

// RecipeResponse is a recipe with its tags.
type RecipeResponse struct {
	Recipe    *domain.Recipe `json:"recipe"`
	TotalTime int            `json:"total_time_minutes" doc:"Prep plus cook minutes"`
	Tags      []*domain.Tag  `json:"tags" doc:"Tags sorted by name"`
}

// RecipeOutput wraps a recipe for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// RecipeDetailResponse is everything the recipe page shows.
type RecipeDetailResponse struct {
	Recipe     *domain.Recipe    `json:"recipe"`
	TotalTime  int               `json:"total_time_minutes" doc:"Prep plus cook minutes"`
	Author     *domain.Profile   `json:"author"`
	AuthorName string            `json:"author_name"`
	Tags       []*domain.Tag     `json:"tags" doc:"Tags sorted by name"`
	LikeCount  int               `json:"like_count"`
	IsLiked    bool              `json:"is_liked"`
	IsFavorite bool              `json:"is_favorite" doc:"Saved by the viewer"`
	IsOwner    bool              `json:"is_owner"`
	Comments   []*domain.Comment `json:"comments" doc:"Oldest first"`
}

// RecipeDetailOutput wraps the recipe detail for Huma.
type RecipeDetailOutput struct {
	Body RecipeDetailResponse
}

// === Handlers ===

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Create(ctx, userID, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return s.recipeOutput(ctx, recipe)
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeDetailOutput, error) {
	detail, err := s.services.Recipe.Get(ctx, optionalUserID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeDetailOutput{Body: RecipeDetailResponse{
		Recipe:     detail.Recipe,
		TotalTime:  detail.Recipe.TotalTime(),
		Author:     detail.Author,
		AuthorName: detail.AuthorName,
		Tags:       detail.Tags,
		LikeCount:  detail.LikeCount,
		IsLiked:    detail.IsLiked,
		IsFavorite: detail.IsFavorite,
		IsOwner:    detail.IsOwner,
		Comments:   detail.Comments,
	}}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Patch(ctx, userID, input.ID, input.Body.toPatch())
	if err != nil {
		return nil, err
	}

	return s.recipeOutput(ctx, recipe)
}

func (s *Server) handlePublishRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipe.Publish(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return s.recipeOutput(ctx, recipe)
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipe.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}

// === Helpers ===

func (s *Server) recipeOutput(ctx context.Context, recipe *domain.Recipe) (*RecipeOutput, error) {
	tags, err := s.services.Tag.RecipeTags(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: RecipeResponse{
		Recipe:    recipe,
		TotalTime: recipe.TotalTime(),
		Tags:      tags,
	}}, nil
}
