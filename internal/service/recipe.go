package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/sse"
	"github.com/simmerapp/simmer-server/internal/store"
)

// RecipeInput is the create/edit form for a recipe.
// Ingredients and Instructions hold one entry per element; blank entries are dropped.
// A nil Publish keeps the current status: drafts stay drafts and published recipes stay published.
type RecipeInput struct {
	Title           string   `json:"title" form:"title" validate:"notblank,max=200"`
	Description     string   `json:"description" form:"description" validate:"max=2000"`
	ImageURL        string   `json:"image_url" form:"image_url" validate:"omitempty,http_url,max=2048"`
	PrepTimeMinutes *int     `json:"prep_time_minutes" form:"prep_time_minutes" validate:"omitempty,gte=0,lte=10080"`
	CookTimeMinutes *int     `json:"cook_time_minutes" form:"cook_time_minutes" validate:"omitempty,gte=0,lte=10080"`
	Servings        *int     `json:"servings" form:"servings" validate:"omitempty,gte=1,lte=1000"`
	Difficulty      string   `json:"difficulty" form:"difficulty" validate:"difficulty"`
	Ingredients     []string `json:"ingredients" form:"ingredients" validate:"max=200"`
	Instructions    []string `json:"instructions" form:"instructions" validate:"max=200"`
	TagIDs          []string `json:"tag_ids" form:"tag_ids" validate:"max=50"`
	NewTag          string   `json:"new_tag" form:"new_tag" validate:"max=50"`
	Publish         *bool    `json:"publish" form:"publish"`
}

// clean trims free text and drops blank lines before validation.
func (in *RecipeInput) clean() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = normalize.PlainText(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Difficulty = strings.TrimSpace(in.Difficulty)
	in.Ingredients = cleanLines(in.Ingredients)
	in.Instructions = cleanLines(in.Instructions)
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.SplitLines(normalize.PlainText(l))...)
	}
	return out
}

func (in *RecipeInput) difficulty() domain.Difficulty {
	if d, err := domain.ParseDifficulty(in.Difficulty); err == nil {
		return d
	}
	return domain.DifficultyEasy
}

// apply copies the input's fields onto r.
func (in *RecipeInput) apply(r *domain.Recipe) {
	r.Title = in.Title
	r.Description = in.Description
	r.ImageURL = in.ImageURL
	r.PrepTimeMinutes = in.PrepTimeMinutes
	r.CookTimeMinutes = in.CookTimeMinutes
	r.Servings = in.Servings
	r.Difficulty = in.difficulty()
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	if in.Publish != nil {
		r.IsPublished = *in.Publish
	}
}

// RecipePatch is a partial edit. Nil fields keep the stored value; a non-nil
// empty slice clears ingredients, instructions or tags.
type RecipePatch struct {
	Title           *string
	Description     *string
	ImageURL        *string
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
	Difficulty      *string
	Ingredients     []string
	Instructions    []string
	TagIDs          []string
	NewTag          string
	Publish         *bool
}

// over layers the patch on top of the stored recipe and its current tags.
func (p RecipePatch) over(r *domain.Recipe, tags []*domain.Tag) RecipeInput {
	in := RecipeInput{
		Title:           r.Title,
		Description:     r.Description,
		ImageURL:        r.ImageURL,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      string(r.Difficulty),
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		NewTag:          p.NewTag,
		Publish:         p.Publish,
	}
	for _, t := range tags {
		in.TagIDs = append(in.TagIDs, t.ID)
	}

	setIf(&in.Title, p.Title)
	setIf(&in.Description, p.Description)
	setIf(&in.ImageURL, p.ImageURL)
	setIf(&in.Difficulty, p.Difficulty)
	if p.PrepTimeMinutes != nil {
		in.PrepTimeMinutes = p.PrepTimeMinutes
	}
	if p.CookTimeMinutes != nil {
		in.CookTimeMinutes = p.CookTimeMinutes
	}
	if p.Servings != nil {
		in.Servings = p.Servings
	}
	if p.Ingredients != nil {
		in.Ingredients = p.Ingredients
	}
	if p.Instructions != nil {
		in.Instructions = p.Instructions
	}
	if p.TagIDs != nil {
		in.TagIDs = p.TagIDs
	}
	return in
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// RecipeService manages recipes and the feeds that list them.
type RecipeService struct {
	store    store.Store
	tags     *TagService
	comments *CommentService
	events   store.EventEmitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewRecipeService creates a new recipe service. m may be nil.
func NewRecipeService(
	store store.Store,
	tags *TagService,
	comments *CommentService,
	events store.EventEmitter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		store:    store,
		tags:     tags,
		comments: comments,
		events:   orNoop(events),
		metrics:  m,
		logger:   orDiscard(logger),
	}
}

// Create saves a new recipe authored by authorID.
// Tags are reconciled first; the recipe and its tag links are written in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID string, input RecipeInput) (*domain.Recipe, error) {
	input.clean()
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	tagIDs, err := s.tags.Reconcile(ctx, input.TagIDs, input.NewTag)
	if err != nil {
		return nil, err
	}

	recipeID, err := id.Generate(id.Recipe)
	if err != nil {
		return nil, fmt.Errorf("generate recipe ID: %w", err)
	}

	recipe := &domain.Recipe{
		Entity:   domain.Entity{ID: recipeID},
		AuthorID: authorID,
	}
	input.apply(recipe)
	recipe.InitTimestamps()

	if err := s.store.CreateRecipe(ctx, recipe, tagIDs); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.metrics.RecipeEvent("create")
	if recipe.IsPublished {
		s.events.Emit(sse.NewRecipePublishedEvent(recipe.Summary()))
	}
	s.logger.Info("recipe created",
		"recipe_id", recipe.ID,
		"author_id", authorID,
		"published", recipe.IsPublished,
		"tags", len(tagIDs),
	)

	return recipe, nil
}

// Update rewrites a recipe. Only the author may edit; at least one ingredient
// and one instruction are required. Tag links are replaced wholesale.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID string, input RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.owned(ctx, userID, recipeID, "edit")
	if err != nil {
		return nil, err
	}
	return s.update(ctx, recipe, input)
}

// Patch edits only the fields the patch sets, keeping everything else,
// tag links included. The merged recipe is checked as Update checks it.
func (s *RecipeService) Patch(ctx context.Context, userID, recipeID string, patch RecipePatch) (*domain.Recipe, error) {
	recipe, err := s.owned(ctx, userID, recipeID, "edit")
	if err != nil {
		return nil, err
	}
	tags, err := s.store.GetTagsForRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe tags: %w", err)
	}
	return s.update(ctx, recipe, patch.over(recipe, tags))
}

func (s *RecipeService) update(ctx context.Context, recipe *domain.Recipe, input RecipeInput) (*domain.Recipe, error) {
	input.clean()
	if err := validate.Validate(input); err != nil {
		return nil, err
	}
	details := map[string]string{}
	if len(input.Ingredients) == 0 {
		details["ingredients"] = "at least one ingredient is required"
	}
	if len(input.Instructions) == 0 {
		details["instructions"] = "at least one instruction is required"
	}
	if len(details) > 0 {
		return nil, domainerrors.ValidationWithDetails("recipe is incomplete", details)
	}

	tagIDs, err := s.tags.Reconcile(ctx, input.TagIDs, input.NewTag)
	if err != nil {
		return nil, err
	}

	wasPublished := recipe.IsPublished
	input.apply(recipe)
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe, tagIDs); err != nil {
		return nil, notFoundAs(err, "recipe not found")
	}

	s.metrics.RecipeEvent("update")
	if recipe.IsPublished && !wasPublished {
		s.events.Emit(sse.NewRecipePublishedEvent(recipe.Summary()))
	}

	return recipe, nil
}

// Publish makes a draft visible to everyone. Publishing twice is a no-op.
func (s *RecipeService) Publish(ctx context.Context, userID, recipeID string) (*domain.Recipe, error) {
	recipe, err := s.owned(ctx, userID, recipeID, "publish")
	if err != nil {
		return nil, err
	}
	if recipe.IsPublished {
		return recipe, nil
	}

	if err := s.store.SetRecipePublished(ctx, recipeID, true); err != nil {
		return nil, notFoundAs(err, "recipe not found")
	}
	recipe.IsPublished = true

	s.metrics.RecipeEvent("publish")
	s.events.Emit(sse.NewRecipePublishedEvent(recipe.Summary()))
	s.logger.Info("recipe published", "recipe_id", recipeID)

	return recipe, nil
}

// Delete removes a recipe with its tag links, likes, favorites and comments.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID string) error {
	if _, err := s.owned(ctx, userID, recipeID, "delete"); err != nil {
		return err
	}

	if err := s.store.DeleteRecipe(ctx, recipeID); err != nil {
		return notFoundAs(err, "recipe not found")
	}

	s.metrics.RecipeEvent("delete")
	s.events.Emit(sse.NewRecipeDeletedEvent(recipeID))
	s.logger.Info("recipe deleted", "recipe_id", recipeID, "user_id", userID)

	return nil
}

// Get returns everything the recipe page shows to viewerID, who may be empty.
// Someone else's draft is reported as not found.
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID string) (*domain.RecipeDetail, error) {
	recipe, err := visibleRecipe(ctx, s.store, viewerID, recipeID)
	if err != nil {
		return nil, err
	}

	detail := &domain.RecipeDetail{
		Recipe:  recipe,
		IsOwner: recipe.IsOwnedBy(viewerID),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := s.store.GetDisplayNames(gctx, []string{recipe.AuthorID})
		if err != nil {
			return fmt.Errorf("author name: %w", err)
		}
		detail.AuthorName = names[recipe.AuthorID]
		if p, err := s.store.GetProfile(gctx, recipe.AuthorID); err == nil {
			detail.Author = p
		}
		return nil
	})
	g.Go(func() error {
		tags, err := s.tags.RecipeTags(gctx, recipeID)
		detail.Tags = tags
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountLikes(gctx, recipeID)
		detail.LikeCount = n
		return err
	})
	g.Go(func() error {
		comments, err := s.comments.list(gctx, recipeID)
		detail.Comments = comments
		return err
	})
	if viewerID != "" {
		g.Go(func() error {
			liked, err := s.store.IsLiked(gctx, viewerID, recipeID)
			detail.IsLiked = liked
			return err
		})
		g.Go(func() error {
			fav, err := s.store.IsFavorite(gctx, viewerID, recipeID)
			detail.IsFavorite = fav
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load recipe detail: %w", err)
	}

	return detail, nil
}

// Tags returns the tags of a recipe visible to viewerID.
func (s *RecipeService) Tags(ctx context.Context, viewerID, recipeID string) ([]*domain.Tag, error) {
	if _, err := visibleRecipe(ctx, s.store, viewerID, recipeID); err != nil {
		return nil, err
	}
	return s.tags.RecipeTags(ctx, recipeID)
}

// GetForEdit returns a recipe and its tag IDs for the edit form. Author only.
func (s *RecipeService) GetForEdit(ctx context.Context, userID, recipeID string) (*domain.Recipe, []*domain.Tag, error) {
	recipe, err := s.owned(ctx, userID, recipeID, "edit")
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.tags.RecipeTags(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}
	return recipe, tags, nil
}

// owned loads a recipe and checks that userID wrote it.
// Someone else's draft is reported as not found rather than forbidden.
func (s *RecipeService) owned(ctx context.Context, userID, recipeID, action string) (*domain.Recipe, error) {
	recipe, err := visibleRecipe(ctx, s.store, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipe.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden("only the author can " + action + " this recipe")
	}
	return recipe, nil
}

// visibleRecipe loads a recipe that viewerID is allowed to see.
func visibleRecipe(ctx context.Context, st store.Store, viewerID, recipeID string) (*domain.Recipe, error) {
	recipe, err := st.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, notFoundAs(err, "recipe not found")
	}
	if !recipe.VisibleTo(viewerID) {
		return nil, domainerrors.NotFound("recipe not found")
	}
	return recipe, nil
}
