package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/store"
	"github.com/simmerapp/simmer-server/internal/tagging"
)

// TagService manages community tags. Tags are created on first use by the
// recipe form and are never deleted.
type TagService struct {
	store      store.Store
	reconciler *tagging.Reconciler
	logger     *slog.Logger
}

// NewTagService creates a new tag service. m may be nil.
func NewTagService(store store.Store, m *metrics.Metrics, logger *slog.Logger) *TagService {
	logger = orDiscard(logger)
	r := tagging.NewReconciler(store, logger)
	r.OnCreate(func(*domain.Tag) { m.TagCreated() })

	return &TagService{
		store:      store,
		reconciler: r,
		logger:     logger,
	}
}

// List returns all tags ordered by name.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, notFoundAs(err, "tag not found")
	}
	return tag, nil
}

// RecipeTags returns a recipe's tags ordered by name.
func (s *TagService) RecipeTags(ctx context.Context, recipeID string) ([]*domain.Tag, error) {
	tags, err := s.store.GetTagsForRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("get recipe tags: %w", err)
	}
	return tags, nil
}

// Reconcile resolves a form's tag selection into the final tag ID set.
//
// Every selected ID must name an existing tag. newTag, when not blank, is
// matched case-insensitively against existing tags and created if absent.
// A failed create is returned as a TAG_CREATION error and nothing is written.
func (s *TagService) Reconcile(ctx context.Context, selectedIDs []string, newTag string) ([]string, error) {
	known, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	byID := make(map[string]struct{}, len(known))
	for _, t := range known {
		byID[t.ID] = struct{}{}
	}
	for _, tagID := range selectedIDs {
		if _, ok := byID[tagID]; !ok && tagID != "" {
			return nil, domainerrors.ValidationWithDetails("unknown tag",
				map[string]string{"tag_ids": fmt.Sprintf("tag %q does not exist", tagID)})
		}
	}

	result, err := s.reconciler.Reconcile(ctx, tagging.NewIDSet(selectedIDs...), newTag, known)
	if err != nil {
		s.logger.Warn("tag reconcile failed", "new_tag", newTag, "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeTagCreation, "could not create tag")
	}
	return result.Sorted(), nil
}
