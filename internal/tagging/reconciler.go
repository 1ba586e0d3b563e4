// Package tagging turns a recipe form's tag selection into the final set of tag IDs,
// creating at most one new tag along the way.
package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/store"
)

// TagCreator is the store surface the reconciler writes through.
type TagCreator interface {
	// CreateTag inserts a tag with the given normalized name.
	// A name whose key already exists fails with store.ErrAlreadyExists.
	CreateTag(ctx context.Context, name string) (*domain.Tag, error)
	// GetTagByKey returns the tag whose normalize.TagKey equals key.
	GetTagByKey(ctx context.Context, key string) (*domain.Tag, error)
}

// CreationError reports that a new tag could not be created.
// It matches domainerrors.ErrTagCreation and unwraps to the store error.
type CreationError struct {
	Name string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create tag %q: %v", e.Name, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, domainerrors.ErrTagCreation) succeed.
func (e *CreationError) Is(target error) bool {
	return target == domainerrors.ErrTagCreation
}

// Reconciler merges a free-text new tag into a selected tag set.
type Reconciler struct {
	creator TagCreator
	logger  *slog.Logger
	onNew   func(*domain.Tag)
}

// NewReconciler creates a reconciler writing through creator.
func NewReconciler(creator TagCreator, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{creator: creator, logger: logger}
}

// OnCreate registers a callback invoked after a tag has been created.
func (r *Reconciler) OnCreate(fn func(*domain.Tag)) {
	r.onNew = fn
}

// Reconcile returns selected plus the ID of the tag named by newTagText.
//
// Empty or all-whitespace text returns selected unchanged. Otherwise the text is
// normalized and matched case-insensitively against known. When nothing matches,
// exactly one tag is created. If that insert loses a uniqueness race, the store is
// asked once more by key; a hit is used, a miss returns the *CreationError.
//
// selected is never modified.
func (r *Reconciler) Reconcile(ctx context.Context, selected IDSet, newTagText string, known []*domain.Tag) (IDSet, error) {
	name := normalize.TagName(newTagText)
	if name == "" {
		return selected, nil
	}

	key := normalize.TagKey(name)
	if t := findByKey(known, key); t != nil {
		return selected.With(t.ID), nil
	}

	created, err := r.creator.CreateTag(ctx, name)
	if err != nil {
		if !domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, &CreationError{Name: name, Err: err}
		}

		existing, lookupErr := r.creator.GetTagByKey(ctx, key)
		if lookupErr != nil {
			r.logger.Warn("tag lookup after conflict failed",
				"name", name,
				"error", lookupErr,
			)
			return nil, &CreationError{Name: name, Err: err}
		}
		r.logger.Debug("tag created concurrently, reusing", "name", name, "tag_id", existing.ID)
		return selected.With(existing.ID), nil
	}

	r.logger.Info("tag created", "name", created.Name, "tag_id", created.ID)
	if r.onNew != nil {
		r.onNew(created)
	}
	return selected.With(created.ID), nil
}

func findByKey(known []*domain.Tag, key string) *domain.Tag {
	for _, t := range known {
		if t != nil && normalize.TagKey(t.Name) == key {
			return t
		}
	}
	return nil
}
