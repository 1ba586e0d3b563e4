package tagging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/store"
)

type fakeCreator struct {
	tags      map[string]*domain.Tag // by key
	creates   []string
	lookups   int
	createErr error
	// raced, when set, is inserted by a "concurrent" writer just before CreateTag fails.
	raced *domain.Tag
}

func newFakeCreator(existing ...*domain.Tag) *fakeCreator {
	f := &fakeCreator{tags: make(map[string]*domain.Tag)}
	for _, t := range existing {
		f.tags[normalize.TagKey(t.Name)] = t
	}
	return f
}

func (f *fakeCreator) CreateTag(_ context.Context, name string) (*domain.Tag, error) {
	f.creates = append(f.creates, name)
	if f.raced != nil {
		f.tags[normalize.TagKey(f.raced.Name)] = f.raced
		return nil, store.ErrTagExists
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	key := normalize.TagKey(name)
	if _, ok := f.tags[key]; ok {
		return nil, store.ErrTagExists
	}
	t := &domain.Tag{ID: "tag-" + key, Name: name}
	f.tags[key] = t
	return t, nil
}

func (f *fakeCreator) GetTagByKey(_ context.Context, key string) (*domain.Tag, error) {
	f.lookups++
	if t, ok := f.tags[key]; ok {
		return t, nil
	}
	return nil, store.ErrTagNotFound
}

func TestReconcile_EmptyTextReturnsSelection(t *testing.T) {
	creator := newFakeCreator()
	r := NewReconciler(creator, nil)
	selected := NewIDSet("tag-a", "tag-b")

	for _, text := range []string{"", "   ", "\t\n"} {
		got, err := r.Reconcile(context.Background(), selected, text, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"tag-a", "tag-b"}, got.Sorted())
	}
	assert.Empty(t, creator.creates)
}

func TestReconcile_MatchesKnownTagCaseInsensitively(t *testing.T) {
	italian := &domain.Tag{ID: "tag-1", Name: "Italian"}
	creator := newFakeCreator(italian)
	r := NewReconciler(creator, nil)

	got, err := r.Reconcile(context.Background(), NewIDSet(), "  italian ", []*domain.Tag{italian})
	require.NoError(t, err)

	assert.Equal(t, []string{"tag-1"}, got.Sorted())
	assert.Empty(t, creator.creates, "existing tag must not be recreated")
}

func TestReconcile_AddsMatchedIDToSelection(t *testing.T) {
	known := []*domain.Tag{{ID: "tag-5", Name: "Italian"}}
	creator := newFakeCreator(known...)
	r := NewReconciler(creator, nil)

	got, err := r.Reconcile(context.Background(), NewIDSet("tag-1", "tag-2"), "italian", known)
	require.NoError(t, err)

	assert.Equal(t, []string{"tag-1", "tag-2", "tag-5"}, got.Sorted())
	assert.Empty(t, creator.creates)
}

func TestReconcile_MatchesAfterWhitespaceCollapse(t *testing.T) {
	known := []*domain.Tag{{ID: "tag-7", Name: "Comfort Food"}}
	creator := newFakeCreator(known...)
	r := NewReconciler(creator, nil)

	got, err := r.Reconcile(context.Background(), NewIDSet("tag-1"), "COMFORT    food", known)
	require.NoError(t, err)

	assert.Equal(t, []string{"tag-1", "tag-7"}, got.Sorted())
	assert.Empty(t, creator.creates)
}

func TestReconcile_CreatesExactlyOneTag(t *testing.T) {
	creator := newFakeCreator()
	r := NewReconciler(creator, nil)

	var notified *domain.Tag
	r.OnCreate(func(t *domain.Tag) { notified = t })

	got, err := r.Reconcile(context.Background(), NewIDSet("tag-x"), "  Italian   Food  ", nil)
	require.NoError(t, err)

	require.Len(t, creator.creates, 1)
	assert.Equal(t, "Italian Food", creator.creates[0])
	assert.True(t, got.Has("tag-x"))
	assert.True(t, got.Has("tag-italian food"))
	assert.Len(t, got, 2)
	require.NotNil(t, notified)
	assert.Equal(t, "Italian Food", notified.Name)
}

func TestReconcile_DoesNotMutateSelection(t *testing.T) {
	creator := newFakeCreator()
	r := NewReconciler(creator, nil)
	selected := NewIDSet("tag-a")

	got, err := r.Reconcile(context.Background(), selected, "Vegan", nil)
	require.NoError(t, err)

	assert.Len(t, selected, 1)
	assert.Len(t, got, 2)
}

func TestReconcile_AlreadySelectedIsNoop(t *testing.T) {
	known := []*domain.Tag{{ID: "tag-1", Name: "Quick"}}
	r := NewReconciler(newFakeCreator(known...), nil)

	got, err := r.Reconcile(context.Background(), NewIDSet("tag-1"), "quick", known)
	require.NoError(t, err)
	assert.Equal(t, []string{"tag-1"}, got.Sorted())
}

func TestReconcile_CreationFailure(t *testing.T) {
	creator := newFakeCreator()
	creator.createErr = store.ErrUnavailable
	r := NewReconciler(creator, nil)

	got, err := r.Reconcile(context.Background(), NewIDSet("tag-a"), "Vegan", nil)
	require.Error(t, err)
	assert.Nil(t, got)

	var ce *CreationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Vegan", ce.Name)
	assert.ErrorIs(t, err, domainerrors.ErrTagCreation)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Len(t, creator.creates, 1, "insert is not retried")
	assert.Zero(t, creator.lookups)
}

func TestReconcile_ConcurrentCreateReusesExistingTag(t *testing.T) {
	creator := newFakeCreator()
	creator.raced = &domain.Tag{ID: "tag-other", Name: "vegan"}
	r := NewReconciler(creator, nil)

	// The caller's snapshot predates the concurrent insert.
	got, err := r.Reconcile(context.Background(), NewIDSet(), "Vegan", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"tag-other"}, got.Sorted())
	assert.Len(t, creator.creates, 1)
	assert.Equal(t, 1, creator.lookups)
}

func TestReconcile_ConflictWithoutVisibleTagFails(t *testing.T) {
	creator := newFakeCreator()
	creator.createErr = store.ErrTagExists
	r := NewReconciler(creator, nil)

	_, err := r.Reconcile(context.Background(), NewIDSet(), "Vegan", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrTagCreation)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Equal(t, 1, creator.lookups)
}
