package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/sse"
)

func TestLikeService_ToggleEmitsCount(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	fan := env.signup(t, "fan@example.com").User
	ctx := context.Background()
	recipeID := env.createRecipe(t, author.ID, "Pancakes", true)
	before := len(env.events.all())

	state, err := env.likes.Toggle(ctx, fan.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.LikeCount)

	state, err = env.likes.Toggle(ctx, author.ID, recipeID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.LikeCount)

	state, err = env.likes.Toggle(ctx, fan.ID, recipeID)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 1, state.LikeCount)

	events := env.events.all()[before:]
	require.Len(t, events, 3)
	last := events[2].(sse.Event)
	assert.Equal(t, sse.EventLikesChanged, last.Type)
	assert.Equal(t, recipeID, last.RecipeID)
	data := last.Data.(sse.LikesChangedEventData)
	assert.Equal(t, 1, data.LikeCount)
	assert.Equal(t, fan.ID, data.ActorID)
	assert.False(t, data.Liked)
}

func TestLikeService_Count(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	ctx := context.Background()
	recipeID := env.createRecipe(t, author.ID, "Pancakes", true)

	_, err := env.likes.Toggle(ctx, author.ID, recipeID)
	require.NoError(t, err)

	anon, err := env.likes.Count(ctx, "", recipeID)
	require.NoError(t, err)
	assert.Equal(t, 1, anon.LikeCount)
	assert.False(t, anon.Liked)

	mine, err := env.likes.Count(ctx, author.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, mine.Liked)
}

func TestLikeService_DraftIsHidden(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	fan := env.signup(t, "fan@example.com").User
	recipeID := env.createRecipe(t, author.ID, "Draft", false)

	_, err := env.likes.Toggle(context.Background(), fan.ID, recipeID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFavoriteService_Toggle(t *testing.T) {
	env := setupServices(t)
	author := env.signup(t, "chef@example.com").User
	fan := env.signup(t, "fan@example.com").User
	ctx := context.Background()
	recipeID := env.createRecipe(t, author.ID, "Pancakes", true)

	saved, err := env.favs.Toggle(ctx, fan.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, saved)

	is, err := env.favs.IsFavorite(ctx, fan.ID, recipeID)
	require.NoError(t, err)
	assert.True(t, is)

	saved, err = env.favs.Toggle(ctx, fan.ID, recipeID)
	require.NoError(t, err)
	assert.False(t, saved)

	is, err = env.favs.IsFavorite(ctx, "", recipeID)
	require.NoError(t, err)
	assert.False(t, is)
}
