package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/store/sqlite"
)

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

type testEnv struct {
	store    *sqlite.Store
	index    *search.SearchIndex
	events   *recordingEmitter
	metrics  *metrics.Metrics
	tokens   *auth.TokenService
	sessions *SessionService
	auth     *AuthService
	tags     *TagService
	comments *CommentService
	recipes  *RecipeService
	likes    *LikeService
	favs     *FavoriteService
	profiles *ProfileService
	search   *SearchService
}

// setupServices wires every service over a temp-dir SQLite store and search index.
func setupServices(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{Dir: filepath.Join(dir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(index)

	key, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		store:   st,
		index:   index,
		events:  &recordingEmitter{},
		metrics: metrics.New(),
		tokens:  tokens,
	}
	env.sessions = NewSessionService(st, tokens, nil)
	env.auth = NewAuthService(st, tokens, env.sessions, env.metrics, nil)
	env.tags = NewTagService(st, env.metrics, nil)
	env.comments = NewCommentService(st, env.events, env.metrics, nil)
	env.recipes = NewRecipeService(st, env.tags, env.comments, env.events, env.metrics, nil)
	env.likes = NewLikeService(st, env.events, env.metrics, nil)
	env.favs = NewFavoriteService(st, env.metrics)
	env.profiles = NewProfileService(st, nil)
	env.search = NewSearchService(index, st, env.metrics, nil)
	return env
}

// signup creates an account and returns its auth response.
func (e *testEnv) signup(t *testing.T, email string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), SignupRequest{
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	return resp
}

// createRecipe saves a recipe with one ingredient and one step.
func (e *testEnv) createRecipe(t *testing.T, authorID, title string, publish bool) string {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), authorID, RecipeInput{
		Title:        title,
		Ingredients:  []string{"1 egg"},
		Instructions: []string{"Cook it."},
		Publish:      domain.BoolPtr(publish),
	})
	require.NoError(t, err)
	return r.ID
}
