package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/sse"
	"github.com/simmerapp/simmer-server/internal/store/sqlite"
)

// testEnvelope decodes the standard response envelope.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

// testServer wraps the full server: every middleware, API route and page.
type testServer struct {
	*Server
	api     humatest.TestAPI
	db      *sqlite.Store
	manager *sse.Manager
}

// setupTestServer builds a server over a temp-dir SQLite store and search index.
func setupTestServer(t *testing.T) *testServer {
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

	manager := sse.NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)
	t.Cleanup(cancel)

	m := metrics.New()
	sessions := service.NewSessionService(st, tokens, nil)
	tags := service.NewTagService(st, m, nil)
	comments := service.NewCommentService(st, manager, m, nil)
	services := &Services{
		Auth:     service.NewAuthService(st, tokens, sessions, m, nil),
		Session:  sessions,
		Tag:      tags,
		Comment:  comments,
		Recipe:   service.NewRecipeService(st, tags, comments, manager, m, nil),
		Favorite: service.NewFavoriteService(st, m),
		Like:     service.NewLikeService(st, manager, m, nil),
		Profile:  service.NewProfileService(st, nil),
		Search:   service.NewSearchService(index, st, m, nil),
	}

	server := NewServer(st, services, manager, m, Options{
		Name:                   "Simmer Test",
		AuthRateLimitPerMinute: 1000,
		AccessTokenDuration:    15 * time.Minute,
		RefreshTokenDuration:   24 * time.Hour,
	}, nil)
	t.Cleanup(server.Shutdown)

	return &testServer{
		Server:  server,
		api:     humatest.Wrap(t, server.API()),
		db:      st,
		manager: manager,
	}
}

// decode unmarshals an envelope from a recorded response.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// signup creates an account through the API and returns its access token and user ID.
func (ts *testServer) signup(t *testing.T, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":            email,
		"password":         "simmer-secret",
		"confirm_password": "simmer-secret",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "signup failed: %s", resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	return env.Data.AccessToken, env.Data.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// createRecipe creates a recipe through the API and returns its ID.
func (ts *testServer) createRecipe(t *testing.T, token string, body map[string]any) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/recipes", bearer(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, "create failed: %s", resp.Body.String())

	env := decode[RecipeResponse](t, resp.Body.Bytes())
	require.NotNil(t, env.Data.Recipe)
	require.NotEmpty(t, env.Data.Recipe.ID)
	return env.Data.Recipe.ID
}
