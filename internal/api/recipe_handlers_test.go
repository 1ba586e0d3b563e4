package api

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmerapp/simmer-server/internal/domain"
)

func pancakes(publish bool) map[string]any {
	return map[string]any{
		"title":             "Buttermilk Pancakes",
		"description":       "Fluffy weekend pancakes",
		"prep_time_minutes": 10,
		"cook_time_minutes": 15,
		"servings":          4,
		"difficulty":        "Easy",
		"ingredients":       []string{"2 cups flour", "2 cups buttermilk", "", "2 eggs"},
		"instructions":      []string{"Whisk", "Fry"},
		"publish":           publish,
	}
}

func TestCreateRecipe(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.signup(t, "cook@example.com")

	body := pancakes(false)
	body["new_tag"] = "  Weekend   Breakfast "
	resp := ts.api.Post("/api/v1/recipes", bearer(token), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[RecipeResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, userID, env.Data.Recipe.AuthorID)
	assert.False(t, env.Data.Recipe.IsPublished, "recipes start as drafts")
	assert.Equal(t, 25, env.Data.TotalTime)
	assert.Equal(t, []string{"2 cups flour", "2 cups buttermilk", "2 eggs"}, env.Data.Recipe.Ingredients)
	require.Len(t, env.Data.Tags, 1)
	assert.Equal(t, "Weekend Breakfast", env.Data.Tags[0].Name)
}

func TestCreateRecipe_ReusesExistingTagCaseInsensitively(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "cook@example.com")

	first := pancakes(true)
	first["new_tag"] = "Breakfast"
	ts.createRecipe(t, token, first)

	second := pancakes(true)
	second["title"] = "Waffles"
	second["new_tag"] = "  BREAKFAST"
	id := ts.createRecipe(t, token, second)

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)
	tags := decode[ListTagsResponse](t, resp.Body.Bytes()).Data.Tags
	require.Len(t, tags, 1)
	assert.Equal(t, "Breakfast", tags[0].Name)

	resp = ts.api.Get("/api/v1/recipes/" + id + "/tags")
	require.Equal(t, http.StatusOK, resp.Code)
	recipeTags := decode[ListTagsResponse](t, resp.Body.Bytes()).Data.Tags
	require.Len(t, recipeTags, 1)
	assert.Equal(t, tags[0].ID, recipeTags[0].ID)
}

func TestCreateRecipe_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.signup(t, "cook@example.com")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"blank title", map[string]any{"title": "   "}, "title"},
		{"unknown difficulty", map[string]any{"title": "Soup", "difficulty": "Impossible"}, "difficulty"},
		{"negative time", map[string]any{"title": "Soup", "prep_time_minutes": -5}, "prep_time_minutes"},
		{"bad image URL", map[string]any{"title": "Soup", "image_url": "not a url"}, "image_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/recipes", bearer(token), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			env := decode[any](t, resp.Body.Bytes())
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Contains(t, env.Details, tt.field)
		})
	}
}

func TestCreateRecipe_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/recipes", pancakes(true))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetRecipe_DraftVisibility(t *testing.T) {
	ts := setupTestServer(t)
	author, _ := ts.signup(t, "author@example.com")
	other, _ := ts.signup(t, "other@example.com")
	id := ts.createRecipe(t, author, pancakes(false))

	resp := ts.api.Get("/api/v1/recipes/"+id, bearer(author))
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[RecipeDetailResponse](t, resp.Body.Bytes()).Data
	assert.True(t, detail.IsOwner)
	assert.Equal(t, "author", detail.AuthorName)
	assert.Equal(t, 25, detail.TotalTime)

	resp = ts.api.Get("/api/v1/recipes/"+id, bearer(other))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/recipes/" + id)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPublishRecipe(t *testing.T) {
	ts := setupTestServer(t)
	author, _ := ts.signup(t, "author@example.com")
	other, _ := ts.signup(t, "other@example.com")
	id := ts.createRecipe(t, author, pancakes(false))

	resp := ts.api.Post("/api/v1/recipes/"+id+"/publish", bearer(other))
	assert.Equal(t, http.StatusNotFound, resp.Code, "someone else's draft does not exist for them")

	resp = ts.api.Post("/api/v1/recipes/"+id+"/publish", bearer(author))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[RecipeResponse](t, resp.Body.Bytes()).Data.Recipe.IsPublished)

	resp = ts.api.Get("/api/v1/recipes/" + id)
	assert.Equal(t, http.StatusOK, resp.Code, "published recipes are public")
}

func TestUpdateRecipe(t *testing.T) {
	ts := setupTestServer(t)
	author, _ := ts.signup(t, "author@example.com")
	other, _ := ts.signup(t, "other@example.com")
	body := pancakes(true)
	body["new_tag"] = "Breakfast"
	id := ts.createRecipe(t, author, body)

	t.Run("author changes only the fields sent", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/recipes/"+id, bearer(author), map[string]any{
			"title":      "Blueberry Pancakes",
			"difficulty": "Medium",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		got := decode[RecipeResponse](t, resp.Body.Bytes()).Data
		assert.Equal(t, "Blueberry Pancakes", got.Recipe.Title)
		assert.Equal(t, domain.DifficultyMedium, got.Recipe.Difficulty)
		assert.Equal(t, "Fluffy weekend pancakes", got.Recipe.Description)
		assert.Equal(t, 25, got.TotalTime)
		assert.Equal(t, []string{"Whisk", "Fry"}, got.Recipe.Instructions)
		assert.True(t, got.Recipe.IsPublished, "leaving out publish keeps the recipe public")
		require.Len(t, got.Tags, 1)
		assert.Equal(t, "Breakfast", got.Tags[0].Name)

		resp = ts.api.Get("/api/v1/recipes/"+id, bearer(other))
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("emptying ingredients and instructions is rejected", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/recipes/"+id, bearer(author), map[string]any{
			"ingredients":  []string{},
			"instructions": []string{" "},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		env := decode[any](t, resp.Body.Bytes())
		assert.Contains(t, env.Details, "ingredients")
		assert.Contains(t, env.Details, "instructions")
	})

	t.Run("publish false returns it to draft", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/recipes/"+id, bearer(author), map[string]any{"publish": false})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.False(t, decode[RecipeResponse](t, resp.Body.Bytes()).Data.Recipe.IsPublished)

		resp = ts.api.Get("/api/v1/recipes/"+id, bearer(other))
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("non-author is not allowed", func(t *testing.T) {
		resp := ts.api.Patch("/api/v1/recipes/"+id, bearer(other), map[string]any{"title": "Hijack"})
		assert.Equal(t, http.StatusNotFound, resp.Code, "the recipe is a draft again, so it is hidden")
	})
}

func TestUpdateRecipe_ForbiddenOnPublished(t *testing.T) {
	ts := setupTestServer(t)
	author, _ := ts.signup(t, "author@example.com")
	other, _ := ts.signup(t, "other@example.com")
	id := ts.createRecipe(t, author, pancakes(true))

	resp := ts.api.Patch("/api/v1/recipes/"+id, bearer(other), map[string]any{"title": "Hijack"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[any](t, resp.Body.Bytes()).Code)
}

func TestDeleteRecipe(t *testing.T) {
	ts := setupTestServer(t)
	author, _ := ts.signup(t, "author@example.com")
	other, _ := ts.signup(t, "other@example.com")
	id := ts.createRecipe(t, author, pancakes(true))

	resp := ts.api.Delete("/api/v1/recipes/"+id, bearer(other))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/recipes/"+id, bearer(author))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/recipes/" + id)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// Huma prepends a $schema field to every response body with reflect.StructOf,
// which cannot place an embedded type with methods after it.
func TestResponseBodies_AcceptSchemaField(t *testing.T) {
	ts := setupTestServer(t)
	oapi := ts.api.OpenAPI()
	registry := oapi.Components.Schemas

	checked := 0
	for path, item := range oapi.Paths {
		for _, op := range []*huma.Operation{item.Get, item.Post, item.Put, item.Patch, item.Delete} {
			if op == nil {
				continue
			}
			for _, resp := range op.Responses {
				for _, content := range resp.Content {
					if content.Schema == nil || content.Schema.Ref == "" {
						continue
					}
					typ := registry.TypeFromRef(content.Schema.Ref)
					for typ.Kind() == reflect.Pointer {
						typ = typ.Elem()
					}
					if typ.Kind() != reflect.Struct {
						continue
					}

					fields := []reflect.StructField{{Name: "Schema", Type: reflect.TypeFor[string](), Tag: `json:"$schema"`}}
					for i := range typ.NumField() {
						if f := typ.Field(i); f.IsExported() {
							fields = append(fields, f)
						}
					}
					assert.NotPanics(t, func() { reflect.StructOf(fields) }, "%s %s returns %s", op.Method, path, typ)
					checked++
				}
			}
		}
	}
	assert.Positive(t, checked)
}
