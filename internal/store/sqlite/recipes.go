package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/store"
)

// recipeColumns is the ordered list of columns selected in full recipe queries.
// Must match the scan order in scanRecipe.
const recipeColumns = `r.id, r.author_id, r.title, r.description, r.image_url,
	r.prep_time_minutes, r.cook_time_minutes, r.servings, r.difficulty,
	r.ingredients, r.instructions, r.is_published, r.created_at, r.updated_at`

// summaryColumns is the ordered list of columns selected in listing queries.
// Must match the scan order in scanSummary.
const summaryColumns = `r.id, r.author_id, r.title, r.description, r.image_url,
	r.prep_time_minutes, r.cook_time_minutes, r.servings, r.difficulty,
	r.is_published, r.created_at`

// scanRecipe scans a sql.Row (or sql.Rows via its Scan method) into a domain.Recipe.
func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		description  sql.NullString
		imageURL     sql.NullString
		prep         sql.NullInt64
		cook         sql.NullInt64
		servings     sql.NullInt64
		difficulty   sql.NullString
		ingredients  string
		instructions string
		isPublished  int
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&r.ID,
		&r.AuthorID,
		&r.Title,
		&description,
		&imageURL,
		&prep,
		&cook,
		&servings,
		&difficulty,
		&ingredients,
		&instructions,
		&isPublished,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.ImageURL = imageURL.String
	r.PrepTimeMinutes = intPtr(prep)
	r.CookTimeMinutes = intPtr(cook)
	r.Servings = intPtr(servings)
	r.Difficulty = domain.Difficulty(difficulty.String)
	r.IsPublished = isPublished != 0

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return nil, fmt.Errorf("decode instructions: %w", err)
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &r, nil
}

// scanSummary scans a listing row into a domain.RecipeSummary.
func scanSummary(scanner interface{ Scan(dest ...any) error }) (domain.RecipeSummary, error) {
	var r domain.RecipeSummary

	var (
		description sql.NullString
		imageURL    sql.NullString
		prep        sql.NullInt64
		cook        sql.NullInt64
		servings    sql.NullInt64
		difficulty  sql.NullString
		isPublished int
		createdAt   string
	)

	err := scanner.Scan(
		&r.ID,
		&r.AuthorID,
		&r.Title,
		&description,
		&imageURL,
		&prep,
		&cook,
		&servings,
		&difficulty,
		&isPublished,
		&createdAt,
	)
	if err != nil {
		return r, err
	}

	r.Description = description.String
	r.ImageURL = imageURL.String
	r.PrepTimeMinutes = intPtr(prep)
	r.CookTimeMinutes = intPtr(cook)
	r.Servings = intPtr(servings)
	r.Difficulty = domain.Difficulty(difficulty.String)
	r.IsPublished = isPublished != 0
	r.CreatedAt, err = parseTime(createdAt)
	return r, err
}

func scanSummaries(rows *sql.Rows) ([]domain.RecipeSummary, error) {
	defer rows.Close()

	recipes := []domain.RecipeSummary{}
	for rows.Next() {
		r, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func encodeLines(lines []string) (string, error) {
	if lines == nil {
		lines = []string{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateRecipe inserts a recipe and its tag associations in one transaction.
func (s *Store) CreateRecipe(ctx context.Context, recipe *domain.Recipe, tagIDs []string) error {
	ingredients, err := encodeLines(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("encode ingredients: %w", err)
	}
	instructions, err := encodeLines(recipe.Instructions)
	if err != nil {
		return fmt.Errorf("encode instructions: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (
				id, author_id, title, description, image_url,
				prep_time_minutes, cook_time_minutes, servings, difficulty,
				ingredients, instructions, is_published, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			recipe.ID,
			recipe.AuthorID,
			recipe.Title,
			nullString(recipe.Description),
			nullString(recipe.ImageURL),
			nullInt(recipe.PrepTimeMinutes),
			nullInt(recipe.CookTimeMinutes),
			nullInt(recipe.Servings),
			nullString(string(recipe.Difficulty)),
			ingredients,
			instructions,
			boolToInt(recipe.IsPublished),
			formatTime(recipe.CreatedAt),
			formatTime(recipe.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return replaceRecipeTags(ctx, tx, recipe.ID, tagIDs)
	})
	if err != nil {
		return err
	}

	s.indexRecipe(ctx, recipe)
	return nil
}

// UpdateRecipe rewrites a recipe's fields and replaces its tag associations in one transaction.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *domain.Recipe, tagIDs []string) error {
	ingredients, err := encodeLines(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("encode ingredients: %w", err)
	}
	instructions, err := encodeLines(recipe.Instructions)
	if err != nil {
		return fmt.Errorf("encode instructions: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE recipes SET
				title = ?, description = ?, image_url = ?,
				prep_time_minutes = ?, cook_time_minutes = ?, servings = ?, difficulty = ?,
				ingredients = ?, instructions = ?, is_published = ?, updated_at = ?
			WHERE id = ?`,
			recipe.Title,
			nullString(recipe.Description),
			nullString(recipe.ImageURL),
			nullInt(recipe.PrepTimeMinutes),
			nullInt(recipe.CookTimeMinutes),
			nullInt(recipe.Servings),
			nullString(string(recipe.Difficulty)),
			ingredients,
			instructions,
			boolToInt(recipe.IsPublished),
			formatTime(recipe.UpdatedAt),
			recipe.ID,
		)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrRecipeNotFound
		}
		return replaceRecipeTags(ctx, tx, recipe.ID, tagIDs)
	})
	if err != nil {
		return err
	}

	s.indexRecipe(ctx, recipe)
	return nil
}

// SetRecipePublished flips a recipe's publication state.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) SetRecipePublished(ctx context.Context, recipeID string, published bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET is_published = ?, updated_at = ?
		WHERE id = ?`,
		boolToInt(published), formatTime(time.Now()), recipeID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrRecipeNotFound
	}

	s.reindexRecipe(ctx, recipeID)
	return nil
}

// GetRecipe retrieves a recipe by ID regardless of publication state.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)

	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRecipeNotFound
	}
	return r, err
}

// DeleteRecipe removes a recipe. Tags links, likes, favorites and comments cascade.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrRecipeNotFound
	}

	if err := s.searchIndexer.DeleteRecipe(ctx, id); err != nil {
		s.logger.Warn("failed to remove recipe from search index", "recipe_id", id, "error", err)
	}
	return nil
}

// ListPublishedRecipes returns one newest-first page of published recipes.
func (s *Store) ListPublishedRecipes(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[domain.RecipeSummary], error) {
	params.Validate()

	cursor, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	query := `SELECT ` + summaryColumns + ` FROM recipes r WHERE r.is_published = 1`
	args := []any{}
	if cursor != nil {
		query += ` AND (r.created_at < ? OR (r.created_at = ? AND r.id < ?))`
		ts := formatTime(cursor.CreatedAt)
		args = append(args, ts, ts, cursor.ID)
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	items, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[domain.RecipeSummary]{Items: items}
	if len(items) > params.Limit {
		result.Items = items[:params.Limit]
		result.HasMore = true
		last := result.Items[len(result.Items)-1]
		result.NextCursor = store.EncodeCursor(last.CreatedAt, last.ID)
	}
	return result, nil
}

// ListAllPublishedRecipes returns every published recipe, newest first.
func (s *Store) ListAllPublishedRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM recipes r
		WHERE r.is_published = 1
		ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// ListRecipesByAuthor returns an author's recipes in any state, newest first.
// A limit of zero or less returns them all.
func (s *Store) ListRecipesByAuthor(ctx context.Context, authorID string, limit int) ([]domain.RecipeSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM recipes r
		WHERE r.author_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, authorID, limit)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// ListFavoriteRecipes returns the recipes a user has saved, most recently saved first.
// Recipes that have since become someone else's draft are left out.
func (s *Store) ListFavoriteRecipes(ctx context.Context, userID string) ([]domain.RecipeSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM favorites f JOIN recipes r ON r.id = f.recipe_id
		WHERE f.user_id = ? AND (r.is_published = 1 OR r.author_id = f.user_id)
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

// StreamPublishedRecipes yields every published recipe for reindexing.
func (s *Store) StreamPublishedRecipes(ctx context.Context) iter.Seq2[*domain.Recipe, error] {
	return func(yield func(*domain.Recipe, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+recipeColumns+` FROM recipes r WHERE r.is_published = 1 ORDER BY r.created_at`)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRecipe(rows)
			if !yield(r, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// CountRecipes returns the number of stored recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n)
	return n, err
}

// indexRecipe pushes a recipe and its tag names to the search indexer.
// Index failures are logged; the write has already been committed.
func (s *Store) indexRecipe(ctx context.Context, recipe *domain.Recipe) {
	tags, err := s.GetTagsForRecipe(ctx, recipe.ID)
	if err != nil {
		s.logger.Warn("failed to load tags for indexing", "recipe_id", recipe.ID, "error", err)
		return
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	if err := s.searchIndexer.IndexRecipe(ctx, recipe, names); err != nil {
		s.logger.Warn("failed to index recipe", "recipe_id", recipe.ID, "error", err)
	}
}

func (s *Store) reindexRecipe(ctx context.Context, recipeID string) {
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		s.logger.Warn("failed to load recipe for indexing", "recipe_id", recipeID, "error", err)
		return
	}
	s.indexRecipe(ctx, recipe)
}
