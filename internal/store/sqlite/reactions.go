package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simmerapp/simmer-server/internal/store"
)

// toggleRow deletes the (user, recipe) row from table if present, otherwise inserts it.
// Returns true when the row exists afterwards.
func toggleRow(ctx context.Context, tx *sql.Tx, table, userID, recipeID string) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE user_id = ? AND recipe_id = ?`, userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+table+` (user_id, recipe_id, created_at) VALUES (?, ?, ?)`,
		userID, recipeID, formatTime(time.Now()))
	if isForeignKeyViolation(err) {
		return false, store.ErrRecipeNotFound
	}
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", table, err)
	}
	return true, nil
}

func (s *Store) exists(ctx context.Context, table, userID, recipeID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE user_id = ? AND recipe_id = ?`, userID, recipeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFavorite saves or unsaves a recipe for a user and returns the new state.
func (s *Store) ToggleFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	var saved bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = toggleRow(ctx, tx, "favorites", userID, recipeID)
		return err
	})
	return saved, err
}

// IsFavorite reports whether a user has saved a recipe.
func (s *Store) IsFavorite(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.exists(ctx, "favorites", userID, recipeID)
}

// ToggleLike likes or unlikes a recipe and returns the new state together with
// the recipe's like count, read inside the same transaction.
func (s *Store) ToggleLike(ctx context.Context, userID, recipeID string) (bool, int, error) {
	var (
		liked bool
		count int
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if liked, err = toggleRow(ctx, tx, "likes", userID, recipeID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM likes WHERE recipe_id = ?`, recipeID).Scan(&count)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// IsLiked reports whether a user has liked a recipe.
func (s *Store) IsLiked(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.exists(ctx, "likes", userID, recipeID)
}

// CountLikes returns the number of likes on a recipe.
func (s *Store) CountLikes(ctx context.Context, recipeID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE recipe_id = ?`, recipeID).Scan(&n)
	return n, err
}
