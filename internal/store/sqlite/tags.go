package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `t.id, t.name, t.created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)

	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTags(rows *sql.Rows) ([]*domain.Tag, error) {
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag inserts a tag with the given name, stored in normalized form.
// Returns store.ErrTagExists when a tag with the same key already exists.
func (s *Store) CreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	name = normalize.TagName(name)
	if name == "" {
		return nil, store.ErrInvalidInput.WithMessage("tag name is empty")
	}

	tagID, err := id.Generate(id.Tag)
	if err != nil {
		return nil, fmt.Errorf("generate tag id: %w", err)
	}

	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, name_key, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID,
		t.Name,
		normalize.TagKey(t.Name),
		formatTime(t.CreatedAt),
	)
	if isUniqueViolation(err) {
		return nil, store.ErrTagExists
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByID retrieves a tag by its ID.
// Returns store.ErrTagNotFound if the tag does not exist.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.id = ?`, tagID)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTagNotFound
	}
	return t, err
}

// GetTagByKey retrieves a tag by its normalized key (see normalize.TagKey).
// Returns store.ErrTagNotFound if the tag does not exist.
func (s *Store) GetTagByKey(ctx context.Context, key string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.name_key = ?`, key)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTagNotFound
	}
	return t, err
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags t ORDER BY t.name_key ASC`)
	if err != nil {
		return nil, err
	}
	return scanTags(rows)
}

// GetTagsForRecipe returns a recipe's tags ordered by name.
func (s *Store) GetTagsForRecipe(ctx context.Context, recipeID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+`
		FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ?
		ORDER BY t.name_key ASC`, recipeID)
	if err != nil {
		return nil, err
	}
	return scanTags(rows)
}

// SetRecipeTags replaces all tags for a recipe in a single transaction.
func (s *Store) SetRecipeTags(ctx context.Context, recipeID string, tagIDs []string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceRecipeTags(ctx, tx, recipeID, tagIDs)
	})
	if err != nil {
		return err
	}
	s.reindexRecipe(ctx, recipeID)
	return nil
}

// replaceRecipeTags deletes the recipe's existing recipe_tags rows and inserts the new set.
// An unknown tag ID fails with store.ErrTagNotFound and the caller's transaction rolls back.
func replaceRecipeTags(ctx context.Context, tx *sql.Tx, recipeID string, tagIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("delete recipe_tags: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO recipe_tags (recipe_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			recipeID,
			tagID,
			now,
		)
		if isForeignKeyViolation(err) {
			return store.ErrTagNotFound.WithCause(err)
		}
		if err != nil {
			return fmt.Errorf("insert recipe_tag: %w", err)
		}
	}
	return nil
}
