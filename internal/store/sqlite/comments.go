package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/store"
)

// commentColumns is the ordered list of columns selected in comment queries.
// Must match the scan order in scanComment.
const commentColumns = `c.id, c.recipe_id, c.user_id, c.content, c.created_at, c.updated_at,
	u.email, p.username, p.full_name`

const commentFrom = `comments c
	JOIN users u ON u.id = c.user_id
	LEFT JOIN profiles p ON p.user_id = c.user_id`

// scanComment scans a comment row, resolving the author's display name.
func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var (
		c                  domain.Comment
		createdAt          string
		updatedAt          string
		email              string
		username, fullName sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&c.RecipeID,
		&c.UserID,
		&c.Content,
		&createdAt,
		&updatedAt,
		&email,
		&username,
		&fullName,
	)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	author := &domain.Profile{Username: username.String, FullName: fullName.String}
	c.AuthorName = author.DisplayName(email)

	return &c, nil
}

// CreateComment inserts a comment.
// Returns store.ErrRecipeNotFound if the recipe does not exist.
func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, recipe_id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.RecipeID,
		comment.UserID,
		comment.Content,
		formatTime(comment.CreatedAt),
		formatTime(comment.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if isForeignKeyViolation(err) {
		return store.ErrRecipeNotFound
	}
	return err
}

// GetComment retrieves a comment by ID.
// Returns store.ErrCommentNotFound if the comment does not exist.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM `+commentFrom+` WHERE c.id = ?`, id)

	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCommentNotFound
	}
	return c, err
}

// UpdateComment rewrites a comment's content.
// Returns store.ErrCommentNotFound if the comment does not exist.
func (s *Store) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content, formatTime(comment.UpdatedAt), comment.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrCommentNotFound
	}
	return nil
}

// DeleteComment removes a comment.
// Returns store.ErrCommentNotFound if the comment does not exist.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrCommentNotFound
	}
	return nil
}

// ListComments returns a recipe's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, recipeID string) ([]*domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM `+commentFrom+`
		WHERE c.recipe_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
