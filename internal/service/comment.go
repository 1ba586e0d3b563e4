package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/sse"
	"github.com/simmerapp/simmer-server/internal/store"
)

// MaxCommentLength is the longest comment accepted, in characters.
const MaxCommentLength = 2000

// CommentService manages comments on recipes.
type CommentService struct {
	store   store.Store
	events  store.EventEmitter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCommentService creates a new comment service. m may be nil.
func NewCommentService(store store.Store, events store.EventEmitter, m *metrics.Metrics, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, events: orNoop(events), metrics: m, logger: orDiscard(logger)}
}

// List returns a recipe's comments oldest first, with author display names filled in.
// The recipe must be visible to viewerID.
func (s *CommentService) List(ctx context.Context, viewerID, recipeID string) ([]*domain.Comment, error) {
	if _, err := visibleRecipe(ctx, s.store, viewerID, recipeID); err != nil {
		return nil, err
	}
	return s.list(ctx, recipeID)
}

func (s *CommentService) list(ctx context.Context, recipeID string) ([]*domain.Comment, error) {
	comments, err := s.store.ListComments(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	seen := make(map[string]struct{}, len(comments))
	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			userIDs = append(userIDs, c.UserID)
		}
	}

	names, err := s.store.GetDisplayNames(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve comment authors: %w", err)
	}
	for _, c := range comments {
		c.AuthorName = names[c.UserID]
		if c.AuthorName == "" {
			c.AuthorName = "Anonymous"
		}
	}
	return comments, nil
}

// Add posts a comment on a visible recipe.
func (s *CommentService) Add(ctx context.Context, userID, recipeID, content string) (*domain.Comment, error) {
	content, err := cleanComment(content)
	if err != nil {
		return nil, err
	}

	if _, err := visibleRecipe(ctx, s.store, userID, recipeID); err != nil {
		return nil, err
	}

	commentID, err := id.Generate(id.Comment)
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        commentID,
		RecipeID:  recipeID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, notFoundAs(err, "recipe not found")
	}

	if names, err := s.store.GetDisplayNames(ctx, []string{userID}); err == nil {
		comment.AuthorName = names[userID]
	}

	s.metrics.CommentAdded()
	s.events.Emit(sse.NewCommentAddedEvent(comment))
	s.logger.Debug("comment added", "comment_id", commentID, "recipe_id", recipeID)

	return comment, nil
}

// Edit replaces a comment's content. Only its author may edit it.
func (s *CommentService) Edit(ctx context.Context, userID, commentID, content string) (*domain.Comment, error) {
	content, err := cleanComment(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.owned(ctx, userID, commentID, "edit")
	if err != nil {
		return nil, err
	}

	comment.Content = content
	comment.UpdatedAt = time.Now()
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, notFoundAs(err, "comment not found")
	}
	return comment, nil
}

// Delete removes a comment. Only its author may delete it.
// Returns the recipe the comment belonged to.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) (string, error) {
	comment, err := s.owned(ctx, userID, commentID, "delete")
	if err != nil {
		return "", err
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return "", notFoundAs(err, "comment not found")
	}
	return comment.RecipeID, nil
}

func (s *CommentService) owned(ctx context.Context, userID, commentID, action string) (*domain.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, notFoundAs(err, "comment not found")
	}
	if userID == "" || comment.UserID != userID {
		return nil, domainerrors.Forbidden("only the author can " + action + " this comment")
	}
	return comment, nil
}

// cleanComment strips markup, trims, and enforces the length bounds.
func cleanComment(content string) (string, error) {
	content = normalize.PlainText(content)
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return "", domainerrors.ValidationWithDetails("invalid content",
			map[string]string{"content": "is required"})
	case n > MaxCommentLength:
		return "", domainerrors.ValidationWithDetails("invalid content",
			map[string]string{"content": fmt.Sprintf("must be at most %d characters", MaxCommentLength)})
	}
	return content, nil
}
