package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/domain"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}/comments",
		Summary:     "List comments",
		Description: "Returns the comments on a visible recipe, oldest first",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/recipes/{id}/comments",
		Summary:       "Add comment",
		Description:   "Adds a plain-text comment of 1 to 2000 characters",
		Tags:          []string{"Comments"},
		Security:      authOperation,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "editComment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Edit comment",
		Description: "Replaces the content of a comment. Author only.",
		Tags:        []string{"Comments"},
		Security:    authOperation,
	}, s.handleEditComment)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteComment",
		Method:        http.MethodDelete,
		Path:          "/api/v1/comments/{id}",
		Summary:       "Delete comment",
		Description:   "Deletes a comment. Author only.",
		Tags:          []string{"Comments"},
		Security:      authOperation,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteComment)
}

// === DTOs ===

// CommentRequest is the body for adding or editing a comment.
type CommentRequest struct {
	Content string `json:"content" doc:"Comment text"`
}

// AddCommentInput wraps a new comment for Huma.
type AddCommentInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body CommentRequest
}

// CommentIDInput addresses one comment.
type CommentIDInput struct {
	ID string `path:"id" doc:"Comment ID"`
}

// EditCommentInput wraps a comment edit for Huma.
type EditCommentInput struct {
	ID   string `path:"id" doc:"Comment ID"`
	Body CommentRequest
}

// ListCommentsResponse contains a recipe's comments.
type ListCommentsResponse struct {
	Comments []*domain.Comment `json:"comments" doc:"Comments, oldest first"`
}

// ListCommentsOutput wraps the comment list for Huma.
type ListCommentsOutput struct {
	Body ListCommentsResponse
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body *domain.Comment
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *RecipeIDInput) (*ListCommentsOutput, error) {
	comments, err := s.services.Comment.List(ctx, optionalUserID(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &ListCommentsOutput{Body: ListCommentsResponse{Comments: comments}}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Add(ctx, userID, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleEditComment(ctx context.Context, input *EditCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Edit(ctx, userID, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Comment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
