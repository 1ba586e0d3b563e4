package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/simmerapp/simmer-server/internal/color"
	"github.com/simmerapp/simmer-server/internal/domain"
	"github.com/simmerapp/simmer-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the caller's profile with its derived display name and avatar colors",
		Tags:        []string{"Profile"},
		Security:    authOperation,
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update my profile",
		Description: "Replaces the caller's username, full name, avatar URL and bio",
		Tags:        []string{"Profile"},
		Security:    authOperation,
	}, s.handleUpdateProfile)
}

// === DTOs ===

// UpdateProfileRequest is the request body for a profile update.
type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" doc:"Unique username (3 to 30 letters, digits or underscores)"`
	FullName  string `json:"full_name,omitempty" doc:"Full name (at most 100 characters)"`
	AvatarURL string `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	Bio       string `json:"bio,omitempty" doc:"Short bio (at most 500 characters)"`
}

// UpdateProfileInput wraps the update request for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// ProfileResponse is a profile with the values derived from it.
type ProfileResponse struct {
	Profile     *domain.Profile `json:"profile"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name" doc:"Full name, else username, else the email's local part"`
	Avatar      color.Avatar    `json:"avatar" doc:"Fallback badge colors and initials"`
}

func newProfileResponse(v *service.ProfileView) ProfileResponse {
	return ProfileResponse{
		Profile:     v.Profile,
		Email:       v.Email,
		DisplayName: v.DisplayName,
		Avatar:      v.Avatar,
	}
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: newProfileResponse(view)}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Profile.Update(ctx, userID, service.UpdateProfileRequest{
		Username:  input.Body.Username,
		FullName:  input.Body.FullName,
		AvatarURL: input.Body.AvatarURL,
		Bio:       input.Body.Bio,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: newProfileResponse(view)}, nil
}
