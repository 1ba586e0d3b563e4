package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/simmerapp/simmer-server/internal/color"
	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/normalize"
	"github.com/simmerapp/simmer-server/internal/store"
)

// ProfileView is a profile with the values the pages derive from it.
type ProfileView struct {
	*domain.Profile
	Email       string       `json:"email"`
	DisplayName string       `json:"display_name"`
	Avatar      color.Avatar `json:"avatar"`
}

// UpdateProfileRequest contains the editable profile fields. All are replaced.
type UpdateProfileRequest struct {
	Username  string `json:"username" form:"username" validate:"username"`
	FullName  string `json:"full_name" form:"full_name" validate:"max=100"`
	AvatarURL string `json:"avatar_url" form:"avatar_url" validate:"omitempty,http_url,max=2048"`
	Bio       string `json:"bio" form:"bio" validate:"max=500"`
}

// ProfileService provides user profile management.
type ProfileService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store store.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: orDiscard(logger)}
}

// Get returns a user's profile, creating an empty one if none exists.
func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	profile, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return newProfileView(profile, user.Email), nil
}

// Update replaces the editable fields of a user's profile.
// A username held by someone else fails validation on the username field.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileView, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	req.Bio = normalize.PlainText(req.Bio)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user not found")
	}

	profile, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Username = req.Username
	profile.FullName = req.FullName
	profile.AvatarURL = req.AvatarURL
	profile.Bio = req.Bio
	profile.UpdatedAt = time.Now()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.ValidationWithDetails("username already taken",
				map[string]string{"username": "is already taken"}).WithCause(err)
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	return newProfileView(profile, user.Email), nil
}

func (s *ProfileService) getOrCreate(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = domain.NewProfile(userID)
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	s.logger.Info("created default profile", "user_id", userID)
	return profile, nil
}

func newProfileView(p *domain.Profile, email string) *ProfileView {
	name := p.DisplayName(email)
	return &ProfileView{
		Profile:     p,
		Email:       email,
		DisplayName: name,
		Avatar:      color.ForProfile(p.UserID, domain.Initials(name)),
	}
}
