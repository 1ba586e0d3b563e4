package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/id"
	"github.com/simmerapp/simmer-server/internal/metrics"
	"github.com/simmerapp/simmer-server/internal/store"
)

// AuthService handles signup, login and token verification.
// Session management is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service. m may be nil.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		metrics:        m,
		logger:         orDiscard(logger),
	}
}

// SignupRequest contains new account credentials.
type SignupRequest struct {
	Email           string          `json:"email" form:"email" validate:"required,email,max=254"`
	Password        string          `json:"password" form:"password" validate:"required,min=6,max=1024"`
	ConfirmPassword string          `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	Client          auth.ClientInfo `json:"-"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string          `json:"email" form:"email" validate:"required,email"`
	Password string          `json:"password" form:"password" validate:"required"`
	Client   auth.ClientInfo `json:"-"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string          `json:"refresh_token" validate:"required"`
	Client       auth.ClientInfo `json:"-"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile"`
	SessionResponse
}

// normalizeEmail lowercases and trims so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account with an empty profile and starts a session.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (_ *AuthResponse, err error) {
	defer func() { s.metrics.AuthAttempt("signup", err) }()

	req.Email = normalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.User)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		PasswordHash: passwordHash,
		LastLoginAt:  time.Now(),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	profile := domain.NewProfile(userID)
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("User signed up", "user_id", userID)

	return &AuthResponse{User: user, Profile: profile, SessionResponse: *sessionResp}, nil
}

// Login authenticates a user and creates a new session.
// Unknown email and wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (_ *AuthResponse, err error) {
	defer func() { s.metrics.AuthAttempt("login", err) }()

	req.Email = normalizeEmail(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			user.PasswordHash = hash
		} else {
			s.logger.Warn("Password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("Failed to update last login time",
			"user_id", user.ID,
			"error", err,
		)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.Client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return &AuthResponse{User: user, Profile: s.profileOrEmpty(ctx, user.ID), SessionResponse: *sessionResp}, nil
}

// RefreshTokens rotates a refresh token into a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (_ *AuthResponse, err error) {
	defer func() { s.metrics.AuthAttempt("refresh", err) }()

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.Client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Profile: s.profileOrEmpty(ctx, user.ID), SessionResponse: *sessionResp}, nil
}

// Logout revokes a session, invalidating its refresh token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionService.DeleteSession(ctx, sessionID)
}

// VerifyAccessToken validates a token and returns the associated user.
// A token whose session was logged out is rejected even before it expires.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	if _, err := s.sessionService.GetSession(ctx, claims.SessionID); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user not found")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

func (s *AuthService) profileOrEmpty(ctx context.Context, userID string) *domain.Profile {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return domain.NewProfile(userID)
	}
	return p
}
