package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angelarchive/archive-server/internal/auth"
	"github.com/angelarchive/archive-server/internal/domain"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/id"
	"github.com/angelarchive/archive-server/internal/store"
)

// AuthService handles signup, login, logout, and token verification.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and user data.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Signup creates a new collector account and logs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// The username or email index is taken; don't reveal which
			// account holds it, just which field collided.
			if _, lookupErr := s.store.Users.GetByIndex(ctx, "username", req.Username); lookupErr == nil {
				return nil, domainerrors.AlreadyExists("username already taken")
			}
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User signed up", "user_id", userID, "username", user.Username)

	return s.issueSession(ctx, user)
}

// Login authenticates a user by username and creates a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "username", req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the username exists.
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return s.issueSession(ctx, user)
}

// issueSession creates a server-side session and mints an access token
// bound to it.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenService.SessionDuration()),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokenService.GenerateAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &AuthResponse{
		User:        sanitizeUser(user),
		AccessToken: token,
		ExpiresAt:   now.Add(s.tokenService.AccessTokenDuration()),
	}, nil
}

// Logout revokes the session named in the token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Verify checks an access token and confirms its session is still alive.
// Returns the claims for the request context.
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}

	// A valid token whose session was revoked (logout) is no longer good.
	if _, err := s.store.GetSession(ctx, claims.SessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return nil, domainerrors.Unauthorized("session expired")
		}
		return nil, fmt.Errorf("check session: %w", err)
	}

	return claims, nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return sanitizeUser(user), nil
}

// GetByUsername returns a user's public profile.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.Users.GetByIndex(ctx, "username", username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return sanitizeUser(user), nil
}

// UpdateProfileRequest contains the editable profile fields.
type UpdateProfileRequest struct {
	ProfilePic string `json:"profile_pic" validate:"omitempty,url,max=2048"`
}

// UpdateProfile updates the authenticated user's profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.ProfilePic = req.ProfilePic
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.Users.Update(ctx, userID, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", userID)

	return sanitizeUser(user), nil
}

// UsernameAvailable reports whether a username is free to register.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := s.store.Users.GetByIndex(ctx, "username", username)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return false, nil
}

// EmailAvailable reports whether an email is free to register.
func (s *AuthService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	_, err := s.store.Users.GetByIndex(ctx, "email", email)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return false, nil
}
