package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventify/internal/auth"
	"eventify/internal/models"

	"github.com/rs/zerolog"
)

// UserRepository interface for organizer account storage
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenRepository interface for bearer token revocation
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AuthService struct {
	users  UserRepository
	tokens TokenRepository
	hasher PasswordHasher
	jwt    *auth.JWTManager
	logger zerolog.Logger
}

func NewAuthService(users UserRepository, tokens TokenRepository, hasher PasswordHasher, jwt *auth.JWTManager, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		jwt:    jwt,
		logger: logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates an organizer account and signs them in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			verr := models.NewValidationError()
			verr.Add("email", "The email has already been taken.")
			return nil, verr
		}
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Msg("organizer registered")
	return s.issue(user)
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", user.ID).Msg("stored password hash is unreadable")
		return nil, models.ErrInvalidCredentials
	}
	if !ok {
		return nil, models.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	token, claims, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResponse{User: user, Token: token, ExpiresAt: claims.ExpiresAtTime()}, nil
}

// Logout revokes the token the request was authenticated with
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.ErrInvalidToken
	}
	return s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAtTime())
}

// Authenticate resolves a bearer token to its organizer
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, nil, models.ErrInvalidToken
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, models.ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, models.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, nil, models.ErrInvalidToken
		}
		return nil, nil, err
	}
	return user, claims, nil
}
