package services

import (
	"context"

	"eventify/internal/auth"
	"eventify/internal/models"
)

// AuthServiceInterface defines the organizer authentication operations
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// EventServiceInterface defines organizer event management and the public
// catalog
type EventServiceInterface interface {
	ListOwned(ctx context.Context, organizerID int) ([]*models.Event, error)
	Create(ctx context.Context, organizerID int, input *models.EventInput) (*models.Event, error)
	Get(ctx context.Context, eventID, organizerID int) (*models.Event, error)
	Update(ctx context.Context, eventID, organizerID int, input *models.EventInput) (*models.Event, error)
	Delete(ctx context.Context, eventID, organizerID int) error
	ListPublic(ctx context.Context, query PublicEventQuery) (*models.Page[*models.Event], error)
	GetPublic(ctx context.Context, eventID int) (*models.Event, error)
}

// RegistrationServiceInterface defines participant registration and
// check-in
type RegistrationServiceInterface interface {
	Register(ctx context.Context, eventID int, req *models.RegistrationRequest) (*RegistrationResult, error)
	ListForEvent(ctx context.Context, eventID, organizerID int) ([]*models.Registration, error)
	GetParticipant(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error)
	CheckIn(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error)
}
