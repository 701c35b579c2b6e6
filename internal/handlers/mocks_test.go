package handlers

import (
	"context"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthServiceInterface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*services.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*auth.Claims), args.Error(2)
}

// MockEventService is a mock implementation of EventServiceInterface
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) ListOwned(ctx context.Context, organizerID int) ([]*models.Event, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventService) Create(ctx context.Context, organizerID int, input *models.EventInput) (*models.Event, error) {
	args := m.Called(ctx, organizerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Get(ctx context.Context, eventID, organizerID int) (*models.Event, error) {
	args := m.Called(ctx, eventID, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, eventID, organizerID int, input *models.EventInput) (*models.Event, error) {
	args := m.Called(ctx, eventID, organizerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) Delete(ctx context.Context, eventID, organizerID int) error {
	args := m.Called(ctx, eventID, organizerID)
	return args.Error(0)
}

func (m *MockEventService) ListPublic(ctx context.Context, query services.PublicEventQuery) (*models.Page[*models.Event], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[*models.Event]), args.Error(1)
}

func (m *MockEventService) GetPublic(ctx context.Context, eventID int) (*models.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

// MockRegistrationService is a mock implementation of RegistrationServiceInterface
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, eventID int, req *models.RegistrationRequest) (*services.RegistrationResult, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RegistrationResult), args.Error(1)
}

func (m *MockRegistrationService) ListForEvent(ctx context.Context, eventID, organizerID int) ([]*models.Registration, error) {
	args := m.Called(ctx, eventID, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Registration), args.Error(1)
}

func (m *MockRegistrationService) GetParticipant(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error) {
	args := m.Called(ctx, eventID, organizerID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}

func (m *MockRegistrationService) CheckIn(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error) {
	args := m.Called(ctx, eventID, organizerID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Registration), args.Error(1)
}
