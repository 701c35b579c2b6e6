package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"eventify/internal/auth"
	"eventify/internal/middleware"
	"eventify/internal/models"
	"eventify/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router        http.Handler
	auth          *MockAuthService
	events        *MockEventService
	registrations *MockRegistrationService
}

// newTestAPI wires the real router over mocked services. The bearer token
// "organizer-N" authenticates organizer N.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	authService := new(MockAuthService)
	eventService := new(MockEventService)
	registrationService := new(MockRegistrationService)

	for _, id := range []int{1, 2} {
		token := "organizer-" + strconv.Itoa(id)
		authService.On("Authenticate", mock.Anything, token).
			Return(&models.User{ID: id, Name: "Organizer", Email: "org@example.com"}, &auth.Claims{}, nil).Maybe()
	}
	authService.On("Authenticate", mock.Anything, mock.Anything).
		Return(nil, nil, models.ErrInvalidToken).Maybe()

	router := buildRouter(authService, eventService, registrationService)

	t.Cleanup(func() {
		eventService.AssertExpectations(t)
		registrationService.AssertExpectations(t)
	})

	return &testAPI{
		router:        router,
		auth:          authService,
		events:        eventService,
		registrations: registrationService,
	}
}

func buildRouter(authService services.AuthServiceInterface, eventService services.EventServiceInterface, registrationService services.RegistrationServiceInterface) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(authService, nil, zerolog.Nop())
	return NewRouter(RouterConfig{
		Auth:        NewAuthHandler(authService, nil),
		Public:      NewPublicHandler(eventService, registrationService),
		Organizer:   NewOrganizerEventHandler(eventService, registrationService),
		CheckIn:     NewCheckInHandler(registrationService),
		Health:      NewHealthHandler(nil, nil),
		RequireAuth: authMiddleware.RequireAuth,
		CORS:        middleware.DefaultCORSConfig(nil),
		Logger:      zerolog.Nop(),
	})
}

// do performs a request; token may be empty and body may be nil
func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}
