package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"eventify/internal/auth"
	"eventify/internal/models"
	"eventify/internal/queue"
	"eventify/internal/repositories"
	"eventify/internal/services"
	"eventify/internal/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore backs the real services with maps for end-to-end handler
// tests
type memoryStore struct {
	mu            sync.Mutex
	users         map[int]*models.User
	events        map[int]*models.Event
	registrations []*models.Registration
	revoked       map[string]bool
	nextUser      int
	nextEvent     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[int]*models.User),
		events:    make(map[int]*models.Event),
		revoked:   make(map[string]bool),
		nextUser:  1,
		nextEvent: 1,
	}
}

type memoryUsers struct{ *memoryStore }

func (s memoryUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	user.ID = s.nextUser
	s.nextUser++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s memoryUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrUserNotFound
}

func (s memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

type memoryTokens struct{ *memoryStore }

func (s memoryTokens) Revoke(_ context.Context, jti string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s memoryTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

type memoryEvents struct{ *memoryStore }

func (s memoryEvents) Create(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = s.nextEvent
	s.nextEvent++
	event.CreatedAt = time.Now()
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s memoryEvents) GetByID(_ context.Context, id int) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, models.ErrEventNotFound
}

func (s memoryEvents) GetByIDAndOwner(ctx context.Context, id, organizerID int) (*models.Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil || e.UserID != organizerID {
		return nil, models.ErrEventNotFound
	}
	return e, nil
}

func (s memoryEvents) Exists(ctx context.Context, id int) (bool, error) {
	_, err := s.GetByID(ctx, id)
	return err == nil, nil
}

func (s memoryEvents) Update(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[event.ID]; !ok || e.UserID != event.UserID {
		return models.ErrEventNotFound
	}
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s memoryEvents) Delete(_ context.Context, id, organizerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; !ok || e.UserID != organizerID {
		return models.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s memoryEvents) ListByOwner(_ context.Context, organizerID int) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Event{}
	for _, e := range s.events {
		if e.UserID == organizerID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memoryEvents) Search(_ context.Context, f repositories.EventSearchFilters) ([]*models.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(f.Query)
	var out []*models.Event
	for _, e := range s.events {
		if q == "" || strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Location), q) {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return out[f.Offset:end], total, nil
}

type memoryRegistrations struct{ *memoryStore }

func (s memoryRegistrations) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[reg.EventID]
	if !ok {
		return models.ErrEventNotFound
	}
	count := 0
	for _, r := range s.registrations {
		if r.EventID != reg.EventID {
			continue
		}
		if r.Email == reg.Email {
			return models.ErrAlreadyRegistered
		}
		count++
	}
	if count >= event.Capacity {
		return models.ErrEventFull
	}
	copied := *reg
	s.registrations = append(s.registrations, &copied)
	return nil
}

func (s memoryRegistrations) GetByID(_ context.Context, eventID int, id string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.registrations {
		if r.EventID == eventID && r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, models.ErrRegistrationNotFound
}

func (s memoryRegistrations) ListByEvent(_ context.Context, eventID int) ([]*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Registration{}
	for _, r := range s.registrations {
		if r.EventID == eventID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s memoryRegistrations) MarkCheckedIn(_ context.Context, eventID int, id string, at time.Time) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.registrations {
		if r.EventID == eventID && r.ID == id {
			if r.CheckedInAt != nil {
				return nil, models.ErrAlreadyCheckedIn
			}
			r.CheckedInAt = &at
			copied := *r
			return &copied, nil
		}
	}
	return nil, models.ErrRegistrationNotFound
}

// newScenarioAPI wires real services over the memory store. Ticket mail
// goes to an SMTP relay that does not exist.
func newScenarioAPI(t *testing.T) http.Handler {
	t.Helper()
	store := newMemoryStore()
	logger := zerolog.Nop()

	hasher := utils.NewPasswordHasher(utils.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	jwt := auth.NewJWTManager("scenario-secret-0123456789", time.Hour, "eventify")
	authService := services.NewAuthService(memoryUsers{store}, memoryTokens{store}, hasher, jwt, logger)
	eventService := services.NewEventService(memoryEvents{store}, services.EventServiceOptions{}, logger)

	deliveries := queue.NewMemory(16)
	registrationService := services.NewRegistrationService(memoryEvents{store}, memoryRegistrations{store}, eventService,
		services.NewTicketGenerator("http://localhost:8000"), deliveries, logger)

	unreachable := services.NewSMTPMailer(services.EmailConfig{SMTPHost: "127.0.0.1", SMTPPort: 1, FromEmail: "tickets@eventify.example"})
	dispatcher := services.NewDeliveryDispatcher(deliveries, services.NewTicketEmailRenderer(), unreachable, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = dispatcher.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return buildRouter(authService, eventService, registrationService)
}

func registerOrganizer(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/register", "", map[string]string{
		"name":                  "Organizer",
		"email":                 email,
		"password":              "correct-horse",
		"password_confirmation": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody(t, rr)["token"].(string)
}

func TestScenario_JazzNight(t *testing.T) {
	api := newScenarioAPI(t)

	organizerA := registerOrganizer(t, api, "a@example.com")
	organizerB := registerOrganizer(t, api, "b@example.com")

	tomorrow := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	rr := do(t, api, http.MethodPost, "/organisateur/events", organizerA, map[string]interface{}{
		"title":       "Jazz Night",
		"description": "Live jazz",
		"location":    "Paris",
		"date":        tomorrow,
		"capacity":    50,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	event := decodeBody(t, rr)["event"].(map[string]interface{})
	path := "/events/" + formatID(event["id"])

	rr = do(t, api, http.MethodPut, "/organisateur"+path, organizerB, map[string]interface{}{
		"title":       "Hijacked",
		"description": "x",
		"location":    "Lyon",
		"date":        tomorrow,
		"capacity":    1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, api, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Jazz Night", body["title"])
	assert.Equal(t, "Paris", body["location"])
	assert.Equal(t, float64(50), body["capacity"])

	rr = do(t, api, http.MethodPost, path+"/register", "", map[string]string{"name": "Alice", "email": "alice@x.com"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body = decodeBody(t, rr)
	assert.Equal(t, "Jazz Night", body["event_title"])
	assert.Equal(t, "alice@x.com", body["participant"].(map[string]interface{})["email"])
}

func TestScenario_CatalogCheckInAndLogout(t *testing.T) {
	api := newScenarioAPI(t)
	organizer := registerOrganizer(t, api, "org@example.com")

	tomorrow := time.Now().Add(24 * time.Hour).UTC().Format("2006-01-02T15:04")
	for _, ev := range []struct{ title, location string }{{"Jazz Night", "Paris"}, {"Rock Show", "Berlin"}} {
		rr := do(t, api, http.MethodPost, "/organisateur/events", organizer, map[string]interface{}{
			"title": ev.title, "description": "d", "location": ev.location, "date": tomorrow, "capacity": 1,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := do(t, api, http.MethodGet, "/events?search=berlin", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decodeBody(t, rr)
	assert.Equal(t, float64(1), page["total"])

	rr = do(t, api, http.MethodPost, "/events/1/register", "", map[string]string{"name": "Alice", "email": "alice@x.com"})
	require.Equal(t, http.StatusCreated, rr.Code)
	participant := decodeBody(t, rr)["participant"].(map[string]interface{})["id"].(string)

	rr = do(t, api, http.MethodPost, "/events/1/register", "", map[string]string{"name": "Bob", "email": "bob@x.com"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, api, http.MethodPost, "/events/1/check-in/"+participant, organizer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, api, http.MethodPost, "/events/1/check-in/"+participant, organizer, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, api, http.MethodPost, "/logout", organizer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, api, http.MethodGet, "/organisateur/events", organizer, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func formatID(v interface{}) string {
	return strconv.Itoa(int(v.(float64)))
}
