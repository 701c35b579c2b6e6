package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eventify/internal/models"
	"eventify/internal/queue"
	"eventify/internal/repositories"
	"eventify/internal/utils"
)

func testHasher() *utils.PasswordHasher {
	return utils.NewPasswordHasher(utils.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

// fakeUserRepository is an in-memory UserRepository
type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
	getErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.nextID++
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// fakeTokenRepository records revoked token ids
type fakeTokenRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{revoked: make(map[string]time.Time)}
}

func (r *fakeTokenRepository) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = expiresAt
	return nil
}

func (r *fakeTokenRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[jti]
	return ok, nil
}

// fakeEventRepository is an in-memory EventRepository that honours owner
// scoping like the SQL one
type fakeEventRepository struct {
	mu        sync.Mutex
	events    map[int]*models.Event
	nextID    int
	seq       int
	createErr error
	searchErr error
}

func newFakeEventRepository() *fakeEventRepository {
	return &fakeEventRepository{events: make(map[int]*models.Event), nextID: 1}
}

func (r *fakeEventRepository) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	event.ID = r.nextID
	event.CreatedAt = time.Date(2026, 1, 1, 0, 0, r.seq, 0, time.UTC)
	event.UpdatedAt = event.CreatedAt
	r.nextID++
	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *fakeEventRepository) GetByID(_ context.Context, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEventRepository) GetByIDAndOwner(ctx context.Context, id, organizerID int) (*models.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != organizerID {
		return nil, models.ErrEventNotFound
	}
	return e, nil
}

func (r *fakeEventRepository) Exists(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *fakeEventRepository) Update(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok || stored.UserID != event.UserID {
		return models.ErrEventNotFound
	}
	updated := *event
	r.events[event.ID] = &updated
	return nil
}

func (r *fakeEventRepository) Delete(_ context.Context, id, organizerID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[id]
	if !ok || stored.UserID != organizerID {
		return models.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeEventRepository) ListByOwner(_ context.Context, organizerID int) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := []*models.Event{}
	for _, e := range r.events {
		if e.UserID == organizerID {
			copied := *e
			events = append(events, &copied)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	return events, nil
}

func (r *fakeEventRepository) Search(_ context.Context, filters repositories.EventSearchFilters) ([]*models.Event, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.searchErr != nil {
		return nil, 0, r.searchErr
	}

	q := strings.ToLower(filters.Query)
	var matched []*models.Event
	for _, e := range r.events {
		if q != "" && !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Location), q) {
			continue
		}
		if filters.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *filters.CategoryID) {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := filters.Offset
	if start > total {
		start = total
	}
	end := start + filters.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// fakeRegistrationRepository enforces capacity and uniqueness in memory
type fakeRegistrationRepository struct {
	mu            sync.Mutex
	events        *fakeEventRepository
	registrations []*models.Registration
	createErr     error
}

func newFakeRegistrationRepository(events *fakeEventRepository) *fakeRegistrationRepository {
	return &fakeRegistrationRepository{events: events}
}

func (r *fakeRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if r.createErr != nil {
		return r.createErr
	}
	event, err := r.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	taken := 0
	for _, existing := range r.registrations {
		if existing.EventID != reg.EventID {
			continue
		}
		if existing.Email == reg.Email {
			return models.ErrAlreadyRegistered
		}
		taken++
	}
	if taken >= event.Capacity {
		return models.ErrEventFull
	}

	reg.CreatedAt = time.Now()
	stored := *reg
	r.registrations = append(r.registrations, &stored)
	return nil
}

func (r *fakeRegistrationRepository) GetByID(_ context.Context, eventID int, id string) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registrations {
		if reg.ID == id && reg.EventID == eventID {
			copied := *reg
			return &copied, nil
		}
	}
	return nil, models.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepository) ListByEvent(_ context.Context, eventID int) ([]*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Registration{}
	for _, reg := range r.registrations {
		if reg.EventID == eventID {
			copied := *reg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepository) MarkCheckedIn(_ context.Context, eventID int, id string, at time.Time) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registrations {
		if reg.ID == id && reg.EventID == eventID {
			if reg.CheckedInAt != nil {
				return nil, models.ErrAlreadyCheckedIn
			}
			stamp := at
			reg.CheckedInAt = &stamp
			copied := *reg
			return &copied, nil
		}
	}
	return nil, models.ErrRegistrationNotFound
}

// fakeQueue records enqueued jobs or fails with err
type fakeQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Jobs() []*queue.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*queue.Job(nil), q.jobs...)
}

// failingMailer always fails like an unreachable mail server
type failingMailer struct {
	mu    sync.Mutex
	calls int
}

func (m *failingMailer) Send(_ context.Context, _ *Message) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return models.ErrMailDelivery
}

func (m *failingMailer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
