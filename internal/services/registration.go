package services

import (
	"context"
	"errors"
	"time"

	"eventify/internal/metrics"
	"eventify/internal/models"
	"eventify/internal/queue"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistrationRepository interface for participant storage
type RegistrationRepository interface {
	Create(ctx context.Context, registration *models.Registration) error
	GetByID(ctx context.Context, eventID int, id string) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error)
	MarkCheckedIn(ctx context.Context, eventID int, id string, at time.Time) (*models.Registration, error)
}

// TicketQueue accepts ticket deliveries for the mail workers
type TicketQueue interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// RegistrationResult is what a successful registration produced.
// DeliveryQueued is informational only; the registration stands either way.
type RegistrationResult struct {
	Event          *models.Event
	Registration   *models.Registration
	Ticket         *models.Ticket
	DeliveryQueued bool
}

type RegistrationService struct {
	events        EventRepository
	registrations RegistrationRepository
	guard         *EventService
	tickets       *TicketGenerator
	queue         TicketQueue
	now           func() time.Time
	logger        zerolog.Logger
}

func NewRegistrationService(
	events EventRepository,
	registrations RegistrationRepository,
	guard *EventService,
	tickets *TicketGenerator,
	queue TicketQueue,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		guard:         guard,
		tickets:       tickets,
		queue:         queue,
		now:           time.Now,
		logger:        logger.With().Str("component", "registration_service").Logger(),
	}
}

// Register signs a participant up for an event and hands the ticket to the
// delivery queue. Once the registration is stored the call succeeds, even if
// the ticket cannot be generated or queued.
func (s *RegistrationService) Register(ctx context.Context, eventID int, req *models.RegistrationRequest) (*RegistrationResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			metrics.RegistrationsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	if err := req.Validate(); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	registration := &models.Registration{
		ID:      uuid.NewString(),
		EventID: event.ID,
		Name:    req.Name,
		Email:   req.Email,
	}
	if err := s.registrations.Create(ctx, registration); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationOutcome(err)).Inc()
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	log := s.logger.With().Int("event_id", event.ID).Str("participant_id", registration.ID).Logger()
	log.Info().Msg("participant registered")

	result := &RegistrationResult{Event: event, Registration: registration}

	ticket, err := s.tickets.Generate(event, registration)
	if err != nil {
		metrics.TicketDeliveriesTotal.WithLabelValues("dropped").Inc()
		log.Error().Err(err).Msg("failed to generate ticket")
		return result, nil
	}
	result.Ticket = ticket

	job := queue.NewJob(models.NewTicketDelivery(event, registration, ticket))
	if err := s.queue.Enqueue(ctx, job); err != nil {
		metrics.TicketDeliveriesTotal.WithLabelValues("dropped").Inc()
		log.Error().Err(err).Msg("failed to queue ticket delivery")
		return result, nil
	}
	result.DeliveryQueued = true

	return result, nil
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrEventFull):
		return "full"
	case errors.Is(err, models.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, models.ErrEventNotFound):
		return "not_found"
	default:
		return "error"
	}
}
