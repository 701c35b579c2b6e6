package services

import (
	"context"
	"errors"

	"eventify/internal/metrics"
	"eventify/internal/models"

	"github.com/google/uuid"
)

// ListForEvent returns the participants of an event owned by organizerID
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID, organizerID int) ([]*models.Registration, error) {
	if _, err := s.guard.Get(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

// GetParticipant resolves a scanned ticket for the event's organizer
func (s *RegistrationService) GetParticipant(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error) {
	if _, err := s.guard.Get(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(participantID); err != nil {
		return nil, models.ErrRegistrationNotFound
	}
	return s.registrations.GetByID(ctx, eventID, participantID)
}

// CheckIn admits a participant. Each ticket admits once.
func (s *RegistrationService) CheckIn(ctx context.Context, eventID, organizerID int, participantID string) (*models.Registration, error) {
	if _, err := s.guard.Get(ctx, eventID, organizerID); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(participantID); err != nil {
		return nil, models.ErrRegistrationNotFound
	}

	registration, err := s.registrations.MarkCheckedIn(ctx, eventID, participantID, s.now().UTC())
	if err != nil {
		if errors.Is(err, models.ErrAlreadyCheckedIn) {
			metrics.CheckInsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.CheckInsTotal.WithLabelValues("admitted").Inc()
	s.logger.Info().Int("event_id", eventID).Str("participant_id", participantID).Msg("participant checked in")
	return registration, nil
}
