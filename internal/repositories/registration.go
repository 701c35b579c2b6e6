package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventify/internal/models"
)

// RegistrationRepository persists participants. Capacity and the one
// registration per email rule are enforced here, inside the database.
type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, event_id, name, email, checked_in_at, created_at`

func scanRegistration(row rowScanner) (*models.Registration, error) {
	reg := &models.Registration{}
	var checkedInAt sql.NullTime

	if err := row.Scan(&reg.ID, &reg.EventID, &reg.Name, &reg.Email, &checkedInAt, &reg.CreatedAt); err != nil {
		return nil, err
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		reg.CheckedInAt = &t
	}
	return reg, nil
}

// Create inserts reg while holding a row lock on the event so concurrent
// registrations cannot overbook it. reg.ID must be set by the caller.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, reg.EventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("failed to lock event: %w", err)
	}

	var taken int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, reg.EventID).Scan(&taken); err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}
	if taken >= capacity {
		return models.ErrEventFull
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (id, event_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		reg.ID, reg.EventID, reg.Name, reg.Email,
	).Scan(&reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

// GetByID loads a participant of the given event
func (r *RegistrationRepository) GetByID(ctx context.Context, eventID int, id string) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1 AND event_id = $2`, id, eventID)

	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isPQCode(err, pqInvalidTextEncoding) {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

// ListByEvent returns participants in registration order
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY created_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := []*models.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

// MarkCheckedIn stamps the participant as admitted. A participant can only
// be checked in once.
func (r *RegistrationRepository) MarkCheckedIn(ctx context.Context, eventID int, id string, at time.Time) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE registrations SET checked_in_at = $1
		WHERE id = $2 AND event_id = $3 AND checked_in_at IS NULL
		RETURNING `+registrationColumns, at, id, eventID)

	reg, err := scanRegistration(row)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !isPQCode(err, pqInvalidTextEncoding) {
		return nil, fmt.Errorf("failed to check in participant: %w", err)
	}

	if _, getErr := r.GetByID(ctx, eventID, id); getErr != nil {
		return nil, getErr
	}
	return nil, models.ErrAlreadyCheckedIn
}
