package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventify/internal/models"
)

// EventRepository handles event persistence. Owner-scoped methods take the
// organizer id as part of the WHERE clause.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventSearchFilters drives the public catalog query
type EventSearchFilters struct {
	Query      string // matched against title OR location, case-insensitive
	CategoryID *int
	Limit      int
	Offset     int
}

const eventColumns = `id, user_id, title, description, location, date, capacity, category_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var categoryID sql.NullInt64

	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.Date,
		&event.Capacity,
		&categoryID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := int(categoryID.Int64)
		event.CategoryID = &id
	}
	event.Date = event.Date.UTC()
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (user_id, title, description, location, date, capacity, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.UserID,
		event.Title,
		event.Description,
		event.Location,
		event.Date,
		event.Capacity,
		event.CategoryID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID loads an event regardless of owner
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return r.one(row)
}

// GetByIDAndOwner loads an event only if organizerID owns it
func (r *EventRepository) GetByIDAndOwner(ctx context.Context, id, organizerID int) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 AND user_id = $2`, id, organizerID)
	return r.one(row)
}

func (r *EventRepository) one(row *sql.Row) (*models.Event, error) {
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}

// Update replaces the mutable fields of an event owned by event.UserID
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, date = $4, capacity = $5,
			category_id = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND user_id = $8
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.Date,
		event.Capacity,
		event.CategoryID,
		event.ID,
		event.UserID,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete hard-deletes an owned event. Registrations cascade.
func (r *EventRepository) Delete(ctx context.Context, id, organizerID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, organizerID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

// ListByOwner returns every event of the organizer, newest first
func (r *EventRepository) ListByOwner(ctx context.Context, organizerID int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Search returns one page of the public catalog and the total match count
func (r *EventRepository) Search(ctx context.Context, filters EventSearchFilters) ([]*models.Event, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if q := strings.TrimSpace(filters.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR location ILIKE $%d ESCAPE '\')`, argIndex, argIndex))
		args = append(args, "%"+escapeLike(q)+"%")
		argIndex++
	}

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filters.CategoryID)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY date ASC, id ASC LIMIT $%d OFFSET $%d`,
		eventColumns, where, argIndex, argIndex+1)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
