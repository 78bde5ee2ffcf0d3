package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

// EventRepo provides data access to events.  Events are created by admin
// endpoints and read by everyone; the inventory never mutates them.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Create inserts a new event and populates its generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
    const q = `INSERT INTO events (title, venue, starts_at) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, e.Title, e.Venue, e.StartsAt.UTC())
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    return nil
}

// GetByID loads a single event.  Returns ErrEventNotFound when no row
// exists.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `SELECT id, title, venue, starts_at, created_at FROM events WHERE id = ?`
    var e model.Event
    err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Title, &e.Venue, &e.StartsAt, &e.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrEventNotFound
    }
    if err != nil {
        return nil, err
    }
    return &e, nil
}

// List returns all events ordered by start time ascending.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
    const q = `SELECT id, title, venue, starts_at, created_at FROM events ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    events := make([]model.Event, 0)
    for rows.Next() {
        var e model.Event
        if err := rows.Scan(&e.ID, &e.Title, &e.Venue, &e.StartsAt, &e.CreatedAt); err != nil {
            return nil, err
        }
        events = append(events, e)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return events, nil
}
