package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

// SectionRepo provides data access to sections.  A section carries the
// authoritative unit price for its seats and the grid geometry used when
// the seat layout was generated.
type SectionRepo struct {
    db *sql.DB
}

// NewSectionRepo returns a new SectionRepo bound to the provided database.
func NewSectionRepo(db *sql.DB) *SectionRepo { return &SectionRepo{db: db} }

// Create inserts a new section and populates its generated ID.  Seat
// generation is a separate step performed by the caller via
// SeatRepo.CreateBulk so the two inserts stay independently retryable.
func (r *SectionRepo) Create(ctx context.Context, s *model.Section) error {
    const q = `INSERT INTO sections (event_id, name, price_cents, row_count, col_count, layout_type)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.EventID, s.Name, s.PriceCents, s.RowCount, s.ColCount, s.LayoutType)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    return nil
}

// GetByID loads a single section.  Returns ErrSectionNotFound when no row
// exists.
func (r *SectionRepo) GetByID(ctx context.Context, id uint64) (*model.Section, error) {
    const q = `SELECT id, event_id, name, price_cents, row_count, col_count, layout_type, created_at
               FROM sections WHERE id = ?`
    var s model.Section
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.EventID, &s.Name, &s.PriceCents, &s.RowCount, &s.ColCount, &s.LayoutType, &s.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrSectionNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// ListByEvent returns all sections of an event ordered by name.
func (r *SectionRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Section, error) {
    const q = `SELECT id, event_id, name, price_cents, row_count, col_count, layout_type, created_at
               FROM sections WHERE event_id = ? ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    sections := make([]model.Section, 0)
    for rows.Next() {
        var s model.Section
        if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.PriceCents, &s.RowCount, &s.ColCount,
            &s.LayoutType, &s.CreatedAt); err != nil {
            return nil, err
        }
        sections = append(sections, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return sections, nil
}
