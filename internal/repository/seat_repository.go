package repository // repository implements the seat inventory store

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "strings"      // strings builds IN (...) placeholder lists

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

// SeatRepo is the authoritative seat inventory store.  Every state
// transition is a single conditional UPDATE keyed by seat id: the WHERE
// clause names the required prior status (and, where relevant, the owning
// transaction) and RowsAffected==1 is the compare-and-set success signal.
// Two concurrent callers on the same seat therefore never both succeed,
// and unrelated seats never contend.  Each successful transition bumps the
// seat's version counter, which downstream subscribers use to merge
// snapshots in store order rather than delivery order.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

const seatColumns = `id, section_id, row_label, seat_number, status, transaction_id, ticket_code, version, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }) (model.Seat, error) {
    var s model.Seat
    var txnID sql.NullInt64
    err := row.Scan(&s.ID, &s.SectionID, &s.RowLabel, &s.SeatNumber, &s.Status,
        &txnID, &s.TicketCode, &s.Version, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return model.Seat{}, err
    }
    if txnID.Valid {
        id := uint64(txnID.Int64)
        s.TransactionID = &id
    }
    return s, nil
}

// TryClaim transitions a seat from AVAILABLE to HELD and binds it to the
// supplied transaction.  When the conditional update affects no rows the
// seat was not available; the prior status is read back so the caller can
// report which seat was lost and why.  ErrSeatNotFound is returned for
// unknown ids, ErrSeatConflict for seats in any other status.
func (r *SeatRepo) TryClaim(ctx context.Context, seatID, txnID uint64) error {
    const q = `UPDATE seats
               SET status = ?, transaction_id = ?, version = version + 1
               WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, model.SeatHeld, txnID, seatID, model.SeatAvailable)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 1 {
        return nil
    }
    // Lost the race or the seat never existed; distinguish for the caller.
    var status string
    err = r.db.QueryRowContext(ctx, `SELECT status FROM seats WHERE id = ?`, seatID).Scan(&status)
    if err == sql.ErrNoRows {
        return ErrSeatNotFound
    }
    if err != nil {
        return err
    }
    return ErrSeatConflict
}

// Release transitions a seat from HELD back to AVAILABLE, but only while
// it is still held by the expected transaction.  A zero-row update is not
// an error: the seat may already have progressed to SOLD or been released
// by the sweeper, both of which are legitimate outcomes during
// compensating rollback.
func (r *SeatRepo) Release(ctx context.Context, seatID, txnID uint64) error {
    const q = `UPDATE seats
               SET status = ?, transaction_id = NULL, version = version + 1
               WHERE id = ? AND status = ? AND transaction_id = ?`
    _, err := r.db.ExecContext(ctx, q, model.SeatAvailable, seatID, model.SeatHeld, txnID)
    return err
}

// Finalize transitions a seat from HELD to SOLD for the owning
// transaction.  Returns ErrSeatConflict when the seat is no longer held
// by that transaction, which indicates the hold expired between claim and
// finalize.
func (r *SeatRepo) Finalize(ctx context.Context, seatID, txnID uint64) error {
    const q = `UPDATE seats
               SET status = ?, version = version + 1
               WHERE id = ? AND status = ? AND transaction_id = ?`
    res, err := r.db.ExecContext(ctx, q, model.SeatSold, seatID, model.SeatHeld, txnID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n != 1 {
        return ErrSeatConflict
    }
    return nil
}

// Redeem transitions a seat from SOLD to CHECKED_IN.  The same
// compare-and-set used for every other transition guarantees that two
// scanners redeeming the same ticket concurrently yield exactly one
// grant.  On failure the prior status is read back to distinguish
// ErrAlreadyCheckedIn from ErrNotSold.
func (r *SeatRepo) Redeem(ctx context.Context, seatID uint64) error {
    const q = `UPDATE seats
               SET status = ?, version = version + 1
               WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, model.SeatCheckedIn, seatID, model.SeatSold)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 1 {
        return nil
    }
    var status string
    err = r.db.QueryRowContext(ctx, `SELECT status FROM seats WHERE id = ?`, seatID).Scan(&status)
    if err == sql.ErrNoRows {
        return ErrSeatNotFound
    }
    if err != nil {
        return err
    }
    if status == model.SeatCheckedIn {
        return ErrAlreadyCheckedIn
    }
    return ErrNotSold
}

// Block withholds an AVAILABLE seat from sale.  Seats in any other status
// cannot be blocked; the caller receives ErrSeatConflict so an admin is
// never able to yank a seat out from under a live transaction.
func (r *SeatRepo) Block(ctx context.Context, seatID uint64) error {
    return r.adminFlip(ctx, seatID, model.SeatAvailable, model.SeatBlocked)
}

// Unblock returns a BLOCKED seat to sale.
func (r *SeatRepo) Unblock(ctx context.Context, seatID uint64) error {
    return r.adminFlip(ctx, seatID, model.SeatBlocked, model.SeatAvailable)
}

func (r *SeatRepo) adminFlip(ctx context.Context, seatID uint64, from, to string) error {
    const q = `UPDATE seats SET status = ?, version = version + 1 WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, to, seatID, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n != 1 {
        var status string
        if err := r.db.QueryRowContext(ctx, `SELECT status FROM seats WHERE id = ?`, seatID).Scan(&status); err == sql.ErrNoRows {
            return ErrSeatNotFound
        } else if err != nil {
            return err
        }
        return ErrSeatConflict
    }
    return nil
}

// ReleaseByTransaction releases every seat still bound to the given
// transaction back to AVAILABLE, regardless of whether it was HELD or
// already SOLD.  This is the settlement failure / hold expiry path: a
// FAILED transaction must not keep seats in either claimed status.  The
// ids of the released seats are returned so the caller can publish one
// notification per seat.  Select-then-update runs inside a transaction so
// the returned id list matches the rows actually flipped.
func (r *SeatRepo) ReleaseByTransaction(ctx context.Context, txnID uint64) ([]uint64, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    rows, err := tx.QueryContext(ctx,
        `SELECT id FROM seats WHERE transaction_id = ? AND status IN (?, ?) FOR UPDATE`,
        txnID, model.SeatHeld, model.SeatSold)
    if err != nil {
        return nil, err
    }
    var seatIDs []uint64
    for rows.Next() {
        var id uint64
        if scanErr := rows.Scan(&id); scanErr != nil {
            rows.Close()
            return nil, scanErr
        }
        seatIDs = append(seatIDs, id)
    }
    if err = rows.Close(); err != nil {
        return nil, err
    }
    if len(seatIDs) == 0 {
        _ = tx.Rollback()
        return []uint64{}, nil
    }
    _, err = tx.ExecContext(ctx,
        `UPDATE seats SET status = ?, transaction_id = NULL, version = version + 1
         WHERE transaction_id = ? AND status IN (?, ?)`,
        model.SeatAvailable, txnID, model.SeatHeld, model.SeatSold)
    if err != nil {
        return nil, err
    }
    if err = tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return seatIDs, nil
}

// CreateBulk inserts multiple seats in one statement.  It is used when a
// section's layout is generated.  Only section_id, row_label, seat_number,
// status and ticket_code are inserted; timestamps default in the DB.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
    if len(seats) == 0 {
        return nil
    }
    query := `INSERT INTO seats (section_id, row_label, seat_number, status, ticket_code) VALUES `
    args := make([]interface{}, 0, len(seats)*5)
    for i, s := range seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args, s.SectionID, s.RowLabel, s.SeatNumber, s.Status, s.TicketCode)
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// GetByID loads a single seat.
func (r *SeatRepo) GetByID(ctx context.Context, seatID uint64) (*model.Seat, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ?`, seatID)
    s, err := scanSeat(row)
    if err == sql.ErrNoRows {
        return nil, ErrSeatNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// GetByTicketCode resolves a scanned opaque ticket code to its seat.
func (r *SeatRepo) GetByTicketCode(ctx context.Context, code string) (*model.Seat, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE ticket_code = ?`, code)
    s, err := scanSeat(row)
    if err == sql.ErrNoRows {
        return nil, ErrSeatNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// ListBySection returns all seats of a section ordered by row and number.
// Viewers use this to render the seat map; it is a read-only path.
func (r *SeatRepo) ListBySection(ctx context.Context, sectionID uint64) ([]model.Seat, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+seatColumns+` FROM seats WHERE section_id = ? ORDER BY row_label, seat_number`,
        sectionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

// SnapshotsByIDs loads full seat snapshots for the given ids, joined with
// the owning section to carry the event id.  The coordinator and
// settlement handler publish these to the notification bus after each
// batch of transitions.
func (r *SeatRepo) SnapshotsByIDs(ctx context.Context, seatIDs []uint64) ([]SeatSnapshot, error) {
    if len(seatIDs) == 0 {
        return []SeatSnapshot{}, nil
    }
    placeholders := make([]string, 0, len(seatIDs))
    args := make([]interface{}, 0, len(seatIDs))
    for _, id := range seatIDs {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    query := `SELECT s.id, s.section_id, sec.event_id, s.row_label, s.seat_number,
                     s.status, s.transaction_id, s.version
              FROM seats s
              JOIN sections sec ON sec.id = s.section_id
              WHERE s.id IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    snaps := make([]SeatSnapshot, 0, len(seatIDs))
    for rows.Next() {
        var snap SeatSnapshot
        var txnID sql.NullInt64
        if err := rows.Scan(&snap.SeatID, &snap.SectionID, &snap.EventID, &snap.RowLabel,
            &snap.SeatNumber, &snap.Status, &txnID, &snap.Version); err != nil {
            return nil, err
        }
        if txnID.Valid {
            id := uint64(txnID.Int64)
            snap.TransactionID = &id
        }
        snaps = append(snaps, snap)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return snaps, nil
}

// PricesForEvent resolves the authoritative price for each requested seat
// from its section, restricted to seats belonging to the given event.
// Seats outside the event are simply absent from the returned map, which
// the coordinator treats as a validation failure.  Client-supplied prices
// never enter amount computation.
func (r *SeatRepo) PricesForEvent(ctx context.Context, eventID uint64, seatIDs []uint64) (map[uint64]uint32, error) {
    if len(seatIDs) == 0 {
        return map[uint64]uint32{}, nil
    }
    placeholders := make([]string, 0, len(seatIDs))
    args := make([]interface{}, 0, len(seatIDs)+1)
    args = append(args, eventID)
    for _, id := range seatIDs {
        placeholders = append(placeholders, "?")
        args = append(args, id)
    }
    query := `SELECT s.id, sec.price_cents
              FROM seats s
              JOIN sections sec ON sec.id = s.section_id
              WHERE sec.event_id = ? AND s.id IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    prices := make(map[uint64]uint32, len(seatIDs))
    for rows.Next() {
        var id uint64
        var price uint32
        if err := rows.Scan(&id, &price); err != nil {
            return nil, err
        }
        prices[id] = price
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return prices, nil
}

// SeatSnapshot is the full per-seat state carried by every bus message.
// Snapshots are idempotent upserts: a subscriber merges them into its
// local map keyed by seat id, keeping the highest version, so delivery
// order and duplication never matter.
type SeatSnapshot struct {
    SeatID        uint64  `json:"seat_id"`
    SectionID     uint64  `json:"section_id"`
    EventID       uint64  `json:"event_id"`
    RowLabel      string  `json:"row_label"`
    SeatNumber    uint32  `json:"seat_number"`
    Status        string  `json:"status"`
    TransactionID *uint64 `json:"transaction_id,omitempty"`
    Version       uint64  `json:"version"`
}
