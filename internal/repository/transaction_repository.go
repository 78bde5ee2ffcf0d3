package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

// TransactionRepo provides data access to transactions and their claimed
// seats.  A transaction groups the seats of one purchase attempt; the
// transaction_seats table records the per-seat price at claim time so the
// total remains auditable after section prices change.
type TransactionRepo struct {
    db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// SeatPrice pairs a seat with the section price resolved for it at claim
// time.
type SeatPrice struct {
    SeatID     uint64
    PriceCents uint32
}

// Create inserts a PENDING transaction together with its claimed-seat
// price records in a single database transaction, populating the
// generated ID and timestamps on the provided model.  The caller supplies
// server-resolved prices; the insert never sees a client figure.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction, seats []SeatPrice) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    const q = `INSERT INTO transactions (reference, event_id, user_id, total_amount_cents, payment_status, expires_at)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, t.Reference, t.EventID, t.UserID,
        t.TotalAmountCents, t.PaymentStatus, t.ExpiresAt.UTC())
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    if len(seats) > 0 {
        query := `INSERT INTO transaction_seats (transaction_id, seat_id, price_cents) VALUES `
        args := make([]interface{}, 0, len(seats)*3)
        for i, s := range seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?)"
            args = append(args, t.ID, s.SeatID, s.PriceCents)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Resolve performs the one-shot PENDING → PAID/FAILED transition.  It
// reports whether the update applied; false means the transaction was
// already resolved and the caller must treat the call as a duplicate.
// This conditional update is what makes the whole settlement path
// idempotent against late callbacks, expiry timers and the sweeper all
// racing on the same transaction.
func (r *TransactionRepo) Resolve(ctx context.Context, txnID uint64, status string) (bool, error) {
    const q = `UPDATE transactions SET payment_status = ? WHERE id = ? AND payment_status = ?`
    res, err := r.db.ExecContext(ctx, q, status, txnID, model.PaymentPending)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

const txnColumns = `id, reference, event_id, user_id, total_amount_cents, payment_status, expires_at, created_at, updated_at`

func (r *TransactionRepo) scanOne(row *sql.Row) (*model.Transaction, error) {
    var t model.Transaction
    err := row.Scan(&t.ID, &t.Reference, &t.EventID, &t.UserID, &t.TotalAmountCents,
        &t.PaymentStatus, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrTransactionNotFound
    }
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// GetByID loads a transaction by internal id, including its seat ids.
func (r *TransactionRepo) GetByID(ctx context.Context, txnID uint64) (*model.Transaction, error) {
    t, err := r.scanOne(r.db.QueryRowContext(ctx,
        `SELECT `+txnColumns+` FROM transactions WHERE id = ?`, txnID))
    if err != nil {
        return nil, err
    }
    return r.attachSeats(ctx, t)
}

// GetByReference loads a transaction by its public UUID reference,
// including its seat ids.  References are what clients and the payment
// collaborator hold; internal ids never leave the service.
func (r *TransactionRepo) GetByReference(ctx context.Context, ref string) (*model.Transaction, error) {
    t, err := r.scanOne(r.db.QueryRowContext(ctx,
        `SELECT `+txnColumns+` FROM transactions WHERE reference = ?`, ref))
    if err != nil {
        return nil, err
    }
    return r.attachSeats(ctx, t)
}

func (r *TransactionRepo) attachSeats(ctx context.Context, t *model.Transaction) (*model.Transaction, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT seat_id FROM transaction_seats WHERE transaction_id = ? ORDER BY seat_id`, t.ID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        t.SeatIDs = append(t.SeatIDs, id)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return t, nil
}

// ListExpiredPending returns transactions still PENDING whose hold TTL
// deadline has passed.  The sweeper resolves each one as expired; the
// limit bounds the work done per tick.
func (r *TransactionRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Transaction, error) {
    const q = `SELECT ` + txnColumns + ` FROM transactions
               WHERE payment_status = ? AND expires_at <= ?
               ORDER BY expires_at LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.PaymentPending, now.UTC(), limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    txns := make([]model.Transaction, 0)
    for rows.Next() {
        var t model.Transaction
        if err := rows.Scan(&t.ID, &t.Reference, &t.EventID, &t.UserID, &t.TotalAmountCents,
            &t.PaymentStatus, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
            return nil, err
        }
        txns = append(txns, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return txns, nil
}

// ListFailedWithSeats returns FAILED transactions that still have seats
// bound to them in the inventory.  This state appears when the seat
// release after a failed settlement was interrupted (store error, crash
// between the two writes); the sweeper repairs each one by releasing its
// seats.
func (r *TransactionRepo) ListFailedWithSeats(ctx context.Context, limit int) ([]model.Transaction, error) {
    const q = `SELECT DISTINCT t.id, t.reference, t.event_id, t.user_id, t.total_amount_cents,
                      t.payment_status, t.expires_at, t.created_at, t.updated_at
               FROM transactions t
               JOIN seats s ON s.transaction_id = t.id
               WHERE t.payment_status = ? AND s.status IN (?, ?)
               ORDER BY t.id LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.PaymentFailed, model.SeatHeld, model.SeatSold, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    txns := make([]model.Transaction, 0)
    for rows.Next() {
        var t model.Transaction
        if err := rows.Scan(&t.ID, &t.Reference, &t.EventID, &t.UserID, &t.TotalAmountCents,
            &t.PaymentStatus, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
            return nil, err
        }
        txns = append(txns, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return txns, nil
}

// TicketDetail is one purchased seat as shown on the customer's tickets
// page, joined with section and event display data.  The ticket code is
// included here because this query is scoped to the owning customer.
type TicketDetail struct {
    SeatID        uint64    `json:"seat_id"`
    RowLabel      string    `json:"row_label"`
    SeatNumber    uint32    `json:"seat_number"`
    SeatStatus    string    `json:"seat_status"`
    TicketCode    string    `json:"ticket_code"`
    SectionName   string    `json:"section_name"`
    PriceCents    uint32    `json:"price_cents"`
    EventID       uint64    `json:"event_id"`
    EventTitle    string    `json:"event_title"`
    EventVenue    string    `json:"event_venue"`
    EventStartsAt time.Time `json:"event_starts_at"`
    Reference     string    `json:"transaction_reference"`
    PaymentStatus string    `json:"payment_status"`
}

// ListTicketsByUser returns every seat currently claimed by one of the
// user's non-failed transactions, newest purchase first.  Seats released
// after a failed settlement drop out naturally because their
// transaction_id is cleared in the inventory.
func (r *TransactionRepo) ListTicketsByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
    const q = `SELECT s.id, s.row_label, s.seat_number, s.status, s.ticket_code,
                      sec.name, sec.price_cents,
                      e.id, e.title, e.venue, e.starts_at,
                      t.reference, t.payment_status
               FROM seats s
               JOIN transactions t ON t.id = s.transaction_id
               JOIN sections sec ON sec.id = s.section_id
               JOIN events e ON e.id = sec.event_id
               WHERE t.user_id = ? AND t.payment_status <> ?
               ORDER BY t.created_at DESC, s.row_label, s.seat_number`
    rows, err := r.db.QueryContext(ctx, q, userID, model.PaymentFailed)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tickets := make([]TicketDetail, 0)
    for rows.Next() {
        var d TicketDetail
        if err := rows.Scan(&d.SeatID, &d.RowLabel, &d.SeatNumber, &d.SeatStatus, &d.TicketCode,
            &d.SectionName, &d.PriceCents,
            &d.EventID, &d.EventTitle, &d.EventVenue, &d.EventStartsAt,
            &d.Reference, &d.PaymentStatus); err != nil {
            return nil, err
        }
        tickets = append(tickets, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return tickets, nil
}

// GateSummary is what the gate display shows after a scan: who bought the
// seat and where it is.
type GateSummary struct {
    SeatID      uint64 `json:"seat_id"`
    RowLabel    string `json:"row_label"`
    SeatNumber  uint32 `json:"seat_number"`
    SectionName string `json:"section_name"`
    EventTitle  string `json:"event_title"`
    Customer    string `json:"customer_name"`
    Email       string `json:"customer_email"`
}

// GateSummaryBySeat loads the display summary for a scanned seat.  The
// join through the claiming transaction yields the purchasing customer.
func (r *TransactionRepo) GateSummaryBySeat(ctx context.Context, seatID uint64) (*GateSummary, error) {
    const q = `SELECT s.id, s.row_label, s.seat_number, sec.name, e.title, u.full_name, u.email
               FROM seats s
               JOIN sections sec ON sec.id = s.section_id
               JOIN events e ON e.id = sec.event_id
               JOIN transactions t ON t.id = s.transaction_id
               JOIN users u ON u.id = t.user_id
               WHERE s.id = ?`
    var g GateSummary
    err := r.db.QueryRowContext(ctx, q, seatID).Scan(
        &g.SeatID, &g.RowLabel, &g.SeatNumber, &g.SectionName, &g.EventTitle, &g.Customer, &g.Email)
    if err == sql.ErrNoRows {
        return nil, ErrSeatNotFound
    }
    if err != nil {
        return nil, err
    }
    return &g, nil
}
