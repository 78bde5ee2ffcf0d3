package model

import "time"

// Roles recognised by the route guards.  CUSTOMER may book and view their
// own tickets, STAFF may operate the gate scanner, ADMIN may additionally
// manage events, sections and seat blocks.
const (
    RoleCustomer = "CUSTOMER"
    RoleStaff    = "STAFF"
    RoleAdmin    = "ADMIN"
)

// User is the identity record behind the JWT boundary.  The coordinator
// only ever sees the authenticated user id; handlers join back to this
// table when a customer name or email is needed for display.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email (unique, lowercase)
    PasswordHash string    // users.password_hash (bcrypt)
    FullName     string    // users.full_name
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
}
