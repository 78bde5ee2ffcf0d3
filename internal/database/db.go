package database

import (
    "context"
    "database/sql"
    "fmt"
    "net"
    "time"

    _ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.  All seat state
// transitions rely on single-row conditional UPDATEs, so the pool is the
// only synchronisation primitive the inventory needs.  Pool limits are
// sized for short bursty transactions rather than long sessions.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    auth := user
    if pass != "" {
        auth = fmt.Sprintf("%s:%s", user, pass)
    }
    // parseTime maps DATETIME to time.Time; loc=UTC keeps hold deadlines
    // comparable across instances.
    dsn := fmt.Sprintf("%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, net.JoinHostPort(host, port), name)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    db.SetMaxOpenConns(50)
    db.SetMaxIdleConns(10)
    db.SetConnMaxIdleTime(5 * time.Minute)
    db.SetConnMaxLifetime(30 * time.Minute)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, fmt.Errorf("ping mysql: %w", err)
    }
    return db, nil
}
