package config

import (
    "context"
    "crypto/tls"
    "net"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds the Redis client carrying the seat-change
// notification bus and the booking rate limiter.  Configuration comes
// from the environment:
//
//    REDIS_ADDR       host:port (preferred)
//    REDIS_HOST/PORT  assembled when REDIS_ADDR is unset
//    REDIS_PASSWORD   optional password
//    REDIS_DB         database number, default 0
//    REDIS_TLS        enable TLS when truthy
//
// When the server cannot be reached the function returns nil and the
// caller degrades: the limiter switches off and seat changes are not
// fanned out, while the database stays the source of truth.
func NewRedisClient() *redis.Client {
    addr := os.Getenv("REDIS_ADDR")
    if addr == "" {
        host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
        if host == "" {
            host = "localhost"
        }
        if port == "" {
            port = "6379"
        }
        addr = net.JoinHostPort(host, port)
    }

    dbNum := 0
    if v := os.Getenv("REDIS_DB"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            dbNum = n
        }
    }

    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }

    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        dbNum,
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        client.Close()
        return nil
    }
    return client
}
