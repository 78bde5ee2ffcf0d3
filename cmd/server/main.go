package main // Entry point package

import (
    "context"   // Context for worker shutdown
    "os/signal" // Signal handling for graceful stop
    "syscall"   // SIGTERM constant

    "github.com/joho/godotenv"    // Loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework
    "github.com/sirupsen/logrus"  // Structured logging for background components

    "github.com/iliyamo/live-event-ticketing/internal/booking"    // Booking coordinator, settlement and gate
    "github.com/iliyamo/live-event-ticketing/internal/bus"        // Seat-change notification bus
    "github.com/iliyamo/live-event-ticketing/internal/config"     // Internal config loader
    "github.com/iliyamo/live-event-ticketing/internal/database"   // MySQL pool
    "github.com/iliyamo/live-event-ticketing/internal/handler"    // HTTP handlers
    "github.com/iliyamo/live-event-ticketing/internal/middleware" // Response cache for the browse endpoints
    "github.com/iliyamo/live-event-ticketing/internal/queue"      // Settlement audit queue
    "github.com/iliyamo/live-event-ticketing/internal/repository" // Data access
    "github.com/iliyamo/live-event-ticketing/internal/router"     // Route registration
    "github.com/iliyamo/live-event-ticketing/internal/worker"     // Expired-hold sweeper
)

func main() {
    _ = godotenv.Load() // Load .env when present; real env wins

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        logrus.WithError(err).Fatal("database connection failed")
    }
    defer db.Close()

    // Repositories
    users := repository.NewUserRepo(db)
    events := repository.NewEventRepo(db)
    sections := repository.NewSectionRepo(db)
    seats := repository.NewSeatRepo(db)
    txns := repository.NewTransactionRepo(db)

    // Redis carries the notification bus and the booking rate limiter.
    // When it is unreachable the server still sells seats; viewers poll
    // and the limiter is disabled.
    rdb := config.NewRedisClient()
    var seatBus bus.Publisher = bus.NopPublisher{}
    var redisBus *bus.RedisBus
    if rdb != nil {
        redisBus = bus.NewRedisBus(rdb)
        seatBus = redisBus
    } else {
        logrus.Warn("redis unavailable, seat change notifications disabled")
    }

    // Settlement, with the RabbitMQ audit trail and the simulated gateway
    // confirmation when configured.
    audit := queue.NewPublisher(cfg.RabbitURL)
    settler := booking.NewSettlement(seats, txns, seatBus, audit, cfg.SimulatedSettle)
    defer settler.Close()

    coordinator := booking.NewCoordinator(seats, txns, seatBus, settler, cfg.HoldTTL)
    gate := booking.NewGate(seats, txns, seatBus)

    // Background workers stop on SIGINT/SIGTERM.
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    sweeper := worker.NewSweeper(txns, settler, cfg.SweepInterval)
    go sweeper.Run(ctx)
    go func() {
        // Reconnect loop; only returns on a fatal setup error.
        if err := queue.StartSettlementConsumer(cfg.RabbitURL); err != nil {
            logrus.WithError(err).Error("settlement consumer stopped")
        }
    }()

    e := echo.New() // Create Echo instance
    e.HideBanner = true

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret)
    router.RegisterPublic(e,
        &handler.PublicHandler{Events: events, Sections: sections, Seats: seats},
        handler.NewStreamHandler(seats, sections, redisBus),
        middleware.NewBrowseCache(config.LoadCacheConfig(), rdb))
    router.RegisterBooking(e,
        handler.NewBookingHandler(coordinator),
        handler.NewPaymentHandler(settler),
        handler.NewTicketHandler(txns),
        cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
    router.RegisterGate(e, handler.NewGateHandler(gate), cfg.JWTSecret)
    router.RegisterAdmin(e,
        handler.NewAdminHandler(events, sections, seats, seatBus), cfg.JWTSecret)

    addr := ":" + cfg.Port // Address string with port
    logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

    if err := e.Start(addr); err != nil { // Start HTTP server
        logrus.Fatal(err) // Log and exit if server fails
    }
}
