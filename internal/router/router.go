package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/live-event-ticketing/internal/config"     // rate limit configuration
    "github.com/iliyamo/live-event-ticketing/internal/handler"    // import the handlers that implement business logic
    "github.com/iliyamo/live-event-ticketing/internal/middleware" // import middleware for JWT authentication and role enforcement
    "github.com/iliyamo/live-event-ticketing/internal/model"      // role constants for route guards
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and the /v1/me probe.
// Unauthenticated operations live under /v1/auth; protected endpoints
// apply JWTAuth with the provided secret.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    // Register a POST endpoint to handle user registration at /v1/auth/register.
    g.POST("/register", a.Register)
    // Register a POST endpoint to handle user login at /v1/auth/login.
    g.POST("/login", a.Login)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    // Register a GET endpoint at /v1/me that returns the authenticated user's information.
    auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse and streaming endpoints.
// These routes return sanitized data only: seat statuses without ticket
// codes or customer identities, so guests can inspect a venue before
// registering.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, s *handler.StreamHandler, cache echo.MiddlewareFunc) {
    // Event and section listings change on admin writes only, so they
    // sit behind the response cache
    e.GET("/v1/events", p.ListEvents, cache)
    // Event details together with its sections and prices
    e.GET("/v1/events/:id", p.GetEvent, cache)
    // Sections of an event on their own
    e.GET("/v1/events/:id/sections", p.ListEventSections, cache)
    // Current seat map of one section; never cached, seat status is live
    e.GET("/v1/sections/:id/seats", p.ListSectionSeats)
    // Live seat updates over SSE, at event or section granularity
    e.GET("/v1/events/:id/seats/stream", s.StreamEvent)
    e.GET("/v1/sections/:id/seats/stream", s.StreamSection)
}

// RegisterBooking registers the customer purchase surface: booking,
// payment callbacks, ticket listing and transaction polling.  The token
// bucket limiter guards the booking endpoint, which is the only one that
// writes to contended inventory on behalf of customers.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, pay *handler.PaymentHandler,
    t *handler.TicketHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.POST("/events/:id/book", b.Book,
        middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
        middleware.NewTokenBucket(rl, rdb))
    auth.GET("/my-tickets", t.MyTickets)
    auth.GET("/transactions/:reference", t.TransactionStatus)

    // The payment collaborator authenticates out of band (webhook source
    // allow-listing is a deployment concern), so the callback is not
    // behind JWT.
    e.POST("/v1/payments/callback", pay.Callback)
}

// RegisterGate registers the staff check-in endpoint.  STAFF and ADMIN
// may operate scanners.
func RegisterGate(e *echo.Echo, g *handler.GateHandler, jwtSecret string) {
    gate := e.Group("/v1/gate")
    gate.Use(middleware.JWTAuth(jwtSecret))
    gate.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
    gate.POST("/check-in", g.CheckIn)
}

// RegisterAdmin registers the inventory management endpoints, restricted
// to ADMIN.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    admin := e.Group("/v1/admin")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole(model.RoleAdmin))
    admin.POST("/events", a.CreateEvent)
    admin.POST("/events/:id/sections", a.CreateSection)
    admin.POST("/seats/:id/block", a.BlockSeat)
    admin.POST("/seats/:id/unblock", a.UnblockSeat)
}
