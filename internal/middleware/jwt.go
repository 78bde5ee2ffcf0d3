package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // parse the numeric subject claim
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the authenticated user's id and role into the request
// context.  The provided secret must match the one used when issuing
// tokens.  Handlers behind this middleware read the identity via
// `c.Get("user_id")` (uint64) and `c.Get("role")` (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header is "Bearer <token>"; anything else is a 401.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret.  The callback pins the
            // signing method so a token signed with a different
            // algorithm is rejected outright.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // The subject carries the numeric user id as a string.
            // Decode it here once so handlers never deal with claim
            // types.
            sub, _ := claims["sub"].(string)
            uid, err := strconv.ParseUint(sub, 10, 64)
            if err != nil || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            role, _ := claims["role"].(string)

            c.Set("user_id", uid)
            c.Set("role", role)
            return next(c)
        }
    }
}

// UserID extracts the authenticated user's id stored by JWTAuth.  It
// returns 0 when called outside an authenticated route.
func UserID(c echo.Context) uint64 {
    if v, ok := c.Get("user_id").(uint64); ok {
        return v
    }
    return 0
}
