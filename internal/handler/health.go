package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health answers load-balancer probes.  It deliberately touches no
// dependency: a server that can route requests is alive, and degraded
// collaborators (redis, rabbitmq) must not take it out of rotation.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
